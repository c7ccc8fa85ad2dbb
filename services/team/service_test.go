package team

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/enum"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/repository/memory"
	"github.com/calcbuilder/adminstack/internal/utils"
	"github.com/calcbuilder/adminstack/services/company"
	"github.com/calcbuilder/adminstack/services/events"
)

const (
	aliceId = "8f14e45f-ceea-467f-a0e6-1b2c3d4e5f60"
	bobId   = "c9f0f895-fb98-4b91-9f3a-2b3c4d5e6f70"
)

type sentEmail struct {
	to       string
	template enum.EmailTemplate
	language enum.Language
	params   map[string]string
}

type recordingEmails struct {
	mu   sync.Mutex
	sent []sentEmail
}

func (e *recordingEmails) Send(ctx context.Context, message dto.EmailMessage) error {
	return nil
}

func (e *recordingEmails) SendTemplate(ctx context.Context, to string, template enum.EmailTemplate, language enum.Language, params map[string]string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sent = append(e.sent, sentEmail{to: to, template: template, language: language, params: params})
	return nil
}

type fixture struct {
	service *teamService
	repos   *repository.Repositories
	store   *memory.Store
	emails  *recordingEmails
	company *models.Company
	now     time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()

	cfg := &config.Config{
		AppConfig:   &config.AppConfig{PublicAppUrl: "https://app.calcbuilder.com/"},
		EmailConfig: &config.EmailConfig{InvitationTTL: 72 * time.Hour},
	}

	repos, store := memory.NewRepositories()
	publisher := events.NewNoopPublisher(log)
	f := &fixture{
		repos:  repos,
		store:  store,
		emails: &recordingEmails{},
		now:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewTeamService(cfg, log, repos, publisher, f.emails).(*teamService)
	f.service.now = func() time.Time { return f.now }

	companies := company.NewCompanyService(log, repos, publisher)
	created, err := companies.Create(context.Background(), dto.CreateCompanyRequest{
		Name:            "Acme Oy",
		Slug:            "acme",
		DefaultLanguage: enum.LanguageEnglish,
	})
	require.NoError(t, err)
	f.company = created
	return f
}

func (f *fixture) roleByName(t *testing.T, name string) models.TeamRole {
	t.Helper()
	roles, err := f.service.ListRoles(context.Background(), f.company.ID)
	require.NoError(t, err)
	for _, role := range roles {
		if role.Name == name {
			return role
		}
	}
	t.Fatalf("role %s not found", name)
	return models.TeamRole{}
}

func TestCreateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role, err := f.service.CreateRole(ctx, f.company.ID, dto.CreateRoleRequest{
		Name:        " Designer ",
		Permissions: []string{"calculators.view", "assets.manage", "calculators.view"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Designer", role.Name)
	assert.Equal(t, []string{"calculators.view", "assets.manage"}, []string(role.Permissions))

	_, err = f.service.CreateRole(ctx, f.company.ID, dto.CreateRoleRequest{Name: "Designer", Permissions: []string{"calculators.view"}})
	assert.ErrorIs(t, err, apperrors.ErrRoleNameTaken)

	_, err = f.service.CreateRole(ctx, f.company.ID, dto.CreateRoleRequest{Name: "Hacker", Permissions: []string{"root"}})
	validationErr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, validationErr.Fields, "permissions")

	_, err = f.service.CreateRole(ctx, "comp_missing", dto.CreateRoleRequest{Name: "X", Permissions: []string{"calculators.view"}})
	assert.ErrorIs(t, err, apperrors.ErrCompanyNotFound)
}

func TestCreateRole_NewDefaultReplacesOld(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	role, err := f.service.CreateRole(ctx, f.company.ID, dto.CreateRoleRequest{
		Name:        "Guest",
		Permissions: []string{"calculators.view"},
		IsDefault:   true,
	})
	require.NoError(t, err)

	current, err := f.repos.TeamRoleRepository.GetDefault(ctx, f.company.ID)
	require.NoError(t, err)
	assert.Equal(t, role.ID, current.ID)
	assert.False(t, f.roleByName(t, "Viewer").IsDefault)
}

func TestUpdateRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	editor := f.roleByName(t, "Editor")

	updated, err := f.service.UpdateRole(ctx, f.company.ID, editor.ID, dto.UpdateRoleRequest{
		Description: utils.StringPtr("Content editors"),
		Permissions: []string{"calculators.edit"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Content editors", updated.Description)
	assert.Equal(t, []string{"calculators.edit"}, []string(updated.Permissions))

	_, err = f.service.UpdateRole(ctx, f.company.ID, editor.ID, dto.UpdateRoleRequest{Name: utils.StringPtr("Admin")})
	assert.ErrorIs(t, err, apperrors.ErrRoleNameTaken)

	_, err = f.service.UpdateRole(ctx, f.company.ID, editor.ID, dto.UpdateRoleRequest{Permissions: []string{}})
	_, ok := apperrors.AsValidationError(err)
	assert.True(t, ok)

	_, err = f.service.UpdateRole(ctx, f.company.ID, "role_missing", dto.UpdateRoleRequest{})
	assert.ErrorIs(t, err, apperrors.ErrRoleNotFound)
}

func TestDeleteRole_RefusesWhenInUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	editor := f.roleByName(t, "Editor")

	member, err := f.service.AddMember(ctx, f.company.ID, dto.AddMemberRequest{UserId: aliceId, Email: "alice@acme.fi", RoleId: editor.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.DeleteRole(ctx, f.company.ID, editor.ID), apperrors.ErrRoleInUse)

	require.NoError(t, f.service.RemoveMember(ctx, f.company.ID, member.ID))
	require.NoError(t, f.service.DeleteRole(ctx, f.company.ID, editor.ID))
	assert.ErrorIs(t, f.service.DeleteRole(ctx, f.company.ID, editor.ID), apperrors.ErrRoleNotFound)
}

func TestAddMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	member, err := f.service.AddMember(ctx, f.company.ID, dto.AddMemberRequest{
		UserId:   aliceId,
		Email:    " Alice@Acme.fi ",
		FullName: "Alice Virtanen",
	})
	require.NoError(t, err)
	assert.Equal(t, f.roleByName(t, "Viewer").ID, member.RoleID)
	assert.Equal(t, enum.MemberStatusActive, member.Status)
	assert.Equal(t, f.now, member.JoinedAt)
	assert.NotEmpty(t, member.ID)

	_, err = f.service.AddMember(ctx, f.company.ID, dto.AddMemberRequest{UserId: bobId, Email: "alice@acme.fi"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)

	_, err = f.service.AddMember(ctx, f.company.ID, dto.AddMemberRequest{UserId: "not-a-uuid", Email: "nope"})
	validationErr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, validationErr.Fields, "user_id")
	assert.Contains(t, validationErr.Fields, "email")

	_, err = f.service.AddMember(ctx, f.company.ID, dto.AddMemberRequest{UserId: bobId, Email: "bob@acme.fi", RoleId: "role_missing"})
	assert.ErrorIs(t, err, apperrors.ErrRoleNotFound)

	members, err := f.service.ListMembers(ctx, f.company.ID)
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestUpdateMember(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	member, err := f.service.AddMember(ctx, f.company.ID, dto.AddMemberRequest{UserId: aliceId, Email: "alice@acme.fi"})
	require.NoError(t, err)

	suspended := enum.MemberStatusSuspended
	adminId := f.roleByName(t, "Admin").ID
	updated, err := f.service.UpdateMember(ctx, f.company.ID, member.ID, dto.UpdateMemberRequest{
		RoleId:   &adminId,
		Status:   &suspended,
		FullName: utils.StringPtr("Alice V."),
	})
	require.NoError(t, err)
	assert.Equal(t, adminId, updated.RoleID)
	assert.Equal(t, enum.MemberStatusSuspended, updated.Status)
	assert.Equal(t, "Alice V.", updated.FullName)

	invalid := enum.MemberStatus("banned")
	_, err = f.service.UpdateMember(ctx, f.company.ID, member.ID, dto.UpdateMemberRequest{Status: &invalid})
	_, ok := apperrors.AsValidationError(err)
	assert.True(t, ok)

	_, err = f.service.UpdateMember(ctx, f.company.ID, "memb_missing", dto.UpdateMemberRequest{})
	assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
}

func TestInvitationLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := utils.WithCustomContext(context.Background(), &utils.CustomContext{UserId: bobId, UserEmail: "bob@acme.fi"})
	editor := f.roleByName(t, "Editor")

	invitation, err := f.service.CreateInvitation(ctx, f.company.ID, dto.CreateInvitationRequest{Email: "carol@example.com", RoleId: editor.ID})
	require.NoError(t, err)
	assert.Equal(t, enum.InvitationStatusPending, invitation.Status)
	assert.Equal(t, enum.LanguageEnglish, invitation.Language)
	assert.Equal(t, bobId, invitation.InvitedBy)
	assert.Equal(t, f.now.Add(72*time.Hour), invitation.ExpiresAt)
	assert.Len(t, invitation.Token, invitationTokenLength)

	require.Len(t, f.emails.sent, 1)
	sent := f.emails.sent[0]
	assert.Equal(t, "carol@example.com", sent.to)
	assert.Equal(t, enum.EmailTemplateTeamInvitation, sent.template)
	assert.Equal(t, "bob@acme.fi", sent.params["InviterName"])
	assert.Equal(t, "Editor", sent.params["RoleName"])
	assert.Equal(t, "https://app.calcbuilder.com/invitations/"+invitation.Token+"/accept", sent.params["InviteURL"])
	assert.Equal(t, "2025-03-04", sent.params["ExpiresAt"])

	_, err = f.service.CreateInvitation(ctx, f.company.ID, dto.CreateInvitationRequest{Email: "Carol@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyInvited)

	member, err := f.service.AcceptInvitation(context.Background(), invitation.Token, dto.AcceptInvitationRequest{UserId: aliceId, FullName: "Carol"})
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", member.Email)
	assert.Equal(t, editor.ID, member.RoleID)

	stored := f.store.Invitation(invitation.ID)
	assert.Equal(t, enum.InvitationStatusAccepted, stored.Status)
	require.NotNil(t, stored.AcceptedAt)

	require.Len(t, f.emails.sent, 2)
	assert.Equal(t, enum.EmailTemplateWelcome, f.emails.sent[1].template)
	assert.Equal(t, "Carol", f.emails.sent[1].params["Name"])

	_, err = f.service.AcceptInvitation(context.Background(), invitation.Token, dto.AcceptInvitationRequest{UserId: aliceId})
	assert.ErrorIs(t, err, apperrors.ErrInvitationNotPending)

	_, err = f.service.CreateInvitation(ctx, f.company.ID, dto.CreateInvitationRequest{Email: "carol@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrAlreadyMember)
}

func TestAcceptInvitation_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invitation, err := f.service.CreateInvitation(ctx, f.company.ID, dto.CreateInvitationRequest{Email: "dave@example.com"})
	require.NoError(t, err)

	f.now = f.now.Add(72*time.Hour + time.Second)
	_, err = f.service.AcceptInvitation(ctx, invitation.Token, dto.AcceptInvitationRequest{UserId: aliceId})
	assert.ErrorIs(t, err, apperrors.ErrInvitationExpired)
	assert.Equal(t, enum.InvitationStatusExpired, f.store.Invitation(invitation.ID).Status)

	_, err = f.service.AcceptInvitation(ctx, invitation.Token, dto.AcceptInvitationRequest{UserId: aliceId})
	assert.ErrorIs(t, err, apperrors.ErrInvitationExpired)

	_, err = f.service.AcceptInvitation(ctx, "unknown-token", dto.AcceptInvitationRequest{UserId: aliceId})
	assert.ErrorIs(t, err, apperrors.ErrInvitationNotFound)
}

func TestCreateInvitation_ReplacesLapsedInvitation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.service.CreateInvitation(ctx, f.company.ID, dto.CreateInvitationRequest{Email: "erin@example.com"})
	require.NoError(t, err)

	f.now = f.now.Add(73 * time.Hour)
	second, err := f.service.CreateInvitation(ctx, f.company.ID, dto.CreateInvitationRequest{Email: "erin@example.com", Language: enum.LanguageSwedish})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, enum.LanguageSwedish, second.Language)
	assert.Equal(t, enum.InvitationStatusExpired, f.store.Invitation(first.ID).Status)
}

func TestRevokeInvitation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	invitation, err := f.service.CreateInvitation(ctx, f.company.ID, dto.CreateInvitationRequest{Email: "frank@example.com"})
	require.NoError(t, err)

	require.NoError(t, f.service.RevokeInvitation(ctx, f.company.ID, invitation.ID))
	assert.Equal(t, enum.InvitationStatusRevoked, f.store.Invitation(invitation.ID).Status)
	assert.ErrorIs(t, f.service.RevokeInvitation(ctx, f.company.ID, invitation.ID), apperrors.ErrInvitationNotPending)
	assert.ErrorIs(t, f.service.RevokeInvitation(ctx, "comp_other", invitation.ID), apperrors.ErrInvitationNotFound)

	_, err = f.service.AcceptInvitation(ctx, invitation.Token, dto.AcceptInvitationRequest{UserId: aliceId})
	assert.ErrorIs(t, err, apperrors.ErrInvitationNotPending)

	invitations, err := f.service.ListInvitations(ctx, f.company.ID)
	require.NoError(t, err)
	assert.Len(t, invitations, 1)
}

func TestExpireStaleInvitations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CreateInvitation(ctx, f.company.ID, dto.CreateInvitationRequest{Email: "gina@example.com"})
	require.NoError(t, err)

	expired, err := f.service.ExpireStaleInvitations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), expired)

	f.now = f.now.Add(80 * time.Hour)
	expired, err = f.service.ExpireStaleInvitations(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)
}
