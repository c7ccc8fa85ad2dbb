package team

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/enum"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/utils"
	"github.com/calcbuilder/adminstack/internal/validation"
)

func (s *teamService) CreateInvitation(ctx context.Context, companyId string, request dto.CreateInvitationRequest) (*models.TeamInvitation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.CreateInvitation")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.LogObjectAsJson(span, "request", request)

	email, err := validation.NormalizeEmail("email", request.Email)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if request.Language != "" {
		if err := validation.ValidateLanguage("language", request.Language); err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
	}

	company, err := s.getCompany(ctx, companyId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	role, err := s.resolveRole(ctx, companyId, request.RoleId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	member, err := s.members.FindByUserOrEmail(ctx, companyId, "", email)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to check membership")
	}
	if member != nil {
		return nil, apperrors.ErrAlreadyMember
	}
	pending, err := s.invitations.GetPendingByEmail(ctx, companyId, email)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to check pending invitations")
	}
	if pending != nil {
		if !s.now().After(pending.ExpiresAt) {
			return nil, apperrors.ErrAlreadyInvited
		}
		if err := s.invitations.UpdateStatus(ctx, pending.ID, enum.InvitationStatusExpired); err != nil {
			tracing.TraceErr(span, err)
			return nil, errors.Wrap(err, "failed to expire previous invitation")
		}
	}

	token, err := utils.GenerateToken(invitationTokenLength)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to generate invitation token")
	}

	language := request.Language
	if language == "" {
		language = company.DefaultLanguage
	}
	invitation := &models.TeamInvitation{
		CompanyID: companyId,
		Email:     email,
		RoleID:    role.ID,
		Token:     token,
		Status:    enum.InvitationStatusPending,
		InvitedBy: utils.GetUserIdFromContext(ctx),
		Language:  language,
		ExpiresAt: s.now().Add(s.invitationTTL),
	}
	if err := s.invitations.Create(ctx, invitation); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to create invitation")
	}
	tracing.TagEntity(span, invitation.ID)

	inviter := utils.GetUserEmailFromContext(ctx)
	if inviter == "" {
		inviter = company.Name
	}
	s.sendEmail(ctx, email, enum.EmailTemplateTeamInvitation, language, map[string]string{
		"InviterName": inviter,
		"CompanyName": company.Name,
		"RoleName":    role.Name,
		"InviteURL":   s.invitationURL(token),
		"ExpiresAt":   invitation.ExpiresAt.Format(invitationExpiresLayout),
	})
	s.publisher.PublishNotification(ctx, companyId, invitation.ID, enum.TEAM_INVITATION, &dto.EventCompletedDetails{Create: true})

	return invitation, nil
}

func (s *teamService) ListInvitations(ctx context.Context, companyId string) ([]models.TeamInvitation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.ListInvitations")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)

	if _, err := s.getCompany(ctx, companyId); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	invitations, err := s.invitations.ListByCompany(ctx, companyId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list invitations")
	}
	return invitations, nil
}

func (s *teamService) RevokeInvitation(ctx context.Context, companyId, invitationId string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.RevokeInvitation")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, invitationId)

	invitation, err := s.invitations.GetByID(ctx, companyId, invitationId)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to get invitation")
	}
	if invitation == nil {
		return apperrors.ErrInvitationNotFound
	}
	if invitation.Status != enum.InvitationStatusPending {
		return apperrors.ErrInvitationNotPending
	}

	if err := s.invitations.UpdateStatus(ctx, invitationId, enum.InvitationStatusRevoked); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to revoke invitation")
	}

	s.publisher.PublishNotification(ctx, companyId, invitationId, enum.TEAM_INVITATION, &dto.EventCompletedDetails{Update: true})
	return nil
}

// AcceptInvitation turns a pending invitation into a membership for the accepting user.
func (s *teamService) AcceptInvitation(ctx context.Context, token string, request dto.AcceptInvitationRequest) (*models.TeamMember, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.AcceptInvitation")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	userId := strings.TrimSpace(request.UserId)
	if err := validation.ValidateUserId("user_id", userId); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	invitation, err := s.invitations.GetByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to get invitation")
	}
	if invitation == nil {
		return nil, apperrors.ErrInvitationNotFound
	}
	tracing.TagCompany(span, invitation.CompanyID)
	tracing.TagEntity(span, invitation.ID)
	ctx = utils.SetCompanyIdInContext(ctx, invitation.CompanyID)

	switch invitation.Status {
	case enum.InvitationStatusPending:
	case enum.InvitationStatusExpired:
		return nil, apperrors.ErrInvitationExpired
	default:
		return nil, apperrors.ErrInvitationNotPending
	}

	now := s.now()
	if now.After(invitation.ExpiresAt) {
		if err := s.invitations.UpdateStatus(ctx, invitation.ID, enum.InvitationStatusExpired); err != nil {
			s.log.Errorf("Failed to mark invitation %s expired: %v", invitation.ID, err)
		}
		return nil, apperrors.ErrInvitationExpired
	}

	company, err := s.getCompany(ctx, invitation.CompanyID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	role, err := s.resolveRole(ctx, invitation.CompanyID, invitation.RoleID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	member := &models.TeamMember{
		CompanyID: invitation.CompanyID,
		UserID:    userId,
		Email:     invitation.Email,
		FullName:  strings.TrimSpace(request.FullName),
		RoleID:    role.ID,
		Status:    enum.MemberStatusActive,
		JoinedAt:  now,
	}
	if err := s.invitations.Accept(ctx, invitation, member, now); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperrors.ErrAlreadyMember
		}
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to accept invitation")
	}
	span.LogFields(tracingLog.String("member.id", member.ID))

	name := member.FullName
	if name == "" {
		name = member.Email
	}
	s.sendEmail(ctx, member.Email, enum.EmailTemplateWelcome, invitation.Language, map[string]string{
		"Name":        name,
		"CompanyName": company.Name,
		"LoginURL":    s.publicAppUrl,
	})
	s.publishEvent(ctx, member.ID, enum.TEAM_MEMBER, dto.TeamMemberJoined{
		CompanyId: member.CompanyID,
		MemberId:  member.ID,
		UserId:    member.UserID,
		Email:     member.Email,
		RoleId:    member.RoleID,
	})
	s.publisher.PublishNotification(ctx, member.CompanyID, member.ID, enum.TEAM_MEMBER, &dto.EventCompletedDetails{Create: true})

	return member, nil
}

// ExpireStaleInvitations marks pending invitations past their expiry as expired.
func (s *teamService) ExpireStaleInvitations(ctx context.Context) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamService.ExpireStaleInvitations")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	expired, err := s.invitations.ExpireStale(ctx, s.now())
	if err != nil {
		tracing.TraceErr(span, err)
		return 0, errors.Wrap(err, "failed to expire invitations")
	}
	if expired > 0 {
		s.log.Infof("Expired %d team invitations", expired)
	}
	span.LogFields(tracingLog.Int64("expired", expired))
	return expired, nil
}

func (s *teamService) invitationURL(token string) string {
	return s.publicAppUrl + "/invitations/" + token + "/accept"
}
