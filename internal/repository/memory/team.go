package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/utils"
)

type teamRoleRepository struct {
	store *Store
}

func (r *teamRoleRepository) Create(ctx context.Context, role *models.TeamRole) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	for _, existing := range s.roles {
		if existing.CompanyID == role.CompanyID && existing.Name == role.Name {
			return repository.ErrAlreadyExists
		}
	}
	if err := runHook(role); err != nil {
		return err
	}
	stamp(&role.CreatedAt, &role.UpdatedAt)
	copied := *role
	s.roles[role.ID] = &copied
	return nil
}

func (r *teamRoleRepository) GetByID(ctx context.Context, companyId, roleId string) (*models.TeamRole, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if role, ok := r.store.roles[roleId]; ok && role.CompanyID == companyId {
		copied := *role
		return &copied, nil
	}
	return nil, nil
}

func (r *teamRoleRepository) GetDefault(ctx context.Context, companyId string) (*models.TeamRole, error) {
	roles, _ := r.ListByCompany(ctx, companyId)
	for _, role := range roles {
		if role.IsDefault {
			return &role, nil
		}
	}
	return nil, nil
}

func (r *teamRoleRepository) ListByCompany(ctx context.Context, companyId string) ([]models.TeamRole, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	roles := []models.TeamRole{}
	for _, role := range r.store.roles {
		if role.CompanyID == companyId {
			roles = append(roles, *role)
		}
	}
	sort.SliceStable(roles, func(i, j int) bool { return roles[i].CreatedAt.Before(roles[j].CreatedAt) })
	return roles, nil
}

func (r *teamRoleRepository) UpdateFields(ctx context.Context, companyId, roleId string, fields map[string]interface{}) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	role, ok := s.roles[roleId]
	if !ok || role.CompanyID != companyId || len(fields) == 0 {
		return nil
	}
	if name, ok := fields["name"].(string); ok {
		for id, existing := range s.roles {
			if id != roleId && existing.CompanyID == companyId && existing.Name == name {
				return repository.ErrAlreadyExists
			}
		}
	}
	fields["updated_at"] = utils.Now()
	return applyFields(role, fields)
}

func (r *teamRoleRepository) Delete(ctx context.Context, companyId, roleId string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if role, ok := s.roles[roleId]; ok && role.CompanyID == companyId {
		delete(s.roles, roleId)
	}
	return nil
}

type teamMemberRepository struct {
	store *Store
}

func (r *teamMemberRepository) Create(ctx context.Context, member *models.TeamMember) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	return s.insertMember(member)
}

func (s *Store) insertMember(member *models.TeamMember) error {
	for _, existing := range s.members {
		if existing.CompanyID == member.CompanyID &&
			(existing.UserID == member.UserID || strings.EqualFold(existing.Email, member.Email)) {
			return repository.ErrAlreadyExists
		}
	}
	if err := runHook(member); err != nil {
		return err
	}
	stamp(&member.CreatedAt, &member.UpdatedAt)
	copied := *member
	s.members[member.ID] = &copied
	return nil
}

func (r *teamMemberRepository) GetByID(ctx context.Context, companyId, memberId string) (*models.TeamMember, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if member, ok := r.store.members[memberId]; ok && member.CompanyID == companyId {
		copied := *member
		return &copied, nil
	}
	return nil, nil
}

func (r *teamMemberRepository) FindByUserOrEmail(ctx context.Context, companyId, userId, email string) (*models.TeamMember, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, member := range r.store.members {
		if member.CompanyID == companyId && (member.UserID == userId || strings.EqualFold(member.Email, email)) {
			copied := *member
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *teamMemberRepository) ListByCompany(ctx context.Context, companyId string) ([]models.TeamMember, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	members := []models.TeamMember{}
	for _, member := range r.store.members {
		if member.CompanyID == companyId {
			members = append(members, *member)
		}
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].JoinedAt.Before(members[j].JoinedAt) })
	return members, nil
}

func (r *teamMemberRepository) CountByRole(ctx context.Context, companyId, roleId string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var count int64
	for _, member := range r.store.members {
		if member.CompanyID == companyId && member.RoleID == roleId {
			count++
		}
	}
	return count, nil
}

func (r *teamMemberRepository) UpdateFields(ctx context.Context, companyId, memberId string, fields map[string]interface{}) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	member, ok := s.members[memberId]
	if !ok || member.CompanyID != companyId || len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = utils.Now()
	return applyFields(member, fields)
}

func (r *teamMemberRepository) Delete(ctx context.Context, companyId, memberId string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if member, ok := s.members[memberId]; ok && member.CompanyID == companyId {
		delete(s.members, memberId)
	}
	return nil
}

type teamInvitationRepository struct {
	store *Store
}

func (r *teamInvitationRepository) Create(ctx context.Context, invitation *models.TeamInvitation) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if err := runHook(invitation); err != nil {
		return err
	}
	stamp(&invitation.CreatedAt, &invitation.UpdatedAt)
	copied := *invitation
	s.invitations[invitation.ID] = &copied
	return nil
}

func (r *teamInvitationRepository) GetByID(ctx context.Context, companyId, invitationId string) (*models.TeamInvitation, error) {
	return r.first(func(i *models.TeamInvitation) bool { return i.ID == invitationId && i.CompanyID == companyId })
}

func (r *teamInvitationRepository) GetByToken(ctx context.Context, token string) (*models.TeamInvitation, error) {
	return r.first(func(i *models.TeamInvitation) bool { return i.Token == token })
}

func (r *teamInvitationRepository) GetPendingByEmail(ctx context.Context, companyId, email string) (*models.TeamInvitation, error) {
	return r.first(func(i *models.TeamInvitation) bool {
		return i.CompanyID == companyId && strings.EqualFold(i.Email, email) && i.Status == enum.InvitationStatusPending
	})
}

func (r *teamInvitationRepository) first(match func(*models.TeamInvitation) bool) (*models.TeamInvitation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, invitation := range r.store.invitations {
		if match(invitation) {
			copied := *invitation
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *teamInvitationRepository) ListByCompany(ctx context.Context, companyId string) ([]models.TeamInvitation, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	invitations := []models.TeamInvitation{}
	for _, invitation := range r.store.invitations {
		if invitation.CompanyID == companyId {
			invitations = append(invitations, *invitation)
		}
	}
	sort.SliceStable(invitations, func(i, j int) bool { return invitations[i].CreatedAt.After(invitations[j].CreatedAt) })
	return invitations, nil
}

func (r *teamInvitationRepository) UpdateStatus(ctx context.Context, invitationId string, status enum.InvitationStatus) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if invitation, ok := s.invitations[invitationId]; ok {
		invitation.Status = status
		invitation.UpdatedAt = utils.Now()
	}
	return nil
}

func (r *teamInvitationRepository) Accept(ctx context.Context, invitation *models.TeamInvitation, member *models.TeamMember, acceptedAt time.Time) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if err := s.insertMember(member); err != nil {
		return err
	}
	if stored, ok := s.invitations[invitation.ID]; ok {
		stored.Status = enum.InvitationStatusAccepted
		stored.AcceptedAt = &acceptedAt
	}
	invitation.Status = enum.InvitationStatusAccepted
	invitation.AcceptedAt = &acceptedAt
	return nil
}

func (r *teamInvitationRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return 0, err
	}
	var expired int64
	for _, invitation := range s.invitations {
		if invitation.Status == enum.InvitationStatusPending && invitation.ExpiresAt.Before(now) {
			invitation.Status = enum.InvitationStatusExpired
			invitation.UpdatedAt = now
			expired++
		}
	}
	return expired, nil
}
