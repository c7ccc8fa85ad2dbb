package team

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/enum"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/utils"
)

const (
	invitationTokenLength   = 32
	defaultInvitationTTL    = 7 * 24 * time.Hour
	maxRoleNameLength       = 100
	invitationExpiresLayout = "2006-01-02"
)

type teamService struct {
	log           logger.Logger
	companies     repository.CompanyRepository
	roles         repository.TeamRoleRepository
	members       repository.TeamMemberRepository
	invitations   repository.TeamInvitationRepository
	publisher     interfaces.EventPublisher
	emails        interfaces.EmailService
	publicAppUrl  string
	invitationTTL time.Duration
	now           func() time.Time
}

func NewTeamService(
	cfg *config.Config,
	log logger.Logger,
	repos *repository.Repositories,
	publisher interfaces.EventPublisher,
	emails interfaces.EmailService,
) interfaces.TeamService {
	ttl := cfg.EmailConfig.InvitationTTL
	if ttl <= 0 {
		ttl = defaultInvitationTTL
	}

	return &teamService{
		log:           log,
		companies:     repos.CompanyRepository,
		roles:         repos.TeamRoleRepository,
		members:       repos.TeamMemberRepository,
		invitations:   repos.TeamInvitationRepository,
		publisher:     publisher,
		emails:        emails,
		publicAppUrl:  strings.TrimSuffix(cfg.AppConfig.PublicAppUrl, "/"),
		invitationTTL: ttl,
		now:           utils.Now,
	}
}

func (s *teamService) getCompany(ctx context.Context, companyId string) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, companyId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get company")
	}
	if company == nil {
		return nil, apperrors.ErrCompanyNotFound
	}
	return company, nil
}

// resolveRole returns the given role, or the company default role when roleId is empty.
func (s *teamService) resolveRole(ctx context.Context, companyId, roleId string) (*models.TeamRole, error) {
	var (
		role *models.TeamRole
		err  error
	)
	if roleId == "" {
		role, err = s.roles.GetDefault(ctx, companyId)
	} else {
		role, err = s.roles.GetByID(ctx, companyId, roleId)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get role")
	}
	if role == nil {
		return nil, apperrors.ErrRoleNotFound
	}
	return role, nil
}

func (s *teamService) publishEvent(ctx context.Context, entityId string, entityType enum.EntityType, event interface{}) {
	err := s.publisher.PublishFanoutEvent(ctx, entityId, entityType, event)
	if err != nil {
		s.log.Errorf("Failed to publish %s event for %s: %v", entityType, entityId, err)
	}
}

func (s *teamService) sendEmail(ctx context.Context, to string, template enum.EmailTemplate, language enum.Language, params map[string]string) {
	if s.emails == nil {
		return
	}
	if err := s.emails.SendTemplate(ctx, to, template, language, params); err != nil {
		s.log.Warnf("Failed to send %s email: %v", template, err)
	}
}
