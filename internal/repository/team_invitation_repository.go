package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/tracing"
)

type TeamInvitationRepository interface {
	Create(ctx context.Context, invitation *models.TeamInvitation) error
	GetByID(ctx context.Context, companyId, invitationId string) (*models.TeamInvitation, error)
	GetByToken(ctx context.Context, token string) (*models.TeamInvitation, error)
	GetPendingByEmail(ctx context.Context, companyId, email string) (*models.TeamInvitation, error)
	ListByCompany(ctx context.Context, companyId string) ([]models.TeamInvitation, error)
	UpdateStatus(ctx context.Context, invitationId string, status enum.InvitationStatus) error
	Accept(ctx context.Context, invitation *models.TeamInvitation, member *models.TeamMember, acceptedAt time.Time) error
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type teamInvitationRepository struct {
	db *gorm.DB
}

func NewTeamInvitationRepository(db *gorm.DB) TeamInvitationRepository {
	return &teamInvitationRepository{
		db: db,
	}
}

func (r *teamInvitationRepository) Create(ctx context.Context, invitation *models.TeamInvitation) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamInvitationRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, invitation.CompanyID)

	if err := r.db.WithContext(ctx).Create(invitation).Error; err != nil {
		err = translateErr(err)
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *teamInvitationRepository) GetByID(ctx context.Context, companyId, invitationId string) (*models.TeamInvitation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamInvitationRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, invitationId)

	return r.first(ctx, span, "id = ? AND company_id = ?", invitationId, companyId)
}

func (r *teamInvitationRepository) GetByToken(ctx context.Context, token string) (*models.TeamInvitation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamInvitationRepository.GetByToken")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	return r.first(ctx, span, "token = ?", token)
}

func (r *teamInvitationRepository) GetPendingByEmail(ctx context.Context, companyId, email string) (*models.TeamInvitation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamInvitationRepository.GetPendingByEmail")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)

	return r.first(ctx, span, "company_id = ? AND LOWER(email) = LOWER(?) AND status = ?",
		companyId, email, enum.InvitationStatusPending)
}

func (r *teamInvitationRepository) first(ctx context.Context, span opentracing.Span, query string, args ...interface{}) (*models.TeamInvitation, error) {
	var invitation models.TeamInvitation
	err := r.db.WithContext(ctx).
		Where(query, args...).
		First(&invitation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.LogFields(tracingLog.Bool("response.found", false))
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &invitation, nil
}

func (r *teamInvitationRepository) ListByCompany(ctx context.Context, companyId string) ([]models.TeamInvitation, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamInvitationRepository.ListByCompany")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)

	var invitations []models.TeamInvitation
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyId).
		Order("created_at DESC").
		Find(&invitations).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return invitations, nil
}

func (r *teamInvitationRepository) UpdateStatus(ctx context.Context, invitationId string, status enum.InvitationStatus) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamInvitationRepository.UpdateStatus")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagEntity(span, invitationId)
	span.LogKV("status", status.String())

	err := r.db.WithContext(ctx).
		Model(&models.TeamInvitation{}).
		Where("id = ?", invitationId).
		Update("status", status).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	return nil
}

// Accept creates the membership and closes the invitation in one transaction.
func (r *teamInvitationRepository) Accept(ctx context.Context, invitation *models.TeamInvitation, member *models.TeamMember, acceptedAt time.Time) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamInvitationRepository.Accept")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, invitation.CompanyID)
	tracing.TagEntity(span, invitation.ID)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(member).Error; err != nil {
			return translateErr(err)
		}
		return tx.Model(&models.TeamInvitation{}).
			Where("id = ?", invitation.ID).
			Updates(map[string]interface{}{
				"status":      enum.InvitationStatusAccepted,
				"accepted_at": acceptedAt,
			}).Error
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	invitation.Status = enum.InvitationStatusAccepted
	invitation.AcceptedAt = &acceptedAt
	return nil
}

func (r *teamInvitationRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamInvitationRepository.ExpireStale")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	result := r.db.WithContext(ctx).
		Model(&models.TeamInvitation{}).
		Where("status = ? AND expires_at < ?", enum.InvitationStatusPending, now).
		Updates(map[string]interface{}{
			"status":     enum.InvitationStatusExpired,
			"updated_at": now,
		})
	if result.Error != nil {
		tracing.TraceErr(span, errors.Wrap(result.Error, "db error"))
		return 0, result.Error
	}

	span.LogFields(tracingLog.Int64("response.expired", result.RowsAffected))
	return result.RowsAffected, nil
}
