package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/utils"
)

type TeamMemberRepository interface {
	Create(ctx context.Context, member *models.TeamMember) error
	GetByID(ctx context.Context, companyId, memberId string) (*models.TeamMember, error)
	FindByUserOrEmail(ctx context.Context, companyId, userId, email string) (*models.TeamMember, error)
	ListByCompany(ctx context.Context, companyId string) ([]models.TeamMember, error)
	CountByRole(ctx context.Context, companyId, roleId string) (int64, error)
	UpdateFields(ctx context.Context, companyId, memberId string, fields map[string]interface{}) error
	Delete(ctx context.Context, companyId, memberId string) error
}

type teamMemberRepository struct {
	db *gorm.DB
}

func NewTeamMemberRepository(db *gorm.DB) TeamMemberRepository {
	return &teamMemberRepository{
		db: db,
	}
}

func (r *teamMemberRepository) Create(ctx context.Context, member *models.TeamMember) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamMemberRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, member.CompanyID)

	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		err = translateErr(err)
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *teamMemberRepository) GetByID(ctx context.Context, companyId, memberId string) (*models.TeamMember, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamMemberRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, memberId)

	var member models.TeamMember
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", memberId, companyId).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &member, nil
}

// FindByUserOrEmail returns an existing membership matching either the user id or the email.
func (r *teamMemberRepository) FindByUserOrEmail(ctx context.Context, companyId, userId, email string) (*models.TeamMember, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamMemberRepository.FindByUserOrEmail")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)

	var member models.TeamMember
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND (user_id = ? OR LOWER(email) = LOWER(?))", companyId, userId, email).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &member, nil
}

func (r *teamMemberRepository) ListByCompany(ctx context.Context, companyId string) ([]models.TeamMember, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamMemberRepository.ListByCompany")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)

	var members []models.TeamMember
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyId).
		Order("joined_at ASC").
		Find(&members).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return members, nil
}

func (r *teamMemberRepository) CountByRole(ctx context.Context, companyId, roleId string) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamMemberRepository.CountByRole")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("company_id = ? AND role_id = ?", companyId, roleId).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return 0, err
	}

	return count, nil
}

func (r *teamMemberRepository) UpdateFields(ctx context.Context, companyId, memberId string, fields map[string]interface{}) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamMemberRepository.UpdateFields")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, memberId)

	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = utils.Now()

	err := r.db.WithContext(ctx).
		Model(&models.TeamMember{}).
		Where("id = ? AND company_id = ?", memberId, companyId).
		Updates(fields).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	return nil
}

func (r *teamMemberRepository) Delete(ctx context.Context, companyId, memberId string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamMemberRepository.Delete")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, memberId)

	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", memberId, companyId).
		Delete(&models.TeamMember{}).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	return nil
}
