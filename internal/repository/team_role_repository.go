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

type TeamRoleRepository interface {
	Create(ctx context.Context, role *models.TeamRole) error
	GetByID(ctx context.Context, companyId, roleId string) (*models.TeamRole, error)
	GetDefault(ctx context.Context, companyId string) (*models.TeamRole, error)
	ListByCompany(ctx context.Context, companyId string) ([]models.TeamRole, error)
	UpdateFields(ctx context.Context, companyId, roleId string, fields map[string]interface{}) error
	Delete(ctx context.Context, companyId, roleId string) error
}

type teamRoleRepository struct {
	db *gorm.DB
}

func NewTeamRoleRepository(db *gorm.DB) TeamRoleRepository {
	return &teamRoleRepository{
		db: db,
	}
}

func (r *teamRoleRepository) Create(ctx context.Context, role *models.TeamRole) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamRoleRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, role.CompanyID)

	if err := r.db.WithContext(ctx).Create(role).Error; err != nil {
		err = translateErr(err)
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *teamRoleRepository) GetByID(ctx context.Context, companyId, roleId string) (*models.TeamRole, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamRoleRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, roleId)

	var role models.TeamRole
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", roleId, companyId).
		First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &role, nil
}

// GetDefault returns the role new members get when none is given.
func (r *teamRoleRepository) GetDefault(ctx context.Context, companyId string) (*models.TeamRole, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamRoleRepository.GetDefault")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)

	var role models.TeamRole
	err := r.db.WithContext(ctx).
		Where("company_id = ? AND is_default = ?", companyId, true).
		Order("created_at ASC").
		First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &role, nil
}

func (r *teamRoleRepository) ListByCompany(ctx context.Context, companyId string) ([]models.TeamRole, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamRoleRepository.ListByCompany")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)

	var roles []models.TeamRole
	err := r.db.WithContext(ctx).
		Where("company_id = ?", companyId).
		Order("created_at ASC").
		Find(&roles).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return roles, nil
}

func (r *teamRoleRepository) UpdateFields(ctx context.Context, companyId, roleId string, fields map[string]interface{}) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamRoleRepository.UpdateFields")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, roleId)

	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = utils.Now()

	err := r.db.WithContext(ctx).
		Model(&models.TeamRole{}).
		Where("id = ? AND company_id = ?", roleId, companyId).
		Updates(fields).Error
	if err != nil {
		err = translateErr(err)
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	return nil
}

func (r *teamRoleRepository) Delete(ctx context.Context, companyId, roleId string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "TeamRoleRepository.Delete")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, roleId)

	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", roleId, companyId).
		Delete(&models.TeamRole{}).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	return nil
}
