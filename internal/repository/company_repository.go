package repository

import (
	"context"
	"strings"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/utils"
)

type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company, defaultRoles []models.TeamRole) error
	GetByID(ctx context.Context, companyId string) (*models.Company, error)
	GetBySlug(ctx context.Context, slug string) (*models.Company, error)
	UpdateFields(ctx context.Context, companyId string, fields map[string]interface{}) error
	SoftDelete(ctx context.Context, companyId string) error
	Search(ctx context.Context, query string, limit, offset int) ([]models.Company, int64, error)
	FindByVerifiedDomain(ctx context.Context, domain string) (*models.Company, error)
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{
		db: db,
	}
}

// Create inserts the company and its default roles in one transaction.
func (r *companyRepository) Create(ctx context.Context, company *models.Company, defaultRoles []models.TeamRole) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("slug", company.Slug)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return translateErr(err)
		}
		for i := range defaultRoles {
			defaultRoles[i].CompanyID = company.ID
		}
		if len(defaultRoles) > 0 {
			if err := tx.Create(&defaultRoles).Error; err != nil {
				return translateErr(err)
			}
		}
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	tracing.TagCompany(span, company.ID)
	return nil
}

func (r *companyRepository) GetByID(ctx context.Context, companyId string) (*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)

	var company models.Company
	err := r.db.WithContext(ctx).
		Where("id = ?", companyId).
		First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.LogFields(tracingLog.Bool("response.found", false))
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &company, nil
}

func (r *companyRepository) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyRepository.GetBySlug")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("slug", slug)

	var company models.Company
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &company, nil
}

func (r *companyRepository) UpdateFields(ctx context.Context, companyId string, fields map[string]interface{}) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyRepository.UpdateFields")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)

	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = utils.Now()

	err := r.db.WithContext(ctx).
		Model(&models.Company{}).
		Where("id = ?", companyId).
		Updates(fields).Error
	if err != nil {
		err = translateErr(err)
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	return nil
}

func (r *companyRepository) SoftDelete(ctx context.Context, companyId string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyRepository.SoftDelete")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)

	err := r.db.WithContext(ctx).
		Where("id = ?", companyId).
		Delete(&models.Company{}).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	return nil
}

func (r *companyRepository) Search(ctx context.Context, query string, limit, offset int) ([]models.Company, int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyRepository.Search")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("query", query, "limit", limit, "offset", offset)

	base := r.db.WithContext(ctx).Model(&models.Company{})
	if query = strings.TrimSpace(query); query != "" {
		pattern := "%" + escapeLike(query) + "%"
		base = base.Where("name ILIKE ? OR slug ILIKE ?", pattern, pattern)
	}

	base = base.Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, 0, err
	}

	var companies []models.Company
	err := base.
		Order("name ASC").
		Limit(limit).
		Offset(offset).
		Find(&companies).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, 0, err
	}

	span.LogFields(tracingLog.Int64("response.total", total))
	return companies, total, nil
}

// FindByVerifiedDomain returns the company that has domain verified and enabled, or nil.
func (r *companyRepository) FindByVerifiedDomain(ctx context.Context, domain string) (*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyRepository.FindByVerifiedDomain")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.LogKV("domain", domain)

	var company models.Company
	err := r.db.WithContext(ctx).
		Where("domain = ? AND custom_domain_enabled = ? AND domain_verification_status = ?",
			domain, true, enum.VerificationStatusVerified).
		First(&company).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.LogFields(tracingLog.Bool("response.exists", false))
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	span.LogFields(tracingLog.Bool("response.exists", true))
	return &company, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
