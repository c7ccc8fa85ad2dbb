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
	"github.com/calcbuilder/adminstack/internal/utils"
)

// CompanyDomainSettings are the company columns written together with a newly issued verification.
type CompanyDomainSettings struct {
	Domain              string
	CustomDomainEnabled bool
	SubdomainEnabled    bool
	WhiteLabelEnabled   bool
}

type DomainVerificationRepository interface {
	GetByID(ctx context.Context, companyId, verificationId string) (*models.DomainVerification, error)
	CreateWithCompanyMirror(ctx context.Context, verification *models.DomainVerification, settings CompanyDomainSettings) error
	SaveCheckResult(ctx context.Context, verification *models.DomainVerification, countAttempt bool) error
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type domainVerificationRepository struct {
	db *gorm.DB
}

func NewDomainVerificationRepository(db *gorm.DB) DomainVerificationRepository {
	return &domainVerificationRepository{
		db: db,
	}
}

func (r *domainVerificationRepository) GetByID(ctx context.Context, companyId, verificationId string) (*models.DomainVerification, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainVerificationRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, verificationId)

	var verification models.DomainVerification
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", verificationId, companyId).
		First(&verification).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.LogFields(tracingLog.Bool("response.found", false))
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &verification, nil
}

// CreateWithCompanyMirror inserts a pending verification and points the company at it.
// Both writes commit or roll back together.
func (r *domainVerificationRepository) CreateWithCompanyMirror(ctx context.Context, verification *models.DomainVerification, settings CompanyDomainSettings) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainVerificationRepository.CreateWithCompanyMirror")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, verification.CompanyID)
	span.LogKV("domain", verification.Domain)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(verification).Error; err != nil {
			return translateErr(err)
		}

		result := tx.Model(&models.Company{}).
			Where("id = ?", verification.CompanyID).
			Updates(map[string]interface{}{
				"domain":                     settings.Domain,
				"custom_domain_enabled":      settings.CustomDomainEnabled,
				"subdomain_enabled":          settings.SubdomainEnabled,
				"white_label_enabled":        settings.WhiteLabelEnabled,
				"domain_verification_id":     verification.ID,
				"domain_verification_status": verification.Status,
				"domain_verified_at":         nil,
				"updated_at":                 utils.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	tracing.TagEntity(span, verification.ID)
	return nil
}

// SaveCheckResult persists the evaluated state of a verification and mirrors status and
// verified_at onto the owning company while it still references this verification.
// When countAttempt is set the attempt counter is incremented in SQL and the stored value
// is read back into verification.
func (r *domainVerificationRepository) SaveCheckResult(ctx context.Context, verification *models.DomainVerification, countAttempt bool) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainVerificationRepository.SaveCheckResult")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, verification.CompanyID)
	tracing.TagEntity(span, verification.ID)
	span.LogKV("status", verification.Status.String(), "countAttempt", countAttempt)

	now := utils.Now()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]interface{}{
			"status":          verification.Status,
			"dns_records":     verification.DNSRecords,
			"verified_at":     verification.VerifiedAt,
			"error_message":   verification.ErrorMessage,
			"last_checked_at": verification.LastCheckedAt,
			"updated_at":      now,
		}
		if countAttempt {
			fields["verification_attempts"] = gorm.Expr("verification_attempts + 1")
		}

		err := tx.Model(&models.DomainVerification{}).
			Where("id = ?", verification.ID).
			Updates(fields).Error
		if err != nil {
			return err
		}

		if countAttempt {
			var attempts int
			err = tx.Model(&models.DomainVerification{}).
				Select("verification_attempts").
				Where("id = ?", verification.ID).
				Scan(&attempts).Error
			if err != nil {
				return err
			}
			verification.VerificationAttempts = attempts
		}

		return tx.Model(&models.Company{}).
			Where("id = ? AND domain_verification_id = ?", verification.CompanyID, verification.ID).
			Updates(map[string]interface{}{
				"domain_verification_status": verification.Status,
				"domain_verified_at":         verification.VerifiedAt,
				"updated_at":                 now,
			}).Error
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	verification.UpdatedAt = now
	return nil
}

// ExpireStale marks pending and failed verifications past their expiry as expired,
// together with the company mirror, and returns how many were expired.
func (r *domainVerificationRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainVerificationRepository.ExpireStale")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var expired int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		err := tx.Model(&models.DomainVerification{}).
			Where("status IN ? AND expires_at < ?",
				[]enum.VerificationStatus{enum.VerificationStatusPending, enum.VerificationStatusFailed}, now).
			Pluck("id", &ids).Error
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}

		result := tx.Model(&models.DomainVerification{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":     enum.VerificationStatusExpired,
				"updated_at": now,
			})
		if result.Error != nil {
			return result.Error
		}
		expired = result.RowsAffected

		return tx.Model(&models.Company{}).
			Where("domain_verification_id IN ?", ids).
			Updates(map[string]interface{}{
				"domain_verification_status": enum.VerificationStatusExpired,
				"updated_at":                 now,
			}).Error
	})
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return 0, err
	}

	span.LogFields(tracingLog.Int64("response.expired", expired))
	return expired, nil
}
