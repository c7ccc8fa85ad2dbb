package memory

import (
	"context"
	"time"

	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/utils"
)

type domainVerificationRepository struct {
	store *Store
}

func (r *domainVerificationRepository) GetByID(ctx context.Context, companyId, verificationId string) (*models.DomainVerification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	v, ok := r.store.verifications[verificationId]
	if !ok || v.CompanyID != companyId {
		return nil, nil
	}
	return copyVerification(v), nil
}

func (r *domainVerificationRepository) CreateWithCompanyMirror(ctx context.Context, verification *models.DomainVerification, settings repository.CompanyDomainSettings) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	company, ok := s.companies[verification.CompanyID]
	if !ok || company.DeletedAt.Valid {
		return repository.ErrRecordNotFound
	}
	for _, existing := range s.verifications {
		if existing.VerificationToken == verification.VerificationToken {
			return repository.ErrAlreadyExists
		}
	}
	if err := runHook(verification); err != nil {
		return err
	}
	stamp(&verification.CreatedAt, &verification.UpdatedAt)
	s.verifications[verification.ID] = copyVerification(verification)

	status := verification.Status
	company.Domain = utils.StringPtr(settings.Domain)
	company.CustomDomainEnabled = settings.CustomDomainEnabled
	company.SubdomainEnabled = settings.SubdomainEnabled
	company.WhiteLabelEnabled = settings.WhiteLabelEnabled
	company.DomainVerificationID = utils.StringPtr(verification.ID)
	company.DomainVerificationStatus = &status
	company.DomainVerifiedAt = nil
	company.UpdatedAt = utils.Now()
	return nil
}

func (r *domainVerificationRepository) SaveCheckResult(ctx context.Context, verification *models.DomainVerification, countAttempt bool) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}

	stored, ok := s.verifications[verification.ID]
	if !ok {
		return nil
	}
	now := utils.Now()
	attempts := stored.VerificationAttempts
	if countAttempt {
		attempts++
	}

	updated := copyVerification(verification)
	updated.VerificationAttempts = attempts
	updated.UpdatedAt = now
	s.verifications[verification.ID] = updated
	verification.VerificationAttempts = attempts
	verification.UpdatedAt = now

	if company, ok := s.companies[verification.CompanyID]; ok &&
		company.DomainVerificationID != nil && *company.DomainVerificationID == verification.ID {
		status := verification.Status
		company.DomainVerificationStatus = &status
		company.DomainVerifiedAt = verification.VerifiedAt
		company.UpdatedAt = now
	}
	return nil
}

func (r *domainVerificationRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return 0, err
	}

	var expired int64
	for _, v := range s.verifications {
		if !v.Status.IsCheckable() || !v.ExpiresAt.Before(now) {
			continue
		}
		v.Status = enum.VerificationStatusExpired
		v.UpdatedAt = now
		expired++

		for _, company := range s.companies {
			if company.DomainVerificationID != nil && *company.DomainVerificationID == v.ID {
				status := enum.VerificationStatusExpired
				company.DomainVerificationStatus = &status
				company.UpdatedAt = now
			}
		}
	}
	return expired, nil
}
