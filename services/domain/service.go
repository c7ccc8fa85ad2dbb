package domain

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	tracingLog "github.com/opentracing/opentracing-go/log"
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/enum"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/utils"
	"github.com/calcbuilder/adminstack/internal/validation"
)

const (
	tokenLength            = 32
	defaultVerificationTTL = 7 * 24 * time.Hour
)

type domainVerificationService struct {
	log               logger.Logger
	companies         repository.CompanyRepository
	verifications     repository.DomainVerificationRepository
	resolver          interfaces.DNSResolver
	httpChallenge     interfaces.HTTPChallengeVerifier
	publisher         interfaces.EventPublisher
	emails            interfaces.EmailService
	canonicalHostname string
	verificationTTL   time.Duration
	now               func() time.Time
}

func NewDomainVerificationService(
	cfg *config.Config,
	log logger.Logger,
	repos *repository.Repositories,
	resolver interfaces.DNSResolver,
	httpChallenge interfaces.HTTPChallengeVerifier,
	publisher interfaces.EventPublisher,
	emails interfaces.EmailService,
) interfaces.DomainVerificationService {
	ttl := cfg.DomainConfig.VerificationTTL
	if ttl <= 0 {
		ttl = defaultVerificationTTL
	}

	return &domainVerificationService{
		log:               log,
		companies:         repos.CompanyRepository,
		verifications:     repos.DomainVerificationRepository,
		resolver:          resolver,
		httpChallenge:     httpChallenge,
		publisher:         publisher,
		emails:            emails,
		canonicalHostname: normalizeHostname(cfg.AppConfig.CanonicalHostname),
		verificationTTL:   ttl,
		now:               utils.Now,
	}
}

func (s *domainVerificationService) RequestVerification(ctx context.Context, companyId string, request dto.DomainVerificationRequest) (*dto.DomainVerificationIssued, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainVerificationService.RequestVerification")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.LogObjectAsJson(span, "request", request)

	domain, err := validateRequest(request)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	company, err := s.getCompany(ctx, companyId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	issued, err := s.issue(ctx, company, domain, request)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	return issued, nil
}

func (s *domainVerificationService) GetDomainStatus(ctx context.Context, companyId string) (*dto.CompanyDomainStatus, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainVerificationService.GetDomainStatus")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)

	company, err := s.getCompany(ctx, companyId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	verification, err := s.currentVerification(ctx, company)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return &dto.CompanyDomainStatus{
		Company:      company,
		Verification: verification,
	}, nil
}

// UpdateDomain changes the domain feature flags. A changed domain, or a company without a
// verification for the requested domain, gets a newly issued verification that supersedes
// the current one.
func (s *domainVerificationService) UpdateDomain(ctx context.Context, companyId string, request dto.DomainVerificationRequest) (*dto.DomainVerificationIssued, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainVerificationService.UpdateDomain")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.LogObjectAsJson(span, "request", request)

	domain, err := validateRequest(request)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	company, err := s.getCompany(ctx, companyId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	verification, err := s.currentVerification(ctx, company)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	stale := verification != nil && verification.Status != enum.VerificationStatusVerified &&
		verification.IsExpiredAt(s.now())
	if verification == nil || stale ||
		company.Domain == nil || *company.Domain != domain || verification.Domain != domain {
		span.LogFields(tracingLog.Bool("reissue", true))
		issued, err := s.issue(ctx, company, domain, request)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		return issued, nil
	}

	fields := map[string]interface{}{}
	if request.CustomDomainEnabled != nil {
		fields["custom_domain_enabled"] = *request.CustomDomainEnabled
		company.CustomDomainEnabled = *request.CustomDomainEnabled
	}
	if request.SubdomainEnabled != nil {
		fields["subdomain_enabled"] = *request.SubdomainEnabled
		company.SubdomainEnabled = *request.SubdomainEnabled
	}
	if request.WhiteLabelEnabled != nil {
		fields["white_label_enabled"] = *request.WhiteLabelEnabled
		company.WhiteLabelEnabled = *request.WhiteLabelEnabled
	}

	// enabling a verified domain must not collide with another company's claim
	if company.CustomDomainEnabled && verification.Status == enum.VerificationStatusVerified {
		if err = s.ensureNotClaimedElsewhere(ctx, company.ID, domain); err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
	}

	if len(fields) > 0 {
		err = s.companies.UpdateFields(ctx, company.ID, fields)
		if err != nil {
			tracing.TraceErr(span, errors.Wrap(err, "failed to update domain flags"))
			return nil, err
		}
		s.publisher.PublishNotification(ctx, company.ID, company.ID, enum.COMPANY, &dto.EventCompletedDetails{Update: true})
	}

	return &dto.DomainVerificationIssued{
		Company:      company,
		Verification: s.challengeFor(verification),
	}, nil
}

// CheckVerification resolves the challenge records of the company's current verification
// and records the outcome. Expired verifications are never resolved and never counted; verified
// ones are counted without being resolved again.
func (s *domainVerificationService) CheckVerification(ctx context.Context, companyId string) (*dto.DomainVerificationCheck, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainVerificationService.CheckVerification")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)

	company, err := s.getCompany(ctx, companyId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if company.DomainVerificationID == nil || *company.DomainVerificationID == "" {
		tracing.TraceErr(span, apperrors.ErrNoVerificationRequest)
		return nil, apperrors.ErrNoVerificationRequest
	}

	verification, err := s.verifications.GetByID(ctx, companyId, *company.DomainVerificationID)
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "failed to get verification"))
		return nil, err
	}
	if verification == nil {
		tracing.TraceErr(span, apperrors.ErrVerificationNotFound)
		return nil, apperrors.ErrVerificationNotFound
	}
	tracing.TagEntity(span, verification.ID)
	ctx = utils.SetCompanyIdInContext(ctx, companyId)

	now := s.now()

	// verified is terminal: no lookups, the call is still counted
	if verification.Status == enum.VerificationStatusVerified {
		verification.LastCheckedAt = &now
		err = s.verifications.SaveCheckResult(ctx, verification, true)
		if err != nil {
			tracing.TraceErr(span, errors.Wrap(err, "failed to save verification check"))
			return nil, err
		}
		span.LogFields(tracingLog.String("result", "already verified"),
			tracingLog.Int("result.attempts", verification.VerificationAttempts))
		return newCheckResult(verification), nil
	}

	if verification.IsExpiredAt(now) {
		err = s.expire(ctx, verification, now)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		tracing.TraceErr(span, apperrors.ErrVerificationExpired)
		return nil, apperrors.ErrVerificationExpired
	}

	ownershipProven := s.evaluate(ctx, verification)
	cnameFound := verification.DNSRecords[1].Status == enum.DNSRecordFound

	verification.LastCheckedAt = &now
	if ownershipProven && cnameFound {
		verification.Status = enum.VerificationStatusVerified
		verification.VerifiedAt = &now
		verification.ErrorMessage = nil
	} else {
		verification.Status = enum.VerificationStatusFailed
		verification.VerifiedAt = nil
		verification.ErrorMessage = utils.StringPtr(failureReason(verification.DNSRecords, ownershipProven))
	}

	err = s.verifications.SaveCheckResult(ctx, verification, true)
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "failed to save verification result"))
		return nil, err
	}
	span.LogFields(tracingLog.String("result.status", verification.Status.String()),
		tracingLog.Int("result.attempts", verification.VerificationAttempts))

	s.publishCheckOutcome(ctx, company, verification)

	return newCheckResult(verification), nil
}

func (s *domainVerificationService) ExpireStaleVerifications(ctx context.Context) (int64, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainVerificationService.ExpireStaleVerifications")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	expired, err := s.verifications.ExpireStale(ctx, s.now())
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "failed to expire stale verifications"))
		return 0, err
	}

	span.LogFields(tracingLog.Int64("result.expired", expired))
	return expired, nil
}

func validateRequest(request dto.DomainVerificationRequest) (string, error) {
	validationErr := apperrors.NewValidationError()

	domain, err := validation.NormalizeDomain("domain", request.Domain)
	validationErr.Merge(err)
	if err = validation.ValidateVerificationType("verification_type", request.VerificationType); err != nil {
		validationErr.Add("verification_type", "must be one of dns, file, meta")
	}

	return domain, validationErr.OrNil()
}

func (s *domainVerificationService) getCompany(ctx context.Context, companyId string) (*models.Company, error) {
	company, err := s.companies.GetByID(ctx, companyId)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get company")
	}
	if company == nil {
		return nil, apperrors.ErrCompanyNotFound
	}
	return company, nil
}

func (s *domainVerificationService) currentVerification(ctx context.Context, company *models.Company) (*models.DomainVerification, error) {
	if company.DomainVerificationID == nil || *company.DomainVerificationID == "" {
		return nil, nil
	}
	verification, err := s.verifications.GetByID(ctx, company.ID, *company.DomainVerificationID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get verification")
	}
	return verification, nil
}

func (s *domainVerificationService) ensureNotClaimedElsewhere(ctx context.Context, companyId, domain string) error {
	owner, err := s.companies.FindByVerifiedDomain(ctx, domain)
	if err != nil {
		return errors.Wrap(err, "failed to check domain ownership")
	}
	if owner != nil && owner.ID != companyId {
		return apperrors.ErrDomainClaimed
	}
	return nil
}

func (s *domainVerificationService) issue(ctx context.Context, company *models.Company, domain string, request dto.DomainVerificationRequest) (*dto.DomainVerificationIssued, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "DomainVerificationService.issue")
	defer span.Finish()
	tracing.TagCompany(span, company.ID)
	span.LogKV("domain", domain)

	if company.HasVerifiedDomain(domain) {
		return nil, apperrors.ErrDomainAlreadyVerified
	}
	if err := s.ensureNotClaimedElsewhere(ctx, company.ID, domain); err != nil {
		return nil, err
	}

	token, err := utils.GenerateToken(tokenLength)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate verification token")
	}

	now := s.now()
	verification := &models.DomainVerification{
		CompanyID:         company.ID,
		Domain:            domain,
		VerificationToken: token,
		VerificationType:  request.VerificationType,
		Status:            enum.VerificationStatusPending,
		DNSRecords:        expectedRecords(domain, token, s.canonicalHostname),
		ExpiresAt:         now.Add(s.verificationTTL),
	}
	settings := repository.CompanyDomainSettings{
		Domain:              domain,
		CustomDomainEnabled: utils.GetOrDefault(request.CustomDomainEnabled, company.CustomDomainEnabled),
		SubdomainEnabled:    utils.GetOrDefault(request.SubdomainEnabled, company.SubdomainEnabled),
		WhiteLabelEnabled:   utils.GetOrDefault(request.WhiteLabelEnabled, company.WhiteLabelEnabled),
	}

	err = s.verifications.CreateWithCompanyMirror(ctx, verification, settings)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, apperrors.ErrCompanyNotFound
		}
		return nil, errors.Wrap(err, "failed to save verification")
	}
	tracing.TagEntity(span, verification.ID)

	status := enum.VerificationStatusPending
	company.Domain = utils.StringPtr(domain)
	company.CustomDomainEnabled = settings.CustomDomainEnabled
	company.SubdomainEnabled = settings.SubdomainEnabled
	company.WhiteLabelEnabled = settings.WhiteLabelEnabled
	company.DomainVerificationID = utils.StringPtr(verification.ID)
	company.DomainVerificationStatus = &status
	company.DomainVerifiedAt = nil

	ctx = utils.SetCompanyIdInContext(ctx, company.ID)
	s.publishEvent(ctx, verification.ID, dto.DomainVerificationRequested{
		CompanyId:        company.ID,
		VerificationId:   verification.ID,
		Domain:           domain,
		VerificationType: verification.VerificationType,
		ExpiresAt:        verification.ExpiresAt,
	})
	s.publisher.PublishNotification(ctx, company.ID, verification.ID, enum.DOMAIN_VERIFICATION, &dto.EventCompletedDetails{Create: true})

	return &dto.DomainVerificationIssued{
		Company:      company,
		Verification: s.challengeFor(verification),
	}, nil
}

// evaluate resolves both challenge records and reports whether domain ownership is proven,
// either by the TXT record or, for file and meta verifications, by the HTTP challenge.
func (s *domainVerificationService) evaluate(ctx context.Context, verification *models.DomainVerification) bool {
	if len(verification.DNSRecords) != 2 {
		verification.DNSRecords = expectedRecords(verification.Domain, verification.VerificationToken, s.canonicalHostname)
	}
	records := make(models.DNSRecords, len(verification.DNSRecords))
	copy(records, verification.DNSRecords)

	txtValues := s.resolver.Resolve(ctx, verification.Domain, enum.DNSRecordTXT)
	evaluateTXT(&records[0], txtValues)

	cnameValues := s.resolver.Resolve(ctx, wwwName(verification.Domain), enum.DNSRecordCNAME)
	evaluateCNAME(&records[1], cnameValues)

	verification.DNSRecords = records

	if records[0].Status == enum.DNSRecordFound {
		return true
	}
	if verification.VerificationType.UsesHTTPChallenge() {
		return s.httpChallenge.Verify(ctx, verification.Domain, verification.VerificationType, verification.VerificationToken)
	}
	return false
}

func (s *domainVerificationService) expire(ctx context.Context, verification *models.DomainVerification, now time.Time) error {
	alreadyExpired := verification.Status == enum.VerificationStatusExpired

	verification.Status = enum.VerificationStatusExpired
	verification.ErrorMessage = utils.StringPtr("Verification expired. Please create a new verification request.")
	verification.LastCheckedAt = &now

	err := s.verifications.SaveCheckResult(ctx, verification, false)
	if err != nil {
		return errors.Wrap(err, "failed to save expired verification")
	}

	if !alreadyExpired {
		s.publishEvent(ctx, verification.ID, dto.DomainVerificationExpired{
			CompanyId:      verification.CompanyID,
			VerificationId: verification.ID,
			Domain:         verification.Domain,
			ExpiredAt:      verification.ExpiresAt,
		})
	}
	return nil
}

func (s *domainVerificationService) publishCheckOutcome(ctx context.Context, company *models.Company, verification *models.DomainVerification) {
	if verification.Status == enum.VerificationStatusVerified {
		s.publishEvent(ctx, verification.ID, dto.DomainVerified{
			CompanyId:      verification.CompanyID,
			VerificationId: verification.ID,
			Domain:         verification.Domain,
			VerifiedAt:     *verification.VerifiedAt,
			Attempts:       verification.VerificationAttempts,
		})
		s.notifyVerified(ctx, company, verification)
	} else {
		s.publishEvent(ctx, verification.ID, dto.DomainVerificationFailed{
			CompanyId:      verification.CompanyID,
			VerificationId: verification.ID,
			Domain:         verification.Domain,
			Reason:         utils.GetOrDefault(verification.ErrorMessage, ""),
			Attempts:       verification.VerificationAttempts,
		})
	}
	s.publisher.PublishNotification(ctx, verification.CompanyID, verification.ID, enum.DOMAIN_VERIFICATION, &dto.EventCompletedDetails{Update: true})
}

// notifyVerified emails the acting user. Delivery failures are only logged.
func (s *domainVerificationService) notifyVerified(ctx context.Context, company *models.Company, verification *models.DomainVerification) {
	to := utils.GetUserEmailFromContext(ctx)
	if to == "" || s.emails == nil {
		return
	}
	err := s.emails.SendTemplate(ctx, to, enum.EmailTemplateDomainVerified, company.DefaultLanguage, map[string]string{
		"CompanyName": company.Name,
		"Domain":      verification.Domain,
	})
	if err != nil {
		s.log.Warnf("Failed to send domain verified email for %s: %v", verification.ID, err)
	}
}

func (s *domainVerificationService) publishEvent(ctx context.Context, verificationId string, event interface{}) {
	err := s.publisher.PublishFanoutEvent(ctx, verificationId, enum.DOMAIN_VERIFICATION, event)
	if err != nil {
		s.log.Errorf("Failed to publish domain verification event for %s: %v", verificationId, err)
	}
}

func (s *domainVerificationService) challengeFor(verification *models.DomainVerification) *dto.VerificationChallenge {
	if verification == nil {
		return nil
	}
	return &dto.VerificationChallenge{
		ID:               verification.ID,
		Domain:           verification.Domain,
		Token:            verification.VerificationToken,
		VerificationType: verification.VerificationType,
		Status:           verification.Status,
		DNSRecords:       verification.DNSRecords,
		Instructions:     instructionsFor(verification, s.canonicalHostname),
		ExpiresAt:        verification.ExpiresAt,
	}
}

func newCheckResult(verification *models.DomainVerification) *dto.DomainVerificationCheck {
	status := verification.Status
	return &dto.DomainVerificationCheck{
		Verification: verification,
		Company: dto.CompanyVerificationState{
			DomainVerificationStatus: &status,
			DomainVerifiedAt:         verification.VerifiedAt,
		},
	}
}
