package domain

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/enum"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository/memory"
	"github.com/calcbuilder/adminstack/internal/utils"
)

type stubResolver struct {
	mu      sync.Mutex
	records map[string][]string
	calls   int
}

func newStubResolver() *stubResolver {
	return &stubResolver{records: map[string][]string{}}
}

func (r *stubResolver) set(name string, recordType enum.DNSRecordType, values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[recordType.String()+" "+name] = values
}

func (r *stubResolver) Resolve(ctx context.Context, name string, recordType enum.DNSRecordType) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.records[recordType.String()+" "+name]
}

type stubHTTPChallenge struct {
	verified bool
	calls    int
}

func (h *stubHTTPChallenge) Verify(ctx context.Context, domain string, verificationType enum.VerificationType, token string) bool {
	h.calls++
	return h.verified
}

type recordingPublisher struct {
	mu            sync.Mutex
	events        []interface{}
	notifications int
}

func (p *recordingPublisher) PublishFanoutEvent(ctx context.Context, entityId string, entityType enum.EntityType, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, message)
	return utils.ValidateCompany(ctx)
}

func (p *recordingPublisher) PublishNotification(ctx context.Context, companyId string, entityId string, entityType enum.EntityType, details *dto.EventCompletedDetails) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications++
}

func (p *recordingPublisher) Close() error {
	return nil
}

func (p *recordingPublisher) last() interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.events) == 0 {
		return nil
	}
	return p.events[len(p.events)-1]
}

type recordingEmails struct {
	sent []string
}

func (e *recordingEmails) Send(ctx context.Context, message dto.EmailMessage) error {
	e.sent = append(e.sent, message.To)
	return nil
}

func (e *recordingEmails) SendTemplate(ctx context.Context, to string, template enum.EmailTemplate, language enum.Language, params map[string]string) error {
	e.sent = append(e.sent, to+" "+template.String())
	return nil
}

type fixture struct {
	service   *domainVerificationService
	store     *memory.Store
	resolver  *stubResolver
	http      *stubHTTPChallenge
	publisher *recordingPublisher
	emails    *recordingEmails
	now       time.Time
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()

	cfg := &config.Config{
		AppConfig:    &config.AppConfig{CanonicalHostname: "calcbuilder.com"},
		DomainConfig: &config.DomainConfig{VerificationTTL: 7 * 24 * time.Hour},
	}

	repos, store := memory.NewRepositories()
	f := &fixture{
		store:     store,
		resolver:  newStubResolver(),
		http:      &stubHTTPChallenge{},
		publisher: &recordingPublisher{},
		emails:    &recordingEmails{},
		now:       time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewDomainVerificationService(cfg, log, repos, f.resolver, f.http, f.publisher, f.emails).(*domainVerificationService)
	f.service.now = func() time.Time { return f.now }

	store.PutCompany(models.Company{ID: "comp_a", Name: "Acme Oy", Slug: "acme", DefaultLanguage: enum.LanguageEnglish})
	store.PutCompany(models.Company{ID: "comp_b", Name: "Beta Ab", Slug: "beta", DefaultLanguage: enum.LanguageSwedish})
	return f
}

func (f *fixture) publishCorrectRecords(domain, token string) {
	f.resolver.set(domain, enum.DNSRecordTXT, "v=spf1 -all", txtRecordValue(token))
	f.resolver.set(wwwName(domain), enum.DNSRecordCNAME, "calcbuilder.com.")
}

func dnsRequest(domain string) dto.DomainVerificationRequest {
	return dto.DomainVerificationRequest{
		Domain:              domain,
		VerificationType:    enum.VerificationTypeDNS,
		CustomDomainEnabled: utils.BoolPtr(true),
	}
}

func TestRequestVerification_IssuesChallenge(t *testing.T) {
	f := newFixture(t)

	issued, err := f.service.RequestVerification(context.Background(), "comp_a", dnsRequest("Example.com."))
	require.NoError(t, err)

	challenge := issued.Verification
	require.NotNil(t, challenge)
	assert.Equal(t, "example.com", challenge.Domain)
	assert.Equal(t, enum.VerificationStatusPending, challenge.Status)
	assert.Len(t, challenge.Token, tokenLength)
	assert.Equal(t, f.now.Add(7*24*time.Hour), challenge.ExpiresAt)

	require.Len(t, challenge.DNSRecords, 2)
	assert.Equal(t, models.DNSRecord{
		Type:          enum.DNSRecordTXT,
		Name:          "example.com",
		ExpectedValue: "calcbuilder-verification=" + challenge.Token,
		Status:        enum.DNSRecordExpected,
	}, challenge.DNSRecords[0])
	assert.Equal(t, models.DNSRecord{
		Type:          enum.DNSRecordCNAME,
		Name:          "www.example.com",
		ExpectedValue: "calcbuilder.com",
		Status:        enum.DNSRecordExpected,
	}, challenge.DNSRecords[1])
	assert.NotEmpty(t, challenge.Instructions.Steps)

	company := f.store.Company("comp_a")
	require.NotNil(t, company.Domain)
	assert.Equal(t, "example.com", *company.Domain)
	assert.True(t, company.CustomDomainEnabled)
	assert.Equal(t, challenge.ID, *company.DomainVerificationID)
	assert.Equal(t, enum.VerificationStatusPending, *company.DomainVerificationStatus)
	assert.Nil(t, company.DomainVerifiedAt)

	stored := f.store.Verification(challenge.ID)
	require.NotNil(t, stored)
	assert.Equal(t, 0, stored.VerificationAttempts)

	assert.IsType(t, dto.DomainVerificationRequested{}, f.publisher.last())
	assert.Equal(t, 0, f.resolver.calls)
}

func TestRequestVerification_FileInstructions(t *testing.T) {
	f := newFixture(t)

	issued, err := f.service.RequestVerification(context.Background(), "comp_a", dto.DomainVerificationRequest{
		Domain:           "example.com",
		VerificationType: enum.VerificationTypeFile,
	})
	require.NoError(t, err)

	instructions := issued.Verification.Instructions
	assert.Equal(t, "https://example.com/.well-known/calcbuilder-verification.txt", instructions.FileURL)
	assert.Equal(t, issued.Verification.Token, instructions.FileContent)
	assert.Empty(t, instructions.MetaTag)
}

func TestRequestVerification_MetaInstructions(t *testing.T) {
	f := newFixture(t)

	issued, err := f.service.RequestVerification(context.Background(), "comp_a", dto.DomainVerificationRequest{
		Domain:           "example.com",
		VerificationType: enum.VerificationTypeMeta,
	})
	require.NoError(t, err)

	assert.Equal(t, `<meta name="calcbuilder-verification" content="`+issued.Verification.Token+`">`,
		issued.Verification.Instructions.MetaTag)
}

func TestRequestVerification_ValidationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		request dto.DomainVerificationRequest
		fields  []string
	}{
		{
			name:    "label longer than 63 characters",
			request: dnsRequest(strings.Repeat("a", 64) + ".com"),
			fields:  []string{"domain"},
		},
		{
			name:    "leading hyphen",
			request: dnsRequest("-example.com"),
			fields:  []string{"domain"},
		},
		{
			name:    "single label",
			request: dnsRequest("localhost"),
			fields:  []string{"domain"},
		},
		{
			name:    "unknown verification type",
			request: dto.DomainVerificationRequest{Domain: "example.com", VerificationType: "email"},
			fields:  []string{"verification_type"},
		},
		{
			name:    "both invalid",
			request: dto.DomainVerificationRequest{Domain: "bad_domain", VerificationType: ""},
			fields:  []string{"domain", "verification_type"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.service.RequestVerification(context.Background(), "comp_a", tc.request)

			validationErr, ok := apperrors.AsValidationError(err)
			require.True(t, ok, "expected validation error, got %v", err)
			for _, field := range tc.fields {
				assert.Contains(t, validationErr.Fields, field)
			}
			assert.Equal(t, 0, f.store.Verifications())
			assert.Nil(t, f.store.Company("comp_a").DomainVerificationID)
		})
	}
}

func TestRequestVerification_CompanyNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.RequestVerification(context.Background(), "comp_missing", dnsRequest("example.com"))
	assert.ErrorIs(t, err, apperrors.ErrCompanyNotFound)
	assert.Equal(t, 0, f.store.Verifications())
}

func TestRequestVerification_Uniqueness(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	f.publishCorrectRecords("example.com", issued.Verification.Token)

	check, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)
	require.Equal(t, enum.VerificationStatusVerified, check.Verification.Status)

	_, err = f.service.RequestVerification(ctx, "comp_b", dnsRequest("example.com"))
	assert.ErrorIs(t, err, apperrors.ErrDomainClaimed)

	_, err = f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	assert.ErrorIs(t, err, apperrors.ErrDomainAlreadyVerified)

	assert.Equal(t, 1, f.store.Verifications())
}

func TestRequestVerification_DisabledVerifiedDomainCanBeClaimed(t *testing.T) {
	f := newFixture(t)
	status := enum.VerificationStatusVerified
	f.store.PutCompany(models.Company{
		ID:                       "comp_c",
		Name:                     "Gamma",
		Slug:                     "gamma",
		Domain:                   utils.StringPtr("example.com"),
		CustomDomainEnabled:      false,
		DomainVerificationStatus: &status,
	})

	_, err := f.service.RequestVerification(context.Background(), "comp_a", dnsRequest("example.com"))
	assert.NoError(t, err)
}

// Scenario B
func TestCheckVerification_MissingCNAME(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	f.resolver.set("example.com", enum.DNSRecordTXT, txtRecordValue(issued.Verification.Token))

	check, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)

	v := check.Verification
	assert.Equal(t, enum.VerificationStatusFailed, v.Status)
	assert.Equal(t, enum.DNSRecordFound, v.DNSRecords[0].Status)
	assert.Equal(t, enum.DNSRecordMissing, v.DNSRecords[1].Status)
	assert.Nil(t, v.DNSRecords[1].ObservedValue)
	assert.Nil(t, v.VerifiedAt)
	require.NotNil(t, v.ErrorMessage)
	assert.Contains(t, *v.ErrorMessage, "CNAME record at www.example.com not found")
	assert.NotContains(t, *v.ErrorMessage, "TXT")
	assert.Equal(t, 1, v.VerificationAttempts)
	assert.Equal(t, 2, f.resolver.calls)

	assert.Equal(t, enum.VerificationStatusFailed, *check.Company.DomainVerificationStatus)
	assert.Equal(t, enum.VerificationStatusFailed, *f.store.Company("comp_a").DomainVerificationStatus)
	assert.IsType(t, dto.DomainVerificationFailed{}, f.publisher.last())
}

// Scenario C
func TestCheckVerification_BothRecordsCorrect(t *testing.T) {
	f := newFixture(t)
	ctx := utils.WithCustomContext(context.Background(), &utils.CustomContext{UserEmail: "admin@acme.fi"})

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	f.publishCorrectRecords("example.com", issued.Verification.Token)
	f.advance(time.Hour)

	check, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)

	v := check.Verification
	assert.Equal(t, enum.VerificationStatusVerified, v.Status)
	require.NotNil(t, v.VerifiedAt)
	assert.Equal(t, f.now, *v.VerifiedAt)
	assert.Nil(t, v.ErrorMessage)
	assert.Equal(t, enum.DNSRecordFound, v.DNSRecords[0].Status)
	assert.Equal(t, enum.DNSRecordFound, v.DNSRecords[1].Status)
	assert.Equal(t, "calcbuilder.com", *v.DNSRecords[1].ObservedValue)

	company := f.store.Company("comp_a")
	assert.Equal(t, enum.VerificationStatusVerified, *company.DomainVerificationStatus)
	require.NotNil(t, company.DomainVerifiedAt)
	assert.Equal(t, f.now, *company.DomainVerifiedAt)
	assert.Equal(t, enum.VerificationStatusVerified, *check.Company.DomainVerificationStatus)

	assert.IsType(t, dto.DomainVerified{}, f.publisher.last())
	assert.Equal(t, []string{"admin@acme.fi domain-verified"}, f.emails.sent)
}

// Scenario D
func TestCheckVerification_Expired(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	f.publishCorrectRecords("example.com", issued.Verification.Token)
	f.advance(7*24*time.Hour + time.Second)

	for i := 0; i < 2; i++ {
		_, err = f.service.CheckVerification(ctx, "comp_a")
		assert.ErrorIs(t, err, apperrors.ErrVerificationExpired)
	}

	assert.Equal(t, 0, f.resolver.calls)
	stored := f.store.Verification(issued.Verification.ID)
	assert.Equal(t, enum.VerificationStatusExpired, stored.Status)
	assert.Equal(t, 0, stored.VerificationAttempts)
	assert.Equal(t, enum.VerificationStatusExpired, *f.store.Company("comp_a").DomainVerificationStatus)
	assert.IsType(t, dto.DomainVerificationExpired{}, f.publisher.last())
}

func TestCheckVerification_ExactlyAtExpiryStillChecks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	f.advance(7 * 24 * time.Hour)

	check, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)
	assert.Equal(t, enum.VerificationStatusFailed, check.Verification.Status)
	assert.Equal(t, 2, f.resolver.calls)
}

func TestCheckVerification_IdempotentAndCountsAttempts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	f.resolver.set("example.com", enum.DNSRecordTXT, "calcbuilder-verification=stale-token")
	f.resolver.set("www.example.com", enum.DNSRecordCNAME, "other.host.net.")

	first, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)
	second, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)

	assert.Equal(t, first.Verification.Status, second.Verification.Status)
	assert.Equal(t, first.Verification.DNSRecords, second.Verification.DNSRecords)
	assert.Equal(t, enum.DNSRecordIncorrect, second.Verification.DNSRecords[0].Status)
	assert.Equal(t, "calcbuilder-verification=stale-token", *second.Verification.DNSRecords[0].ObservedValue)
	assert.Equal(t, enum.DNSRecordIncorrect, second.Verification.DNSRecords[1].Status)
	assert.Equal(t, "other.host.net", *second.Verification.DNSRecords[1].ObservedValue)
	assert.Equal(t, 1, first.Verification.VerificationAttempts)
	assert.Equal(t, 2, second.Verification.VerificationAttempts)
	assert.Equal(t, 4, f.resolver.calls)
	assert.Equal(t, 2, f.store.Verification(issued.Verification.ID).VerificationAttempts)
}

func TestCheckVerification_FailedThenVerified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)

	failed, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)
	assert.Equal(t, enum.VerificationStatusFailed, failed.Verification.Status)
	assert.Equal(t, enum.DNSRecordMissing, failed.Verification.DNSRecords[0].Status)

	f.publishCorrectRecords("example.com", issued.Verification.Token)
	verified, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)
	assert.Equal(t, enum.VerificationStatusVerified, verified.Verification.Status)
	assert.Nil(t, verified.Verification.ErrorMessage)
	assert.Equal(t, 2, verified.Verification.VerificationAttempts)
}

func TestCheckVerification_VerifiedRecheckCountsWithoutLookups(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	f.publishCorrectRecords("example.com", issued.Verification.Token)
	first, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)
	require.Equal(t, 1, first.Verification.VerificationAttempts)
	calls := f.resolver.calls

	second, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)
	assert.Equal(t, enum.VerificationStatusVerified, second.Verification.Status)
	assert.Equal(t, 2, second.Verification.VerificationAttempts)

	// past expires_at a verified record stays verified
	f.advance(30 * 24 * time.Hour)
	third, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)

	assert.Equal(t, enum.VerificationStatusVerified, third.Verification.Status)
	assert.Equal(t, 3, third.Verification.VerificationAttempts)
	assert.Equal(t, 3, f.store.Verification(issued.Verification.ID).VerificationAttempts)
	assert.Equal(t, enum.VerificationStatusVerified, *f.store.Company("comp_a").DomainVerificationStatus)
	assert.Equal(t, calls, f.resolver.calls)
}

func TestCheckVerification_HTTPChallengeReplacesTXT(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.http.verified = true

	_, err := f.service.RequestVerification(ctx, "comp_a", dto.DomainVerificationRequest{
		Domain:           "example.com",
		VerificationType: enum.VerificationTypeFile,
	})
	require.NoError(t, err)
	f.resolver.set("www.example.com", enum.DNSRecordCNAME, "CalcBuilder.com")

	check, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)

	assert.Equal(t, enum.VerificationStatusVerified, check.Verification.Status)
	assert.Equal(t, enum.DNSRecordMissing, check.Verification.DNSRecords[0].Status)
	assert.Equal(t, 1, f.http.calls)
}

func TestCheckVerification_HTTPChallengeStillNeedsCNAME(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.http.verified = true

	_, err := f.service.RequestVerification(ctx, "comp_a", dto.DomainVerificationRequest{
		Domain:           "example.com",
		VerificationType: enum.VerificationTypeMeta,
	})
	require.NoError(t, err)

	check, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)

	assert.Equal(t, enum.VerificationStatusFailed, check.Verification.Status)
	assert.NotContains(t, *check.Verification.ErrorMessage, "TXT")
}

func TestCheckVerification_DNSTypeSkipsHTTPChallenge(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.http.verified = true

	_, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	f.resolver.set("www.example.com", enum.DNSRecordCNAME, "calcbuilder.com")

	check, err := f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)

	assert.Equal(t, enum.VerificationStatusFailed, check.Verification.Status)
	assert.Equal(t, 0, f.http.calls)
}

func TestCheckVerification_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.CheckVerification(ctx, "comp_missing")
	assert.ErrorIs(t, err, apperrors.ErrCompanyNotFound)

	_, err = f.service.CheckVerification(ctx, "comp_a")
	assert.ErrorIs(t, err, apperrors.ErrNoVerificationRequest)

	f.store.PutCompany(models.Company{ID: "comp_d", Name: "Delta", Slug: "delta", DomainVerificationID: utils.StringPtr("dver_gone")})
	_, err = f.service.CheckVerification(ctx, "comp_d")
	assert.ErrorIs(t, err, apperrors.ErrVerificationNotFound)
}

func TestCheckVerification_PersistenceFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	f.store.FailNext = assert.AnError

	_, err = f.service.CheckVerification(ctx, "comp_a")
	assert.ErrorIs(t, err, assert.AnError)

	stored := f.store.Verification(issued.Verification.ID)
	assert.Equal(t, enum.VerificationStatusPending, stored.Status)
	assert.Equal(t, 0, stored.VerificationAttempts)
	assert.Equal(t, enum.VerificationStatusPending, *f.store.Company("comp_a").DomainVerificationStatus)
}

func TestGetDomainStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	status, err := f.service.GetDomainStatus(ctx, "comp_a")
	require.NoError(t, err)
	assert.Equal(t, "comp_a", status.Company.ID)
	assert.Nil(t, status.Verification)

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)

	status, err = f.service.GetDomainStatus(ctx, "comp_a")
	require.NoError(t, err)
	require.NotNil(t, status.Verification)
	assert.Equal(t, issued.Verification.ID, status.Verification.ID)

	_, err = f.service.GetDomainStatus(ctx, "comp_missing")
	assert.ErrorIs(t, err, apperrors.ErrCompanyNotFound)
}

func TestUpdateDomain_FlagsOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)

	updated, err := f.service.UpdateDomain(ctx, "comp_a", dto.DomainVerificationRequest{
		Domain:            "example.com",
		VerificationType:  enum.VerificationTypeDNS,
		WhiteLabelEnabled: utils.BoolPtr(true),
	})
	require.NoError(t, err)

	assert.Equal(t, issued.Verification.ID, updated.Verification.ID)
	assert.True(t, updated.Company.WhiteLabelEnabled)
	assert.True(t, f.store.Company("comp_a").WhiteLabelEnabled)
	assert.Equal(t, 1, f.store.Verifications())
}

func TestUpdateDomain_ChangedDomainReissues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)

	updated, err := f.service.UpdateDomain(ctx, "comp_a", dnsRequest("calc.example.org"))
	require.NoError(t, err)

	assert.NotEqual(t, issued.Verification.ID, updated.Verification.ID)
	assert.Equal(t, "calc.example.org", *f.store.Company("comp_a").Domain)
	assert.Equal(t, updated.Verification.ID, *f.store.Company("comp_a").DomainVerificationID)
	assert.Equal(t, 2, f.store.Verifications())

	// the superseded record keeps its state
	assert.Equal(t, enum.VerificationStatusPending, f.store.Verification(issued.Verification.ID).Status)
}

func TestUpdateDomain_ExpiredReissues(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	f.advance(8 * 24 * time.Hour)
	_, err = f.service.CheckVerification(ctx, "comp_a")
	require.ErrorIs(t, err, apperrors.ErrVerificationExpired)

	updated, err := f.service.UpdateDomain(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	assert.NotEqual(t, issued.Verification.ID, updated.Verification.ID)
	assert.Equal(t, enum.VerificationStatusPending, updated.Verification.Status)
}

func TestUpdateDomain_PastExpiryReissuesBeforeSweep(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	f.advance(8 * 24 * time.Hour)

	updated, err := f.service.UpdateDomain(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)

	assert.NotEqual(t, issued.Verification.ID, updated.Verification.ID)
	assert.NotEqual(t, issued.Verification.Token, updated.Verification.Token)
	assert.Equal(t, enum.VerificationStatusPending, updated.Verification.Status)
	assert.Equal(t, updated.Verification.ID, *f.store.Company("comp_a").DomainVerificationID)
	assert.Equal(t, 2, f.store.Verifications())
}

func TestUpdateDomain_VerifiedPastExpiryKeepsVerification(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	issued, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)
	f.publishCorrectRecords("example.com", issued.Verification.Token)
	_, err = f.service.CheckVerification(ctx, "comp_a")
	require.NoError(t, err)
	f.advance(30 * 24 * time.Hour)

	updated, err := f.service.UpdateDomain(ctx, "comp_a", dto.DomainVerificationRequest{
		Domain:              "example.com",
		VerificationType:    enum.VerificationTypeDNS,
		CustomDomainEnabled: utils.BoolPtr(true),
	})
	require.NoError(t, err)

	assert.Equal(t, issued.Verification.ID, updated.Verification.ID)
	assert.Equal(t, enum.VerificationStatusVerified, updated.Verification.Status)
	assert.True(t, f.store.Company("comp_a").CustomDomainEnabled)
	assert.Equal(t, 1, f.store.Verifications())
}

func TestExpireStaleVerifications(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.service.RequestVerification(ctx, "comp_a", dnsRequest("example.com"))
	require.NoError(t, err)

	expired, err := f.service.ExpireStaleVerifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), expired)

	f.advance(8 * 24 * time.Hour)
	expired, err = f.service.ExpireStaleVerifications(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), expired)
	assert.Equal(t, enum.VerificationStatusExpired, *f.store.Company("comp_a").DomainVerificationStatus)
}
