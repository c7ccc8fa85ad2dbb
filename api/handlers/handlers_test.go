package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calcbuilder/adminstack/config"
	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository/memory"
	"github.com/calcbuilder/adminstack/services"
	"github.com/calcbuilder/adminstack/services/assets"
	"github.com/calcbuilder/adminstack/services/company"
	"github.com/calcbuilder/adminstack/services/domain"
	"github.com/calcbuilder/adminstack/services/events"
	"github.com/calcbuilder/adminstack/services/team"
	"github.com/calcbuilder/adminstack/services/templates"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 64)...)

type stubResolver struct {
	mu      sync.Mutex
	records map[string][]string
}

func (r *stubResolver) set(name string, recordType enum.DNSRecordType, values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[recordType.String()+" "+name] = values
}

func (r *stubResolver) Resolve(ctx context.Context, name string, recordType enum.DNSRecordType) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.records[recordType.String()+" "+name]
}

type noHTTPChallenge struct{}

func (noHTTPChallenge) Verify(ctx context.Context, domain string, verificationType enum.VerificationType, token string) bool {
	return false
}

type recordingEmails struct {
	mu   sync.Mutex
	sent []dto.EmailMessage
	err  error
}

func (e *recordingEmails) Send(ctx context.Context, message dto.EmailMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.err != nil {
		return e.err
	}
	e.sent = append(e.sent, message)
	return nil
}

func (e *recordingEmails) SendTemplate(ctx context.Context, to string, template enum.EmailTemplate, language enum.Language, params map[string]string) error {
	return e.Send(ctx, dto.EmailMessage{To: to, Subject: template.String()})
}

type memoryStorage struct {
	mu      sync.Mutex
	objects map[string]int
}

func (s *memoryStorage) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = len(data)
	return nil
}

func (s *memoryStorage) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

func (s *memoryStorage) PublicURL(key string) string {
	return "https://cdn.calcbuilder.com/" + key
}

type testServer struct {
	router   *gin.Engine
	store    *memory.Store
	resolver *stubResolver
	emails   *recordingEmails
	storage  *memoryStorage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewAppLogger(&logger.Config{DevMode: true, LogLevel: "error"})
	log.InitLogger()

	cfg := &config.Config{
		AppConfig:    &config.AppConfig{CanonicalHostname: "calcbuilder.com", PublicAppUrl: "https://app.calcbuilder.com"},
		DomainConfig: &config.DomainConfig{VerificationTTL: 7 * 24 * time.Hour},
		EmailConfig:  &config.EmailConfig{DefaultLanguage: enum.LanguageFinnish, InvitationTTL: 7 * 24 * time.Hour},
	}

	repos, store := memory.NewRepositories()
	publisher := events.NewNoopPublisher(log)
	renderer, err := templates.NewRenderer(enum.LanguageFinnish)
	require.NoError(t, err)

	ts := &testServer{
		store:    store,
		resolver: &stubResolver{records: map[string][]string{}},
		emails:   &recordingEmails{},
		storage:  &memoryStorage{objects: map[string]int{}},
	}

	s := &services.Services{
		TemplateRenderer: renderer,
		EmailService:     ts.emails,
		StorageService:   ts.storage,
		CompanyService:   company.NewCompanyService(log, repos, publisher),
		TeamService:      team.NewTeamService(cfg, log, repos, publisher, ts.emails),
		AssetService:     assets.NewAssetService(log, repos, ts.storage, publisher),
		DomainVerificationService: domain.NewDomainVerificationService(
			cfg, log, repos, ts.resolver, noHTTPChallenge{}, publisher, ts.emails,
		),
	}
	h := InitHandlers(s)

	r := gin.New()
	r.GET("/health", HealthCheck)
	api := r.Group("/api")
	api.POST("/companies", h.Companies.Create())
	api.GET("/companies", h.Companies.Search())
	api.GET("/companies/:companyId", h.Companies.Get())
	api.PUT("/companies/:companyId/branding", h.Companies.UpdateBranding())
	api.DELETE("/companies/:companyId", h.Companies.Delete())
	api.POST("/companies/:companyId/domains", h.Domains.RequestVerification())
	api.GET("/companies/:companyId/domains", h.Domains.GetDomainStatus())
	api.POST("/companies/:companyId/domains/verify", h.Domains.CheckVerification())
	api.GET("/companies/:companyId/team/roles", h.Team.ListRoles())
	api.DELETE("/companies/:companyId/team/roles/:roleId", h.Team.DeleteRole())
	api.POST("/companies/:companyId/team/members", h.Team.AddMember())
	api.POST("/companies/:companyId/team/invitations", h.Team.CreateInvitation())
	api.POST("/invitations/:token/accept", h.Team.AcceptInvitation())
	api.POST("/companies/:companyId/assets", h.Assets.Upload())
	api.GET("/companies/:companyId/assets", h.Assets.List())
	api.POST("/emails/preview", h.Emails.Preview())
	api.POST("/emails/send", h.Emails.Send())
	ts.router = r

	return ts
}

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Error   string              `json:"error"`
	Details map[string][]string `json:"details"`
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return ts.serve(t, req)
}

func (ts *testServer) serve(t *testing.T, req *http.Request) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func (ts *testServer) createCompany(t *testing.T, slug string) models.Company {
	t.Helper()
	w, env := ts.do(t, http.MethodPost, "/api/companies", dto.CreateCompanyRequest{Name: slug + " Oy", Slug: slug})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var c models.Company
	require.NoError(t, json.Unmarshal(env.Data, &c))
	return c
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestCompanies_CreateAndGet(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createCompany(t, "acme")
	assert.Equal(t, "acme", created.Slug)
	assert.Equal(t, enum.LanguageFinnish, created.DefaultLanguage)

	w, env := ts.do(t, http.MethodGet, "/api/companies/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	var fetched models.Company
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, created.ID, fetched.ID)
}

func TestCompanies_ValidationEnvelope(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodPost, "/api/companies", dto.CreateCompanyRequest{Slug: "-bad-"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Validation failed", env.Error)
	assert.Contains(t, env.Details, "name")
	assert.Contains(t, env.Details, "slug")
}

func TestCompanies_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodPost, "/api/companies", "{not json")
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", env.Error)
	assert.Nil(t, env.Details)
}

func TestCompanies_SlugConflict(t *testing.T) {
	ts := newTestServer(t)
	ts.createCompany(t, "acme")

	w, env := ts.do(t, http.MethodPost, "/api/companies", dto.CreateCompanyRequest{Name: "Other", Slug: "acme"})
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Slug is already in use", env.Error)
}

func TestCompanies_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodGet, "/api/companies/comp_missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Company not found", env.Error)
}

func TestCompanies_SearchAndDelete(t *testing.T) {
	ts := newTestServer(t)
	created := ts.createCompany(t, "acme")
	ts.createCompany(t, "beta")

	w, env := ts.do(t, http.MethodGet, "/api/companies?q=acm&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var result dto.CompanySearchResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, int64(1), result.Total)
	assert.Equal(t, 5, result.Limit)

	w, _ = ts.do(t, http.MethodDelete, "/api/companies/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = ts.do(t, http.MethodGet, "/api/companies/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDomains_IssueAndVerify(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createCompany(t, "acme")
	base := "/api/companies/" + c.ID + "/domains"

	w, env := ts.do(t, http.MethodPost, base, map[string]interface{}{
		"domain":                "Example.com",
		"verification_type":     "dns",
		"custom_domain_enabled": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var issued dto.DomainVerificationIssued
	require.NoError(t, json.Unmarshal(env.Data, &issued))
	require.NotNil(t, issued.Verification)
	assert.Equal(t, "example.com", issued.Verification.Domain)
	token := issued.Verification.Token
	require.NotEmpty(t, token)

	// nothing published yet
	w, env = ts.do(t, http.MethodPost, base+"/verify", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var check dto.DomainVerificationCheck
	require.NoError(t, json.Unmarshal(env.Data, &check))
	assert.Equal(t, enum.VerificationStatusFailed, check.Verification.Status)
	assert.Equal(t, 1, check.Verification.VerificationAttempts)

	ts.resolver.set("example.com", enum.DNSRecordTXT, "calcbuilder-verification="+token)
	ts.resolver.set("www.example.com", enum.DNSRecordCNAME, "calcbuilder.com.")

	w, env = ts.do(t, http.MethodPost, base+"/verify", nil)
	require.Equal(t, http.StatusOK, w.Code)
	check = dto.DomainVerificationCheck{}
	require.NoError(t, json.Unmarshal(env.Data, &check))
	assert.Equal(t, enum.VerificationStatusVerified, check.Verification.Status)
	require.NotNil(t, check.Company.DomainVerificationStatus)
	assert.Equal(t, enum.VerificationStatusVerified, *check.Company.DomainVerificationStatus)

	w, env = ts.do(t, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status dto.CompanyDomainStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.NotNil(t, status.Company.DomainVerifiedAt)
}

func TestDomains_InvalidDomain(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createCompany(t, "acme")

	w, env := ts.do(t, http.MethodPost, "/api/companies/"+c.ID+"/domains", map[string]interface{}{
		"domain":            "not a domain",
		"verification_type": "dns",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", env.Error)
	assert.Contains(t, env.Details, "domain")
}

func TestDomains_VerifyWithoutRequest(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createCompany(t, "acme")

	w, env := ts.do(t, http.MethodPost, "/api/companies/"+c.ID+"/domains/verify", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "No verification request found", env.Error)
}

func TestDomains_VerifyExpired(t *testing.T) {
	ts := newTestServer(t)
	pending := enum.VerificationStatusPending
	ts.store.PutCompany(models.Company{
		ID:                       "comp_x",
		Name:                     "Expired Oy",
		Slug:                     "expired",
		Domain:                   strPtr("example.com"),
		DomainVerificationID:     strPtr("dver_old"),
		DomainVerificationStatus: &pending,
		DefaultLanguage:          enum.LanguageFinnish,
	})
	ts.store.PutVerification(models.DomainVerification{
		ID:                "dver_old",
		CompanyID:         "comp_x",
		Domain:            "example.com",
		VerificationToken: "tok",
		VerificationType:  enum.VerificationTypeDNS,
		Status:            enum.VerificationStatusPending,
		DNSRecords: models.DNSRecords{
			{Type: enum.DNSRecordTXT, Name: "example.com", ExpectedValue: "calcbuilder-verification=tok", Status: enum.DNSRecordExpected},
			{Type: enum.DNSRecordCNAME, Name: "www.example.com", ExpectedValue: "calcbuilder.com", Status: enum.DNSRecordExpected},
		},
		ExpiresAt: time.Now().Add(-time.Hour),
	})

	w, env := ts.do(t, http.MethodPost, "/api/companies/comp_x/domains/verify", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Verification expired. Please create a new verification request.", env.Error)
	assert.Equal(t, enum.VerificationStatusExpired, ts.store.Verification("dver_old").Status)
}

func TestTeam_RoleInUse(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createCompany(t, "acme")
	base := "/api/companies/" + c.ID + "/team"

	w, env := ts.do(t, http.MethodGet, base+"/roles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var roles []models.TeamRole
	require.NoError(t, json.Unmarshal(env.Data, &roles))
	require.NotEmpty(t, roles)
	roleId := roles[0].ID

	w, _ = ts.do(t, http.MethodPost, base+"/members", dto.AddMemberRequest{
		UserId: "4f1c2c7e-8a57-4d44-9a3c-2a2b5a1d7e10",
		Email:  "anna@example.com",
		RoleId: roleId,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w, env = ts.do(t, http.MethodDelete, base+"/roles/"+roleId, nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Role is assigned to team members", env.Error)
}

func TestTeam_InviteAndAccept(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createCompany(t, "acme")

	w, env := ts.do(t, http.MethodPost, "/api/companies/"+c.ID+"/team/invitations", dto.CreateInvitationRequest{Email: "ville@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var invitation models.TeamInvitation
	require.NoError(t, json.Unmarshal(env.Data, &invitation))
	assert.Empty(t, invitation.Token)
	stored := ts.store.Invitation(invitation.ID)
	require.NotNil(t, stored)

	w, env = ts.do(t, http.MethodPost, "/api/invitations/"+stored.Token+"/accept", dto.AcceptInvitationRequest{
		UserId:   "0b6f3a52-5d4e-4d8e-9f65-7d0a3d0c2f11",
		FullName: "Ville Virtanen",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var member models.TeamMember
	require.NoError(t, json.Unmarshal(env.Data, &member))
	assert.Equal(t, "ville@example.com", member.Email)

	w, env = ts.do(t, http.MethodPost, "/api/invitations/unknown-token/accept", dto.AcceptInvitationRequest{
		UserId: "0b6f3a52-5d4e-4d8e-9f65-7d0a3d0c2f11",
	})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Invitation not found", env.Error)
}

func multipartUpload(t *testing.T, path, assetType, fileName string, data []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if assetType != "" {
		require.NoError(t, writer.WriteField("type", assetType))
	}
	if data != nil {
		part, err := writer.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestAssets_UploadLogo(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createCompany(t, "acme")
	path := "/api/companies/" + c.ID + "/assets"

	w, env := ts.serve(t, multipartUpload(t, path, "logo", "logo.png", pngBytes))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var asset models.CompanyAsset
	require.NoError(t, json.Unmarshal(env.Data, &asset))
	assert.Equal(t, "image/png", asset.ContentType)
	assert.Contains(t, ts.storage.objects, asset.StorageKey)

	company := ts.store.Company(c.ID)
	require.NotNil(t, company.LogoURL)
	assert.Equal(t, asset.PublicURL, *company.LogoURL)

	w, env = ts.do(t, http.MethodGet, path+"?type=logo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.CompanyAsset
	require.NoError(t, json.Unmarshal(env.Data, &listed))
	assert.Len(t, listed, 1)
}

func TestAssets_UploadWithoutFile(t *testing.T) {
	ts := newTestServer(t)
	c := ts.createCompany(t, "acme")

	w, env := ts.serve(t, multipartUpload(t, "/api/companies/"+c.ID+"/assets", "logo", "", nil))
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Validation failed", env.Error)
	assert.Contains(t, env.Details, "file")
}

func TestEmails_Preview(t *testing.T) {
	ts := newTestServer(t)

	w, env := ts.do(t, http.MethodPost, "/api/emails/preview", dto.RenderEmailRequest{
		Template: "welcome",
		Language: "en",
		Params:   map[string]string{"Name": "Anna", "CompanyName": "Acme"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rendered dto.RenderedEmail
	require.NoError(t, json.Unmarshal(env.Data, &rendered))
	assert.NotEmpty(t, rendered.Subject)
	assert.Contains(t, rendered.HTML, "Anna")

	w, env = ts.do(t, http.MethodPost, "/api/emails/preview", dto.RenderEmailRequest{Template: "nope"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unknown email template", env.Error)
}

func TestEmails_Send(t *testing.T) {
	ts := newTestServer(t)

	w, _ := ts.do(t, http.MethodPost, "/api/emails/send", dto.SendEmailRequest{
		To:       "anna@example.com",
		ToName:   "Anna",
		Template: "welcome",
		Language: "fi",
		Params:   map[string]string{"Name": "Anna"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, ts.emails.sent, 1)
	assert.Equal(t, "Anna", ts.emails.sent[0].ToName)

	w, env := ts.do(t, http.MethodPost, "/api/emails/send", dto.SendEmailRequest{To: "nobody", Template: "welcome"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Details, "to")
}

func strPtr(s string) *string {
	return &s
}
