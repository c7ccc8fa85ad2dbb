package company

import (
	"context"
	"strings"

	"github.com/lib/pq"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/interfaces"
	"github.com/calcbuilder/adminstack/internal/enum"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/tracing"
	"github.com/calcbuilder/adminstack/internal/validation"
)

const (
	maxNameLength      = 255
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

type companyService struct {
	log       logger.Logger
	companies repository.CompanyRepository
	publisher interfaces.EventPublisher
}

func NewCompanyService(log logger.Logger, repos *repository.Repositories, publisher interfaces.EventPublisher) interfaces.CompanyService {
	return &companyService{
		log:       log,
		companies: repos.CompanyRepository,
		publisher: publisher,
	}
}

// DefaultRoles are seeded for every new company. Viewer is assigned when no role is given.
func DefaultRoles() []models.TeamRole {
	all := make([]string, 0, len(enum.AllPermissions))
	for _, p := range enum.AllPermissions {
		all = append(all, string(p))
	}
	return []models.TeamRole{
		{
			Name:        "Owner",
			Description: "Full access including company settings",
			Permissions: pq.StringArray(all),
		},
		{
			Name:        "Admin",
			Description: "Manages the team, domains and content",
			Permissions: pq.StringArray(all[1:]),
		},
		{
			Name:        "Editor",
			Description: "Edits calculators, templates and assets",
			Permissions: pq.StringArray{
				string(enum.PermissionAssetsManage),
				string(enum.PermissionTemplatesManage),
				string(enum.PermissionCalculatorsEdit),
				string(enum.PermissionCalculatorsView),
			},
		},
		{
			Name:        "Viewer",
			Description: "Read-only access to calculators",
			Permissions: pq.StringArray{string(enum.PermissionCalculatorsView)},
			IsDefault:   true,
		},
	}
}

func (s *companyService) Create(ctx context.Context, request dto.CreateCompanyRequest) (*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyService.Create")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "request", request)

	company := &models.Company{
		Name:            strings.TrimSpace(request.Name),
		Slug:            strings.ToLower(strings.TrimSpace(request.Slug)),
		DefaultLanguage: request.DefaultLanguage,
	}
	if company.DefaultLanguage == "" {
		company.DefaultLanguage = enum.LanguageFinnish
	}

	validationErr := apperrors.NewValidationError()
	validateName(validationErr, company.Name)
	validationErr.Merge(validation.ValidateSlug("slug", company.Slug))
	validationErr.Merge(validation.ValidateLanguage("default_language", company.DefaultLanguage))
	company.PrimaryColor = validateColor(validationErr, "primary_color", request.PrimaryColor)
	company.SecondaryColor = validateColor(validationErr, "secondary_color", request.SecondaryColor)
	if err := validationErr.OrNil(); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if err := s.ensureSlugAvailable(ctx, "", company.Slug); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	err := s.companies.Create(ctx, company, DefaultRoles())
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, apperrors.ErrSlugTaken
		}
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to create company")
	}
	tracing.TagCompany(span, company.ID)

	s.publisher.PublishNotification(ctx, company.ID, company.ID, enum.COMPANY, &dto.EventCompletedDetails{Create: true})
	return company, nil
}

func (s *companyService) Get(ctx context.Context, companyId string) (*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyService.Get")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)

	company, err := s.companies.GetByID(ctx, companyId)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to get company")
	}
	if company == nil {
		return nil, apperrors.ErrCompanyNotFound
	}
	return company, nil
}

func (s *companyService) Update(ctx context.Context, companyId string, request dto.UpdateCompanyRequest) (*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyService.Update")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.LogObjectAsJson(span, "request", request)

	company, err := s.Get(ctx, companyId)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	validationErr := apperrors.NewValidationError()
	if request.Name != nil {
		name := strings.TrimSpace(*request.Name)
		validateName(validationErr, name)
		fields["name"] = name
	}
	if request.Slug != nil {
		slug := strings.ToLower(strings.TrimSpace(*request.Slug))
		validationErr.Merge(validation.ValidateSlug("slug", slug))
		if slug != company.Slug {
			fields["slug"] = slug
		}
	}
	if err := validationErr.OrNil(); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	if slug, ok := fields["slug"].(string); ok {
		if err := s.ensureSlugAvailable(ctx, companyId, slug); err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
	}

	return s.applyUpdate(ctx, span, companyId, fields)
}

func (s *companyService) UpdateBranding(ctx context.Context, companyId string, request dto.UpdateBrandingRequest) (*models.Company, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyService.UpdateBranding")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)
	tracing.LogObjectAsJson(span, "request", request)

	if _, err := s.Get(ctx, companyId); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	validationErr := apperrors.NewValidationError()
	if request.PrimaryColor != nil {
		fields["primary_color"] = validateColor(validationErr, "primary_color", request.PrimaryColor)
	}
	if request.SecondaryColor != nil {
		fields["secondary_color"] = validateColor(validationErr, "secondary_color", request.SecondaryColor)
	}
	if request.LogoURL != nil {
		if logo := strings.TrimSpace(*request.LogoURL); logo != "" {
			fields["logo_url"] = logo
		} else {
			fields["logo_url"] = nil
		}
	}
	if request.DefaultLanguage != nil {
		validationErr.Merge(validation.ValidateLanguage("default_language", *request.DefaultLanguage))
		fields["default_language"] = *request.DefaultLanguage
	}
	if err := validationErr.OrNil(); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return s.applyUpdate(ctx, span, companyId, fields)
}

func (s *companyService) Delete(ctx context.Context, companyId string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyService.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagCompany(span, companyId)

	if _, err := s.Get(ctx, companyId); err != nil {
		return err
	}

	if err := s.companies.SoftDelete(ctx, companyId); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to delete company")
	}

	s.publisher.PublishNotification(ctx, companyId, companyId, enum.COMPANY, &dto.EventCompletedDetails{Delete: true})
	return nil
}

func (s *companyService) Search(ctx context.Context, request dto.CompanySearchRequest) (*dto.CompanySearchResult, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyService.Search")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "request", request)

	limit := request.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	offset := request.Offset
	if offset < 0 {
		offset = 0
	}

	companies, total, err := s.companies.Search(ctx, request.Query, limit, offset)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to search companies")
	}
	if companies == nil {
		companies = []models.Company{}
	}

	return &dto.CompanySearchResult{
		Companies: companies,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
	}, nil
}

func (s *companyService) applyUpdate(ctx context.Context, span opentracing.Span, companyId string, fields map[string]interface{}) (*models.Company, error) {
	if len(fields) > 0 {
		err := s.companies.UpdateFields(ctx, companyId, fields)
		if err != nil {
			if errors.Is(err, repository.ErrAlreadyExists) {
				return nil, apperrors.ErrSlugTaken
			}
			tracing.TraceErr(span, err)
			return nil, errors.Wrap(err, "failed to update company")
		}
		s.publisher.PublishNotification(ctx, companyId, companyId, enum.COMPANY, &dto.EventCompletedDetails{Update: true})
	}
	return s.Get(ctx, companyId)
}

func (s *companyService) ensureSlugAvailable(ctx context.Context, companyId, slug string) error {
	existing, err := s.companies.GetBySlug(ctx, slug)
	if err != nil {
		return errors.Wrap(err, "failed to check slug")
	}
	if existing != nil && existing.ID != companyId {
		return apperrors.ErrSlugTaken
	}
	return nil
}

func validateName(validationErr *apperrors.ValidationError, name string) {
	if name == "" {
		validationErr.Add("name", "name is required")
	} else if len(name) > maxNameLength {
		validationErr.Add("name", "name must be at most 255 characters")
	}
}

// validateColor returns nil for a nil or empty color, which clears it.
func validateColor(validationErr *apperrors.ValidationError, field string, color *string) *string {
	if color == nil || strings.TrimSpace(*color) == "" {
		return nil
	}
	value := strings.ToLower(strings.TrimSpace(*color))
	validationErr.Merge(validation.ValidateColor(field, value))
	return &value
}
