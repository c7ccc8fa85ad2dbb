package company

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/enum"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
	"github.com/calcbuilder/adminstack/internal/logger"
	"github.com/calcbuilder/adminstack/internal/repository"
	"github.com/calcbuilder/adminstack/internal/repository/memory"
	"github.com/calcbuilder/adminstack/internal/utils"
	"github.com/calcbuilder/adminstack/services/events"
)

func newTestService(t *testing.T) (*companyService, *repository.Repositories) {
	t.Helper()
	log := logger.NewAppLogger(&logger.Config{DevMode: true})
	log.InitLogger()
	repos, _ := memory.NewRepositories()
	service := NewCompanyService(log, repos, events.NewNoopPublisher(log)).(*companyService)
	return service, repos
}

func TestCreate_SeedsDefaultRoles(t *testing.T) {
	service, repos := newTestService(t)
	ctx := context.Background()

	company, err := service.Create(ctx, dto.CreateCompanyRequest{
		Name:         "  Acme Oy ",
		Slug:         "Acme",
		PrimaryColor: utils.StringPtr("#1A2B3C"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Oy", company.Name)
	assert.Equal(t, "acme", company.Slug)
	assert.Equal(t, enum.LanguageFinnish, company.DefaultLanguage)
	assert.Equal(t, "#1a2b3c", *company.PrimaryColor)
	assert.Nil(t, company.SecondaryColor)

	roles, err := repos.TeamRoleRepository.ListByCompany(ctx, company.ID)
	require.NoError(t, err)
	assert.Len(t, roles, 4)

	viewer, err := repos.TeamRoleRepository.GetDefault(ctx, company.ID)
	require.NoError(t, err)
	require.NotNil(t, viewer)
	assert.Equal(t, "Viewer", viewer.Name)
}

func TestCreate_Validation(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Create(context.Background(), dto.CreateCompanyRequest{
		Name:            "",
		Slug:            "-bad-",
		PrimaryColor:    utils.StringPtr("red"),
		DefaultLanguage: "de",
	})
	validationErr, ok := apperrors.AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, validationErr.Fields, "name")
	assert.Contains(t, validationErr.Fields, "slug")
	assert.Contains(t, validationErr.Fields, "primary_color")
	assert.Contains(t, validationErr.Fields, "default_language")
}

func TestCreate_SlugTaken(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, dto.CreateCompanyRequest{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	_, err = service.Create(ctx, dto.CreateCompanyRequest{Name: "Other Acme", Slug: "acme"})
	assert.ErrorIs(t, err, apperrors.ErrSlugTaken)
}

func TestGet_NotFound(t *testing.T) {
	service, _ := newTestService(t)

	_, err := service.Get(context.Background(), "comp_missing")
	assert.ErrorIs(t, err, apperrors.ErrCompanyNotFound)
}

func TestUpdate(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	acme, err := service.Create(ctx, dto.CreateCompanyRequest{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)
	_, err = service.Create(ctx, dto.CreateCompanyRequest{Name: "Globex", Slug: "globex"})
	require.NoError(t, err)

	updated, err := service.Update(ctx, acme.ID, dto.UpdateCompanyRequest{Name: utils.StringPtr("Acme Group"), Slug: utils.StringPtr("acme")})
	require.NoError(t, err)
	assert.Equal(t, "Acme Group", updated.Name)
	assert.Equal(t, "acme", updated.Slug)

	_, err = service.Update(ctx, acme.ID, dto.UpdateCompanyRequest{Slug: utils.StringPtr("globex")})
	assert.ErrorIs(t, err, apperrors.ErrSlugTaken)

	_, err = service.Update(ctx, acme.ID, dto.UpdateCompanyRequest{Name: utils.StringPtr(" ")})
	_, ok := apperrors.AsValidationError(err)
	assert.True(t, ok)
}

func TestUpdateBranding(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	acme, err := service.Create(ctx, dto.CreateCompanyRequest{Name: "Acme", Slug: "acme", SecondaryColor: utils.StringPtr("#000000")})
	require.NoError(t, err)

	language := enum.LanguageSwedish
	updated, err := service.UpdateBranding(ctx, acme.ID, dto.UpdateBrandingRequest{
		LogoURL:         utils.StringPtr("https://cdn.calcbuilder.com/logo.png"),
		PrimaryColor:    utils.StringPtr("#FFFFFF"),
		SecondaryColor:  utils.StringPtr(""),
		DefaultLanguage: &language,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.calcbuilder.com/logo.png", *updated.LogoURL)
	assert.Equal(t, "#ffffff", *updated.PrimaryColor)
	assert.Nil(t, updated.SecondaryColor)
	assert.Equal(t, enum.LanguageSwedish, updated.DefaultLanguage)

	invalid := enum.Language("de")
	_, err = service.UpdateBranding(ctx, acme.ID, dto.UpdateBrandingRequest{DefaultLanguage: &invalid})
	_, ok := apperrors.AsValidationError(err)
	assert.True(t, ok)
}

func TestDelete(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	acme, err := service.Create(ctx, dto.CreateCompanyRequest{Name: "Acme", Slug: "acme"})
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, acme.ID))
	_, err = service.Get(ctx, acme.ID)
	assert.ErrorIs(t, err, apperrors.ErrCompanyNotFound)
	assert.ErrorIs(t, service.Delete(ctx, acme.ID), apperrors.ErrCompanyNotFound)
}

func TestSearch_ClampsPaging(t *testing.T) {
	service, _ := newTestService(t)
	ctx := context.Background()

	for _, slug := range []string{"acme", "acme-labs", "globex"} {
		_, err := service.Create(ctx, dto.CreateCompanyRequest{Name: slug, Slug: slug})
		require.NoError(t, err)
	}

	result, err := service.Search(ctx, dto.CompanySearchRequest{Query: "acme", Limit: 1000, Offset: -5})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.Total)
	assert.Len(t, result.Companies, 2)
	assert.Equal(t, maxSearchLimit, result.Limit)
	assert.Equal(t, 0, result.Offset)

	result, err = service.Search(ctx, dto.CompanySearchRequest{Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Total)
	assert.Len(t, result.Companies, 1)
}

func TestDefaultRoles(t *testing.T) {
	roles := DefaultRoles()
	require.Len(t, roles, 4)

	defaults := 0
	for _, role := range roles {
		for _, permission := range role.Permissions {
			assert.True(t, enum.Permission(permission).IsValid(), permission)
		}
		if role.IsDefault {
			defaults++
			assert.Equal(t, "Viewer", role.Name)
		}
	}
	assert.Equal(t, 1, defaults)
	assert.Len(t, roles[0].Permissions, len(enum.AllPermissions))
	assert.NotContains(t, roles[1].Permissions, string(enum.PermissionCompanyManage))
}
