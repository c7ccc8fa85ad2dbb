package templates

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calcbuilder/adminstack/internal/enum"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
)

func TestCatalog_AllTemplatesTranslated(t *testing.T) {
	templates := []enum.EmailTemplate{
		enum.EmailTemplateWelcome,
		enum.EmailTemplateVerification,
		enum.EmailTemplatePasswordReset,
		enum.EmailTemplateTeamInvitation,
		enum.EmailTemplateDomainVerified,
	}
	languages := []enum.Language{enum.LanguageFinnish, enum.LanguageEnglish, enum.LanguageSwedish}

	r, err := NewRenderer(enum.LanguageFinnish)
	require.NoError(t, err)

	for _, template := range templates {
		for _, language := range languages {
			rendered, err := r.Render(template, language, map[string]string{"Name": "Anna"})
			require.NoError(t, err, "%s/%s", template, language)
			assert.Equal(t, language, rendered.Language)
			assert.NotEmpty(t, rendered.Subject)
			assert.NotEmpty(t, rendered.Text)
		}
	}
}

func TestRender_Welcome(t *testing.T) {
	r, err := NewRenderer(enum.LanguageFinnish)
	require.NoError(t, err)

	rendered, err := r.Render(enum.EmailTemplateWelcome, enum.LanguageEnglish, map[string]string{
		"Name":        "Anna",
		"CompanyName": "Acme Oy",
		"LoginURL":    "https://app.calcbuilder.com/login",
	})
	require.NoError(t, err)

	assert.Equal(t, "Welcome to the Acme Oy team", rendered.Subject)
	assert.Contains(t, rendered.HTML, `<html lang="en">`)
	assert.Contains(t, rendered.HTML, `href="https://app.calcbuilder.com/login"`)
	assert.Contains(t, rendered.Text, "Welcome, Anna!")
	assert.NotContains(t, rendered.Text, "<p>")
}

func TestRender_UnknownLanguageFallsBack(t *testing.T) {
	r, err := NewRenderer(enum.LanguageSwedish)
	require.NoError(t, err)

	rendered, err := r.Render(enum.EmailTemplateDomainVerified, enum.Language("de"), map[string]string{"Domain": "example.com"})
	require.NoError(t, err)

	assert.Equal(t, enum.LanguageSwedish, rendered.Language)
	assert.Equal(t, "Domänen example.com har verifierats", rendered.Subject)
}

func TestRender_InvalidDefaultLanguageUsesFinnish(t *testing.T) {
	r, err := NewRenderer(enum.Language(""))
	require.NoError(t, err)

	rendered, err := r.Render(enum.EmailTemplatePasswordReset, enum.Language("xx"), nil)
	require.NoError(t, err)
	assert.Equal(t, enum.LanguageFinnish, rendered.Language)
	assert.Equal(t, "Salasanan vaihto", rendered.Subject)
}

func TestRender_EscapesParams(t *testing.T) {
	r, err := NewRenderer(enum.LanguageEnglish)
	require.NoError(t, err)

	rendered, err := r.Render(enum.EmailTemplateWelcome, enum.LanguageEnglish, map[string]string{
		"Name": `<script>alert("x")</script>`,
	})
	require.NoError(t, err)

	assert.NotContains(t, rendered.HTML, "<script>")
	assert.Contains(t, rendered.HTML, "&lt;script&gt;")
}

func TestRender_MissingParamsRenderEmpty(t *testing.T) {
	r, err := NewRenderer(enum.LanguageEnglish)
	require.NoError(t, err)

	rendered, err := r.Render(enum.EmailTemplateWelcome, enum.LanguageEnglish, nil)
	require.NoError(t, err)

	assert.Equal(t, "Welcome to the  team", rendered.Subject)
	assert.NotContains(t, rendered.HTML, "no value")
}

func TestRender_UnknownTemplate(t *testing.T) {
	r, err := NewRenderer(enum.LanguageFinnish)
	require.NoError(t, err)

	_, err = r.Render(enum.EmailTemplate("newsletter"), enum.LanguageEnglish, nil)
	assert.ErrorIs(t, err, apperrors.ErrUnknownTemplate)
}
