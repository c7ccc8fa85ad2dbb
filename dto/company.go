package dto

import (
	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/models"
)

type CreateCompanyRequest struct {
	Name            string        `json:"name"`
	Slug            string        `json:"slug"`
	PrimaryColor    *string       `json:"primary_color"`
	SecondaryColor  *string       `json:"secondary_color"`
	DefaultLanguage enum.Language `json:"default_language"`
}

type UpdateCompanyRequest struct {
	Name *string `json:"name"`
	Slug *string `json:"slug"`
}

// UpdateBrandingRequest leaves nil fields untouched. An empty string clears a color or the logo.
type UpdateBrandingRequest struct {
	LogoURL         *string        `json:"logo_url"`
	PrimaryColor    *string        `json:"primary_color"`
	SecondaryColor  *string        `json:"secondary_color"`
	DefaultLanguage *enum.Language `json:"default_language"`
}

type CompanySearchRequest struct {
	Query  string `form:"q"`
	Limit  int    `form:"limit"`
	Offset int    `form:"offset"`
}

type CompanySearchResult struct {
	Companies []models.Company `json:"companies"`
	Total     int64            `json:"total"`
	Limit     int              `json:"limit"`
	Offset    int              `json:"offset"`
}
