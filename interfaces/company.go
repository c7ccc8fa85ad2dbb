package interfaces

import (
	"context"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/models"
)

type CompanyService interface {
	Create(ctx context.Context, request dto.CreateCompanyRequest) (*models.Company, error)
	Get(ctx context.Context, companyId string) (*models.Company, error)
	Update(ctx context.Context, companyId string, request dto.UpdateCompanyRequest) (*models.Company, error)
	UpdateBranding(ctx context.Context, companyId string, request dto.UpdateBrandingRequest) (*models.Company, error)
	Delete(ctx context.Context, companyId string) error
	Search(ctx context.Context, request dto.CompanySearchRequest) (*dto.CompanySearchResult, error)
}
