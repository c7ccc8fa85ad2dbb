package interfaces

import (
	"context"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/models"
)

type AssetService interface {
	Upload(ctx context.Context, companyId string, request dto.UploadAssetRequest) (*models.CompanyAsset, error)
	List(ctx context.Context, companyId string, assetType string) ([]models.CompanyAsset, error)
	Get(ctx context.Context, companyId, assetId string) (*models.CompanyAsset, error)
	Delete(ctx context.Context, companyId, assetId string) error
}
