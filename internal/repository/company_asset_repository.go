package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/internal/tracing"
)

type CompanyAssetRepository interface {
	Create(ctx context.Context, asset *models.CompanyAsset) error
	GetByID(ctx context.Context, companyId, assetId string) (*models.CompanyAsset, error)
	List(ctx context.Context, companyId string, assetType *enum.AssetType) ([]models.CompanyAsset, error)
	Delete(ctx context.Context, companyId, assetId string) error
}

type companyAssetRepository struct {
	db *gorm.DB
}

func NewCompanyAssetRepository(db *gorm.DB) CompanyAssetRepository {
	return &companyAssetRepository{
		db: db,
	}
}

func (r *companyAssetRepository) Create(ctx context.Context, asset *models.CompanyAsset) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyAssetRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, asset.CompanyID)

	if err := r.db.WithContext(ctx).Create(asset).Error; err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}
	return nil
}

func (r *companyAssetRepository) GetByID(ctx context.Context, companyId, assetId string) (*models.CompanyAsset, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyAssetRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, assetId)

	var asset models.CompanyAsset
	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", assetId, companyId).
		First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return &asset, nil
}

func (r *companyAssetRepository) List(ctx context.Context, companyId string, assetType *enum.AssetType) ([]models.CompanyAsset, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyAssetRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)

	query := r.db.WithContext(ctx).Where("company_id = ?", companyId)
	if assetType != nil {
		query = query.Where("asset_type = ?", *assetType)
	}

	var assets []models.CompanyAsset
	if err := query.Order("created_at DESC").Find(&assets).Error; err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return nil, err
	}

	return assets, nil
}

func (r *companyAssetRepository) Delete(ctx context.Context, companyId, assetId string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "CompanyAssetRepository.Delete")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	tracing.TagCompany(span, companyId)
	tracing.TagEntity(span, assetId)

	err := r.db.WithContext(ctx).
		Where("id = ? AND company_id = ?", assetId, companyId).
		Delete(&models.CompanyAsset{}).Error
	if err != nil {
		tracing.TraceErr(span, errors.Wrap(err, "db error"))
		return err
	}

	return nil
}
