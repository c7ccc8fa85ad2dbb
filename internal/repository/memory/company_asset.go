package memory

import (
	"context"
	"sort"

	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/models"
)

type companyAssetRepository struct {
	store *Store
}

func (r *companyAssetRepository) Create(ctx context.Context, asset *models.CompanyAsset) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if err := runHook(asset); err != nil {
		return err
	}
	stamp(&asset.CreatedAt, &asset.UpdatedAt)
	copied := *asset
	s.assets[asset.ID] = &copied
	return nil
}

func (r *companyAssetRepository) GetByID(ctx context.Context, companyId, assetId string) (*models.CompanyAsset, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	if asset, ok := r.store.assets[assetId]; ok && asset.CompanyID == companyId {
		copied := *asset
		return &copied, nil
	}
	return nil, nil
}

func (r *companyAssetRepository) List(ctx context.Context, companyId string, assetType *enum.AssetType) ([]models.CompanyAsset, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	assets := []models.CompanyAsset{}
	for _, asset := range r.store.assets {
		if asset.CompanyID != companyId {
			continue
		}
		if assetType != nil && asset.AssetType != *assetType {
			continue
		}
		assets = append(assets, *asset)
	}
	sort.SliceStable(assets, func(i, j int) bool { return assets[i].CreatedAt.After(assets[j].CreatedAt) })
	return assets, nil
}

func (r *companyAssetRepository) Delete(ctx context.Context, companyId, assetId string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.takeFailure(); err != nil {
		return err
	}
	if asset, ok := s.assets[assetId]; ok && asset.CompanyID == companyId {
		delete(s.assets, assetId)
	}
	return nil
}
