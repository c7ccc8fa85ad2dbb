package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/utils"
)

type CompanyAsset struct {
	ID          string         `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	CompanyID   string         `gorm:"column:company_id;type:varchar(50);not null;index" json:"company_id"`
	AssetType   enum.AssetType `gorm:"column:asset_type;type:varchar(20);not null;index" json:"asset_type"`
	FileName    string         `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	StorageKey  string         `gorm:"column:storage_key;type:varchar(512);not null;uniqueIndex" json:"storage_key"`
	ContentType string         `gorm:"column:content_type;type:varchar(255);not null" json:"content_type"`
	SizeBytes   int64          `gorm:"column:size_bytes;not null" json:"size_bytes"`
	PublicURL   string         `gorm:"column:public_url;type:text;not null" json:"public_url"`
	UploadedBy  string         `gorm:"column:uploaded_by;type:varchar(50)" json:"uploaded_by"`
	CreatedAt   time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updated_at"`
}

func (CompanyAsset) TableName() string {
	return "company_assets"
}

func (a *CompanyAsset) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = utils.GenerateNanoIDWithPrefix("asst", 16)
	}
	return nil
}
