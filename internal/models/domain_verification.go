package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/utils"
)

type DomainVerification struct {
	ID                   string                  `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	CompanyID            string                  `gorm:"column:company_id;type:varchar(50);not null;index" json:"company_id"`
	Domain               string                  `gorm:"column:domain;type:varchar(253);not null;index" json:"domain"`
	VerificationToken    string                  `gorm:"column:verification_token;type:varchar(64);not null;uniqueIndex" json:"token"`
	VerificationType     enum.VerificationType   `gorm:"column:verification_type;type:varchar(10);not null" json:"verification_type"`
	Status               enum.VerificationStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	DNSRecords           DNSRecords              `gorm:"column:dns_records;type:jsonb;not null;default:'[]'" json:"dns_records"`
	VerificationAttempts int                     `gorm:"column:verification_attempts;not null;default:0" json:"verification_attempts"`
	ExpiresAt            time.Time               `gorm:"column:expires_at;type:timestamp;not null;index" json:"expires_at"`
	VerifiedAt           *time.Time              `gorm:"column:verified_at;type:timestamp" json:"verified_at"`
	ErrorMessage         *string                 `gorm:"column:error_message;type:text" json:"error_message"`
	LastCheckedAt        *time.Time              `gorm:"column:last_checked_at;type:timestamp" json:"last_checked_at"`
	CreatedAt            time.Time               `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"created_at"`
	UpdatedAt            time.Time               `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updated_at"`
}

func (DomainVerification) TableName() string {
	return "domain_verifications"
}

func (v *DomainVerification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = utils.GenerateNanoIDWithPrefix("dver", 16)
	}
	return nil
}

// IsExpiredAt reports whether the record can no longer be verified at the given time.
func (v *DomainVerification) IsExpiredAt(now time.Time) bool {
	return v.Status == enum.VerificationStatusExpired || now.After(v.ExpiresAt)
}
