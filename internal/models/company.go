package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/utils"
)

type Company struct {
	ID                  string  `gorm:"column:id;type:varchar(50);primaryKey" json:"id"`
	Name                string  `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Slug                string  `gorm:"column:slug;type:varchar(63);not null;uniqueIndex" json:"slug"`
	Domain              *string `gorm:"column:domain;type:varchar(253);index" json:"domain"`
	CustomDomainEnabled bool    `gorm:"column:custom_domain_enabled;not null;default:false" json:"custom_domain_enabled"`
	SubdomainEnabled    bool    `gorm:"column:subdomain_enabled;not null;default:false" json:"subdomain_enabled"`
	WhiteLabelEnabled   bool    `gorm:"column:white_label_enabled;not null;default:false" json:"white_label_enabled"`
	// Mirror of the current domain verification
	DomainVerificationID     *string                  `gorm:"column:domain_verification_id;type:varchar(50)" json:"domain_verification_id"`
	DomainVerificationStatus *enum.VerificationStatus `gorm:"column:domain_verification_status;type:varchar(20)" json:"domain_verification_status"`
	DomainVerifiedAt         *time.Time               `gorm:"column:domain_verified_at;type:timestamp" json:"domain_verified_at"`
	// Branding
	LogoURL         *string       `gorm:"column:logo_url;type:text" json:"logo_url"`
	PrimaryColor    *string       `gorm:"column:primary_color;type:varchar(7)" json:"primary_color"`
	SecondaryColor  *string       `gorm:"column:secondary_color;type:varchar(7)" json:"secondary_color"`
	DefaultLanguage enum.Language `gorm:"column:default_language;type:varchar(5);not null;default:fi" json:"default_language"`
	// Standard timestamps
	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Company) TableName() string {
	return "companies"
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = utils.GenerateNanoIDWithPrefix("comp", 16)
	}
	if c.DefaultLanguage == "" {
		c.DefaultLanguage = enum.LanguageFinnish
	}
	return nil
}

// HasVerifiedDomain reports whether domain is verified and enabled for this company.
func (c *Company) HasVerifiedDomain(domain string) bool {
	return c.Domain != nil && *c.Domain == domain &&
		c.CustomDomainEnabled &&
		c.DomainVerificationStatus != nil && *c.DomainVerificationStatus == enum.VerificationStatusVerified
}
