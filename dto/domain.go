package dto

import (
	"time"

	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/models"
)

type DomainVerificationRequest struct {
	Domain              string                `json:"domain"`
	VerificationType    enum.VerificationType `json:"verification_type"`
	CustomDomainEnabled *bool                 `json:"custom_domain_enabled,omitempty"`
	SubdomainEnabled    *bool                 `json:"subdomain_enabled,omitempty"`
	WhiteLabelEnabled   *bool                 `json:"white_label_enabled,omitempty"`
}

type VerificationInstructions struct {
	Summary     string   `json:"summary"`
	Steps       []string `json:"steps"`
	FileURL     string   `json:"file_url,omitempty"`
	FileContent string   `json:"file_content,omitempty"`
	MetaTag     string   `json:"meta_tag,omitempty"`
}

// VerificationChallenge is what the domain owner needs to publish for a verification.
type VerificationChallenge struct {
	ID               string                   `json:"id"`
	Domain           string                   `json:"domain"`
	Token            string                   `json:"token"`
	VerificationType enum.VerificationType    `json:"verification_type"`
	Status           enum.VerificationStatus  `json:"status"`
	DNSRecords       models.DNSRecords        `json:"dns_records"`
	Instructions     VerificationInstructions `json:"instructions"`
	ExpiresAt        time.Time                `json:"expires_at"`
}

type DomainVerificationIssued struct {
	Company      *models.Company        `json:"company"`
	Verification *VerificationChallenge `json:"verification"`
}

type CompanyDomainStatus struct {
	Company      *models.Company            `json:"company"`
	Verification *models.DomainVerification `json:"verification"`
}

type CompanyVerificationState struct {
	DomainVerificationStatus *enum.VerificationStatus `json:"domain_verification_status"`
	DomainVerifiedAt         *time.Time               `json:"domain_verified_at"`
}

type DomainVerificationCheck struct {
	Verification *models.DomainVerification `json:"verification"`
	Company      CompanyVerificationState   `json:"company"`
}
