package domain

import (
	"fmt"
	"strings"

	"github.com/calcbuilder/adminstack/dto"
	"github.com/calcbuilder/adminstack/internal/enum"
	"github.com/calcbuilder/adminstack/internal/models"
	"github.com/calcbuilder/adminstack/services/resolver"
)

const TXTRecordPrefix = "calcbuilder-verification="

func txtRecordValue(token string) string {
	return TXTRecordPrefix + token
}

func wwwName(domain string) string {
	return "www." + domain
}

// expectedRecords returns the TXT and CNAME challenge records, in that order.
func expectedRecords(domain, token, canonicalHostname string) models.DNSRecords {
	return models.DNSRecords{
		{
			Type:          enum.DNSRecordTXT,
			Name:          domain,
			ExpectedValue: txtRecordValue(token),
			Status:        enum.DNSRecordExpected,
		},
		{
			Type:          enum.DNSRecordCNAME,
			Name:          wwwName(domain),
			ExpectedValue: canonicalHostname,
			Status:        enum.DNSRecordExpected,
		},
	}
}

func normalizeHostname(host string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
}

// evaluateTXT looks for the exact verification value among the TXT strings of the domain.
// Other TXT records (SPF and the like) are ignored; a verification record with a different
// token is reported as incorrect.
func evaluateTXT(record *models.DNSRecord, values []string) {
	record.ObservedValue = nil
	var other *string
	for _, value := range values {
		if value == record.ExpectedValue {
			observed := value
			record.ObservedValue = &observed
			record.Status = enum.DNSRecordFound
			return
		}
		if other == nil && strings.HasPrefix(value, TXTRecordPrefix) {
			observed := value
			other = &observed
		}
	}
	if other != nil {
		record.ObservedValue = other
		record.Status = enum.DNSRecordIncorrect
		return
	}
	record.Status = enum.DNSRecordMissing
}

func evaluateCNAME(record *models.DNSRecord, values []string) {
	record.ObservedValue = nil
	if len(values) == 0 {
		record.Status = enum.DNSRecordMissing
		return
	}
	observed := normalizeHostname(values[0])
	record.ObservedValue = &observed
	if observed == normalizeHostname(record.ExpectedValue) {
		record.Status = enum.DNSRecordFound
		return
	}
	record.Status = enum.DNSRecordIncorrect
}

// failureReason describes every record that did not match, for error_message.
func failureReason(records models.DNSRecords, ownershipProven bool) string {
	var reasons []string
	for _, record := range records {
		if record.Status == enum.DNSRecordFound {
			continue
		}
		if record.Type == enum.DNSRecordTXT && ownershipProven {
			continue
		}
		switch record.Status {
		case enum.DNSRecordIncorrect:
			reasons = append(reasons, fmt.Sprintf("%s record at %s has value %q, expected %q",
				record.Type, record.Name, *record.ObservedValue, record.ExpectedValue))
		default:
			reasons = append(reasons, fmt.Sprintf("%s record at %s not found", record.Type, record.Name))
		}
	}
	if len(reasons) == 0 {
		return ""
	}
	return "Verification failed: " + strings.Join(reasons, "; ")
}

func instructionsFor(verification *models.DomainVerification, canonicalHostname string) dto.VerificationInstructions {
	txt := txtRecordValue(verification.VerificationToken)
	result := dto.VerificationInstructions{
		Steps: []string{
			fmt.Sprintf("Add a TXT record for %s with the value %s", verification.Domain, txt),
			fmt.Sprintf("Add a CNAME record for %s pointing to %s", wwwName(verification.Domain), canonicalHostname),
		},
	}

	switch verification.VerificationType {
	case enum.VerificationTypeFile:
		result.FileURL = "https://" + verification.Domain + resolver.ChallengeFilePath
		result.FileContent = verification.VerificationToken
		result.Summary = "Publish the DNS records, or serve the verification file instead of the TXT record."
		result.Steps = append(result.Steps,
			fmt.Sprintf("Alternatively to the TXT record, serve %s containing %s", result.FileURL, verification.VerificationToken))
	case enum.VerificationTypeMeta:
		result.MetaTag = fmt.Sprintf(`<meta name="%s" content="%s">`, resolver.ChallengeMetaName, verification.VerificationToken)
		result.Summary = "Publish the DNS records, or add the meta tag to your home page instead of the TXT record."
		result.Steps = append(result.Steps,
			fmt.Sprintf("Alternatively to the TXT record, add %s to the <head> of https://%s/", result.MetaTag, verification.Domain))
	default:
		result.Summary = "Publish both DNS records at your DNS provider, then run the verification check."
	}
	result.Steps = append(result.Steps, "DNS changes can take up to 48 hours to propagate. Run the check again once they are visible.")

	return result
}
