package validation

import (
	"regexp"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/google/uuid"
	"golang.org/x/net/idna"

	"github.com/calcbuilder/adminstack/internal/enum"
	apperrors "github.com/calcbuilder/adminstack/internal/errors"
)

const (
	maxHostnameLength = 253
	maxLabelLength    = 63
	minSlugLength     = 2
	maxSlugLength     = 63
)

var (
	labelRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)
	slugRegex  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	colorRegex = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
)

// NormalizeDomain converts user input into a lower-case ASCII hostname and checks it
// against the hostname grammar. Internationalized names are converted to punycode.
func NormalizeDomain(field, raw string) (string, error) {
	domain := strings.ToLower(strings.TrimSpace(raw))
	domain = strings.TrimSuffix(domain, ".")
	if domain == "" {
		return "", apperrors.NewFieldError(field, "domain is required")
	}

	ascii, err := idna.ToASCII(domain)
	if err != nil {
		return "", apperrors.NewFieldError(field, "domain is not a valid hostname")
	}

	if !IsValidHostname(ascii) {
		return "", apperrors.NewFieldError(field, "domain is not a valid hostname")
	}
	return ascii, nil
}

// IsValidHostname reports whether host is at least two dot separated labels of
// 1-63 alphanumerics or hyphens with no leading or trailing hyphen.
func IsValidHostname(host string) bool {
	if len(host) == 0 || len(host) > maxHostnameLength {
		return false
	}
	labels := strings.Split(strings.ToLower(host), ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if len(label) == 0 || len(label) > maxLabelLength {
			return false
		}
		if !labelRegex.MatchString(label) {
			return false
		}
	}
	return true
}

func ValidateSlug(field, slug string) error {
	if len(slug) < minSlugLength || len(slug) > maxSlugLength {
		return apperrors.NewFieldError(field, "slug must be between 2 and 63 characters")
	}
	if !slugRegex.MatchString(slug) {
		return apperrors.NewFieldError(field, "slug may only contain lower-case letters, digits and single hyphens")
	}
	return nil
}

// NormalizeEmail validates the address syntax and returns its cleaned form.
func NormalizeEmail(field, email string) (string, error) {
	if strings.TrimSpace(email) == "" {
		return "", apperrors.NewFieldError(field, "email is required")
	}
	validate := mailvalidate.ValidateEmailSyntax(strings.TrimSpace(email))
	if !validate.IsValid || validate.IsSystemGenerated {
		return "", apperrors.NewFieldError(field, "email address is not valid")
	}
	return validate.CleanEmail, nil
}

func ValidateUserId(field, userId string) error {
	if _, err := uuid.Parse(userId); err != nil {
		return apperrors.NewFieldError(field, "must be a valid UUID")
	}
	return nil
}

func ValidateColor(field, color string) error {
	if !colorRegex.MatchString(color) {
		return apperrors.NewFieldError(field, "must be a hex color like #1a2b3c")
	}
	return nil
}

func ValidateLanguage(field string, language enum.Language) error {
	if !language.IsValid() {
		return apperrors.NewFieldError(field, "unsupported language")
	}
	return nil
}

func ValidateVerificationType(field string, verificationType enum.VerificationType) error {
	if !verificationType.IsValid() {
		return apperrors.NewFieldError(field, "verification type must be one of dns, file, meta")
	}
	return nil
}

func ValidatePermissions(field string, permissions []string) error {
	if len(permissions) == 0 {
		return apperrors.NewFieldError(field, "at least one permission is required")
	}
	for _, permission := range permissions {
		if !enum.Permission(permission).IsValid() {
			return apperrors.NewFieldError(field, "unknown permission "+permission)
		}
	}
	return nil
}
