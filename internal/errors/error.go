package errors

import (
	"github.com/pkg/errors"
)

var (
	// common errors
	ErrCompanyMissing    = errors.New("company is missing")
	ErrConnectionTimeout = errors.New("connection timeout")

	// not found
	ErrCompanyNotFound      = errors.New("company not found")
	ErrVerificationNotFound = errors.New("verification record not found")
	ErrMemberNotFound       = errors.New("team member not found")
	ErrRoleNotFound         = errors.New("team role not found")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrAssetNotFound        = errors.New("asset not found")

	// conflicts
	ErrDomainAlreadyVerified = errors.New("domain is already verified for this company")
	ErrDomainClaimed         = errors.New("domain is already verified by another company")
	ErrSlugTaken             = errors.New("slug is already in use")
	ErrAlreadyMember         = errors.New("user is already a member of this company")
	ErrAlreadyInvited        = errors.New("an invitation is already pending for this email")
	ErrRoleNameTaken         = errors.New("a role with this name already exists")
	ErrRoleInUse             = errors.New("role is assigned to team members")

	// domain verification workflow
	ErrNoVerificationRequest = errors.New("no verification request found")
	ErrVerificationExpired   = errors.New("verification expired, create a new verification request")

	// invitations
	ErrInvitationExpired    = errors.New("invitation has expired")
	ErrInvitationNotPending = errors.New("invitation is no longer pending")

	// email
	ErrUnknownTemplate = errors.New("unknown email template")
)

var notFoundErrors = []error{
	ErrCompanyNotFound,
	ErrVerificationNotFound,
	ErrMemberNotFound,
	ErrRoleNotFound,
	ErrInvitationNotFound,
	ErrAssetNotFound,
}

var conflictErrors = []error{
	ErrDomainAlreadyVerified,
	ErrDomainClaimed,
	ErrSlugTaken,
	ErrAlreadyMember,
	ErrAlreadyInvited,
	ErrRoleNameTaken,
	ErrRoleInUse,
}

var badRequestErrors = []error{
	ErrCompanyMissing,
	ErrNoVerificationRequest,
	ErrVerificationExpired,
	ErrInvitationExpired,
	ErrInvitationNotPending,
	ErrUnknownTemplate,
}

func IsNotFound(err error) bool {
	return isAny(err, notFoundErrors)
}

func IsConflict(err error) bool {
	return isAny(err, conflictErrors)
}

// IsBadRequest reports client errors that are not field validation failures.
func IsBadRequest(err error) bool {
	return isAny(err, badRequestErrors)
}

func isAny(err error, targets []error) bool {
	if err == nil {
		return false
	}
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Sentinel returns the known sentinel wrapped by err, or nil when err is not one of ours.
func Sentinel(err error) error {
	if err == nil {
		return nil
	}
	for _, family := range [][]error{notFoundErrors, conflictErrors, badRequestErrors} {
		for _, target := range family {
			if errors.Is(err, target) {
				return target
			}
		}
	}
	return nil
}
