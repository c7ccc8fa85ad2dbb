package dto

import (
	"time"

	"github.com/calcbuilder/adminstack/internal/enum"
)

type DomainVerificationRequested struct {
	CompanyId        string                `json:"companyId"`
	VerificationId   string                `json:"verificationId"`
	Domain           string                `json:"domain"`
	VerificationType enum.VerificationType `json:"verificationType"`
	ExpiresAt        time.Time             `json:"expiresAt"`
}

type DomainVerified struct {
	CompanyId      string    `json:"companyId"`
	VerificationId string    `json:"verificationId"`
	Domain         string    `json:"domain"`
	VerifiedAt     time.Time `json:"verifiedAt"`
	Attempts       int       `json:"attempts"`
}

type DomainVerificationFailed struct {
	CompanyId      string `json:"companyId"`
	VerificationId string `json:"verificationId"`
	Domain         string `json:"domain"`
	Reason         string `json:"reason"`
	Attempts       int    `json:"attempts"`
}

type DomainVerificationExpired struct {
	CompanyId      string    `json:"companyId"`
	VerificationId string    `json:"verificationId"`
	Domain         string    `json:"domain"`
	ExpiredAt      time.Time `json:"expiredAt"`
}

type TeamMemberJoined struct {
	CompanyId string `json:"companyId"`
	MemberId  string `json:"memberId"`
	UserId    string `json:"userId"`
	Email     string `json:"email"`
	RoleId    string `json:"roleId"`
}
