package interfaces

import (
	"context"

	"github.com/calcbuilder/adminstack/dto"
)

type DomainVerificationService interface {
	RequestVerification(ctx context.Context, companyId string, request dto.DomainVerificationRequest) (*dto.DomainVerificationIssued, error)
	GetDomainStatus(ctx context.Context, companyId string) (*dto.CompanyDomainStatus, error)
	UpdateDomain(ctx context.Context, companyId string, request dto.DomainVerificationRequest) (*dto.DomainVerificationIssued, error)
	CheckVerification(ctx context.Context, companyId string) (*dto.DomainVerificationCheck, error)
	ExpireStaleVerifications(ctx context.Context) (int64, error)
}
