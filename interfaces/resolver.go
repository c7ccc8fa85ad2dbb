package interfaces

import (
	"context"

	"github.com/calcbuilder/adminstack/internal/enum"
)

type DNSResolver interface {
	Resolve(ctx context.Context, name string, recordType enum.DNSRecordType) []string
}

type HTTPChallengeVerifier interface {
	Verify(ctx context.Context, domain string, verificationType enum.VerificationType, token string) bool
}
