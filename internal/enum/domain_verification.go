package enum

type VerificationType string

const (
	VerificationTypeDNS  VerificationType = "dns"
	VerificationTypeFile VerificationType = "file"
	VerificationTypeMeta VerificationType = "meta"
)

func (t VerificationType) String() string {
	return string(t)
}

func (t VerificationType) IsValid() bool {
	switch t {
	case VerificationTypeDNS, VerificationTypeFile, VerificationTypeMeta:
		return true
	}
	return false
}

// UsesHTTPChallenge reports whether ownership may also be proven over HTTP.
func (t VerificationType) UsesHTTPChallenge() bool {
	return t == VerificationTypeFile || t == VerificationTypeMeta
}

type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusVerified VerificationStatus = "verified"
	VerificationStatusFailed   VerificationStatus = "failed"
	VerificationStatusExpired  VerificationStatus = "expired"
)

func (s VerificationStatus) String() string {
	return string(s)
}

// IsCheckable reports whether a live DNS check may still change the status.
func (s VerificationStatus) IsCheckable() bool {
	return s == VerificationStatusPending || s == VerificationStatusFailed
}

type DNSRecordType string

const (
	DNSRecordTXT   DNSRecordType = "TXT"
	DNSRecordCNAME DNSRecordType = "CNAME"
)

func (t DNSRecordType) String() string {
	return string(t)
}

type DNSRecordStatus string

const (
	DNSRecordExpected  DNSRecordStatus = "expected"
	DNSRecordFound     DNSRecordStatus = "found"
	DNSRecordMissing   DNSRecordStatus = "missing"
	DNSRecordIncorrect DNSRecordStatus = "incorrect"
)

func (s DNSRecordStatus) String() string {
	return string(s)
}
