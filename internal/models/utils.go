package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/calcbuilder/adminstack/internal/enum"
)

// DNSRecord is one challenge record the domain owner must publish, with the last observed state.
type DNSRecord struct {
	Type          enum.DNSRecordType   `json:"type"`
	Name          string               `json:"name"`
	ExpectedValue string               `json:"expected_value"`
	ObservedValue *string              `json:"observed_value"`
	Status        enum.DNSRecordStatus `json:"status"`
}

// DNSRecords is an ordered list of challenge records stored as JSONB
type DNSRecords []DNSRecord

// Value implements the driver.Valuer interface for DNSRecords
func (r DNSRecords) Value() (driver.Value, error) {
	if r == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r)
}

// Scan implements the sql.Scanner interface for DNSRecords
func (r *DNSRecords) Scan(value interface{}) error {
	if value == nil {
		*r = DNSRecords{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.Errorf("unsupported dns_records value type %T", value)
	}

	return json.Unmarshal(bytes, r)
}
