package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RawProviderRecord is one row of the provider licensing feed. Pointer fields
// are optional; nil means the feed did not carry a value.
type RawProviderRecord struct {
	Revenue             *decimal.Decimal `json:"revenue,omitempty"`
	Capacity            *int             `json:"capacity,omitempty"`
	RegistrationAgeDays *int             `json:"registration_age_days,omitempty"`
	ChargebackCount     *int             `json:"chargeback_count,omitempty"`
	ClaimVolume         *int             `json:"claim_volume,omitempty"`
	GeoMismatch         *bool            `json:"geo_mismatch,omitempty"`
	ProviderID          string           `json:"provider_id"`
	LicenseHolder       string           `json:"license_holder,omitempty"`
	LicenseType         string           `json:"license_type,omitempty"`
	Address             string           `json:"address,omitempty"`
	City                string           `json:"city,omitempty"`
	EIN                 string           `json:"ein,omitempty"`
	IRSStatus           string           `json:"irs_status,omitempty"`
}

// IRS lookup statuses.
const (
	IRSStatusFound    = "Found"
	IRSStatusNotFound = "Not Found"
)

// Validate checks the record's required identifying field.
func (r RawProviderRecord) Validate() error {
	if strings.TrimSpace(r.ProviderID) == "" {
		return fmt.Errorf("%w: provider ID is required", ErrInvalidRecord)
	}
	return nil
}

// WithIRSData returns a copy of the record carrying the given IRS lookup result.
func (r RawProviderRecord) WithIRSData(ein string, revenue *decimal.Decimal, status string) RawProviderRecord {
	r.EIN = ein
	r.Revenue = revenue
	r.IRSStatus = status
	return r
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }

// DecimalPtr returns a pointer to v.
func DecimalPtr(v decimal.Decimal) *decimal.Decimal { return &v }
