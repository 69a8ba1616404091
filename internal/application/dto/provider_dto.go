package dto

import (
	"time"

	"github.com/gnavadev/fraud-watch/internal/domain/model"
)

// ProviderResponse is the read model served for one scored provider.
type ProviderResponse struct {
	IngestedAt          time.Time `json:"ingested_at"`
	Capacity            *int      `json:"capacity,omitempty"`
	RegistrationAgeDays *int      `json:"registration_age_days,omitempty"`
	ChargebackCount     *int      `json:"chargeback_count,omitempty"`
	ClaimVolume         *int      `json:"claim_volume,omitempty"`
	GeoMismatch         *bool     `json:"geo_mismatch,omitempty"`
	Reasons             []string  `json:"reasons"`
	ProviderID          string    `json:"provider_id"`
	LicenseHolder       string    `json:"license_holder"`
	LicenseType         string    `json:"license_type,omitempty"`
	Address             string    `json:"address,omitempty"`
	City                string    `json:"city"`
	EIN                 string    `json:"ein,omitempty"`
	IRSStatus           string    `json:"irs_status,omitempty"`
	Revenue             string    `json:"revenue,omitempty"`
	Verdict             string    `json:"verdict"`
	RiskScore           int       `json:"risk_score"`
}

// GetProviderRequest is the input DTO for retrieving one provider.
type GetProviderRequest struct {
	ProviderID string `json:"provider_id"`
}

// ListProvidersResponse wraps the risk-ordered provider listing.
type ListProvidersResponse struct {
	Providers []ProviderResponse `json:"providers"`
}

// FromModel maps a domain model to the response DTO.
func FromModel(p *model.ScoredProviderRecord) ProviderResponse {
	raw := p.Raw()
	resp := ProviderResponse{
		ProviderID:          raw.ProviderID,
		LicenseHolder:       raw.LicenseHolder,
		LicenseType:         raw.LicenseType,
		Address:             raw.Address,
		City:                raw.City,
		EIN:                 raw.EIN,
		IRSStatus:           raw.IRSStatus,
		Capacity:            raw.Capacity,
		RegistrationAgeDays: raw.RegistrationAgeDays,
		ChargebackCount:     raw.ChargebackCount,
		ClaimVolume:         raw.ClaimVolume,
		GeoMismatch:         raw.GeoMismatch,
		RiskScore:           p.RiskScore(),
		Verdict:             p.Verdict().String(),
		Reasons:             p.Reasons(),
		IngestedAt:          p.IngestedAt(),
	}
	if raw.Revenue != nil {
		resp.Revenue = raw.Revenue.String()
	}
	if resp.Reasons == nil {
		resp.Reasons = []string{}
	}
	return resp
}
