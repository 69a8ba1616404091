package event

import (
	"time"

	"github.com/gnavadev/fraud-watch/pkg/events"
)

const (
	// EventTypeProviderScored is emitted every time a provider record is scored and stored.
	EventTypeProviderScored = "provider.scored"

	// EventTypeHighRiskDetected is emitted when a provider is scored with a HIGH verdict.
	EventTypeHighRiskDetected = "provider.high_risk.detected"

	// AggregateTypeProvider is the aggregate type recorded in the outbox.
	AggregateTypeProvider = "ScoredProvider"
)

// ProviderScored is published when a provider record has been scored and
// upserted.
type ProviderScored struct {
	events.BaseEvent
	ProviderID string   `json:"provider_id"`
	Verdict    string   `json:"verdict"`
	Reasons    []string `json:"reasons"`
	RiskScore  int      `json:"risk_score"`
}

// NewProviderScored builds a ProviderScored event.
func NewProviderScored(providerID string, riskScore int, verdict string, reasons []string, scoredAt time.Time) ProviderScored {
	return ProviderScored{
		BaseEvent:  events.NewBaseEvent(EventTypeProviderScored, providerID, AggregateTypeProvider, scoredAt),
		ProviderID: providerID,
		RiskScore:  riskScore,
		Verdict:    verdict,
		Reasons:    reasons,
	}
}

// HighRiskDetected is published when a provider is assessed with a HIGH
// verdict, triggering investigator review.
type HighRiskDetected struct {
	events.BaseEvent
	ProviderID    string   `json:"provider_id"`
	LicenseHolder string   `json:"license_holder"`
	Reasons       []string `json:"reasons"`
	RiskScore     int      `json:"risk_score"`
}

// NewHighRiskDetected builds a HighRiskDetected event.
func NewHighRiskDetected(providerID, licenseHolder string, riskScore int, reasons []string, detectedAt time.Time) HighRiskDetected {
	return HighRiskDetected{
		BaseEvent:     events.NewBaseEvent(EventTypeHighRiskDetected, providerID, AggregateTypeProvider, detectedAt),
		ProviderID:    providerID,
		LicenseHolder: licenseHolder,
		RiskScore:     riskScore,
		Reasons:       reasons,
	}
}
