package model

import (
	"fmt"
	"time"

	"github.com/gnavadev/fraud-watch/internal/domain/event"
	"github.com/gnavadev/fraud-watch/internal/domain/valueobject"
	"github.com/gnavadev/fraud-watch/pkg/events"
)

// RiskAssessment is the output of the risk evaluator for one raw record.
type RiskAssessment struct {
	Verdict   valueobject.Verdict
	Reasons   []string
	RiskScore int
}

// ScoredProviderRecord is the aggregate root persisted per provider ID: the
// raw feed fields, their risk assessment and the ingestion time.
type ScoredProviderRecord struct {
	events.EventCollector
	ingestedAt time.Time
	raw        RawProviderRecord
	assessment RiskAssessment
}

// NewScoredProviderRecord pairs a raw record with its assessment. It rejects
// incomplete assessments so a stored record always carries a full score.
func NewScoredProviderRecord(raw RawProviderRecord, assessment RiskAssessment, ingestedAt time.Time) (*ScoredProviderRecord, error) {
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	if assessment.RiskScore < 0 || assessment.RiskScore > 100 {
		return nil, fmt.Errorf("%w: risk score must be between 0 and 100, got %d", ErrRuleEvaluation, assessment.RiskScore)
	}
	if assessment.Verdict.IsZero() {
		return nil, fmt.Errorf("%w: verdict is required", ErrRuleEvaluation)
	}
	if !assessment.Verdict.Equal(valueobject.VerdictFromScore(assessment.RiskScore)) {
		return nil, fmt.Errorf("%w: verdict %s inconsistent with score %d",
			ErrRuleEvaluation, assessment.Verdict, assessment.RiskScore)
	}

	reasons := make([]string, len(assessment.Reasons))
	copy(reasons, assessment.Reasons)
	assessment.Reasons = reasons

	r := &ScoredProviderRecord{
		raw:        raw,
		assessment: assessment,
		ingestedAt: ingestedAt.UTC(),
	}

	r.Record(event.NewProviderScored(
		raw.ProviderID, assessment.RiskScore, assessment.Verdict.String(), reasons, r.ingestedAt,
	))
	if assessment.Verdict.IsHigh() {
		r.Record(event.NewHighRiskDetected(
			raw.ProviderID, raw.LicenseHolder, assessment.RiskScore, reasons, r.ingestedAt,
		))
	}

	return r, nil
}

// Reconstruct rebuilds a ScoredProviderRecord from persisted data (no validation, no events).
func Reconstruct(raw RawProviderRecord, assessment RiskAssessment, ingestedAt time.Time) *ScoredProviderRecord {
	if assessment.Reasons == nil {
		assessment.Reasons = make([]string, 0)
	}
	return &ScoredProviderRecord{
		raw:        raw,
		assessment: assessment,
		ingestedAt: ingestedAt,
	}
}

// --- Accessors ---

func (r *ScoredProviderRecord) ProviderID() string           { return r.raw.ProviderID }
func (r *ScoredProviderRecord) Raw() RawProviderRecord       { return r.raw }
func (r *ScoredProviderRecord) Assessment() RiskAssessment   { return r.assessment }
func (r *ScoredProviderRecord) RiskScore() int               { return r.assessment.RiskScore }
func (r *ScoredProviderRecord) Verdict() valueobject.Verdict { return r.assessment.Verdict }
func (r *ScoredProviderRecord) Reasons() []string            { return r.assessment.Reasons }
func (r *ScoredProviderRecord) IngestedAt() time.Time        { return r.ingestedAt }
