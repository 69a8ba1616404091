package dto

// Rejection reasons reported per record.
const (
	ReasonInvalidRecord       = "InvalidRecord"
	ReasonRuleEvaluationError = "RuleEvaluationError"
	ReasonWriteFailed         = "WriteFailed"
)

// Rejection describes one record that was not stored.
type Rejection struct {
	ProviderID string `json:"provider_id"`
	Reason     string `json:"reason"`
	Detail     string `json:"detail,omitempty"`
	Index      int    `json:"index"`
}

// IngestionReport summarises one ingestion batch. Processed counts every
// record the pipeline looked at, so Processed == Upserted + len(Rejected)
// unless the batch was aborted.
type IngestionReport struct {
	Rejected  []Rejection `json:"rejected"`
	Processed int         `json:"processed"`
	Upserted  int         `json:"upserted"`
	Aborted   bool        `json:"aborted,omitempty"`
}

// RejectedCount returns the number of rejected records.
func (r IngestionReport) RejectedCount() int { return len(r.Rejected) }
