package dto

import "github.com/gnavadev/fraud-watch/internal/domain/service"

// DigitResponse is one leading digit of a Benford analysis.
type DigitResponse struct {
	Digit     int     `json:"digit"`
	Count     int     `json:"count"`
	Actual    float64 `json:"actual_freq"`
	Expected  float64 `json:"benford_freq"`
	Deviation float64 `json:"diff"`
	Anomalous bool    `json:"is_anomaly"`
}

// BenfordResponse is the leading-digit analysis of stored revenues.
type BenfordResponse struct {
	Digits     []DigitResponse `json:"digits"`
	SampleSize int             `json:"sample_size"`
	Anomalous  bool            `json:"anomalous"`
}

// FromBenford maps a domain Benford result to the response DTO.
func FromBenford(r service.BenfordResult) BenfordResponse {
	resp := BenfordResponse{
		SampleSize: r.Sample,
		Anomalous:  r.HasAnomaly(),
		Digits:     make([]DigitResponse, 0, len(r.Digits)),
	}
	for _, d := range r.Digits {
		resp.Digits = append(resp.Digits, DigitResponse{
			Digit:     d.Digit,
			Count:     d.Count,
			Actual:    d.Actual,
			Expected:  d.Expected,
			Deviation: d.Deviation,
			Anomalous: d.Anomalous,
		})
	}
	return resp
}
