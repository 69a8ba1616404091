package valueobject

import "fmt"

// Verdict is an immutable value object representing the categorical risk label
// derived from a provider's risk score.
type Verdict struct {
	value string
}

var (
	VerdictLow    = Verdict{value: "LOW"}
	VerdictMedium = Verdict{value: "MEDIUM"}
	VerdictHigh   = Verdict{value: "HIGH"}
)

// Lower bounds (inclusive) of the verdict bands. Together they partition [0,100].
const (
	MediumRiskThreshold = 30
	HighRiskThreshold   = 70
)

// VerdictFromString reconstructs a Verdict from its string representation.
func VerdictFromString(s string) (Verdict, error) {
	switch s {
	case "LOW":
		return VerdictLow, nil
	case "MEDIUM":
		return VerdictMedium, nil
	case "HIGH":
		return VerdictHigh, nil
	default:
		return Verdict{}, fmt.Errorf("invalid verdict: %s", s)
	}
}

// VerdictFromScore derives the Verdict for a numeric score (0-100).
func VerdictFromScore(score int) Verdict {
	switch {
	case score >= HighRiskThreshold:
		return VerdictHigh
	case score >= MediumRiskThreshold:
		return VerdictMedium
	default:
		return VerdictLow
	}
}

// String returns the string representation.
func (v Verdict) String() string {
	return v.value
}

// IsZero returns true if the Verdict has not been set.
func (v Verdict) IsZero() bool {
	return v.value == ""
}

// Equal checks equality with another Verdict.
func (v Verdict) Equal(other Verdict) bool {
	return v.value == other.value
}

// IsHigh returns true if the verdict is HIGH.
func (v Verdict) IsHigh() bool {
	return v.value == "HIGH"
}
