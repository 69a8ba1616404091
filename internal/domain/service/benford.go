package service

import (
	"math"

	"github.com/shopspring/decimal"
)

// BenfordAnomalyThreshold is the absolute frequency deviation above which a
// leading digit is flagged.
const BenfordAnomalyThreshold = 0.05

// DigitDeviation compares the observed share of one leading digit with the
// share predicted by Benford's law.
type DigitDeviation struct {
	Digit     int
	Count     int
	Actual    float64
	Expected  float64
	Deviation float64
	Anomalous bool
}

// BenfordResult is the leading-digit distribution of a set of amounts.
type BenfordResult struct {
	Digits []DigitDeviation
	Sample int
}

// HasAnomaly reports whether any digit deviates beyond the threshold.
func (r BenfordResult) HasAnomaly() bool {
	for _, d := range r.Digits {
		if d.Anomalous {
			return true
		}
	}
	return false
}

// BenfordExpected returns log10(1 + 1/d) for d in 1..9, and 0 otherwise.
func BenfordExpected(digit int) float64 {
	if digit < 1 || digit > 9 {
		return 0
	}
	return math.Log10(1 + 1/float64(digit))
}

// LeadingDigit returns the first non-zero digit of |amount|, or 0 for zero.
func LeadingDigit(amount decimal.Decimal) int {
	for _, c := range amount.Abs().String() {
		if c >= '1' && c <= '9' {
			return int(c - '0')
		}
	}
	return 0
}

// AnalyzeBenford computes the leading-digit distribution of amounts. Zero
// amounts carry no leading digit and are skipped. ok is false when no amount
// has a leading digit.
func AnalyzeBenford(amounts []decimal.Decimal) (result BenfordResult, ok bool) {
	var counts [10]int
	for _, a := range amounts {
		if d := LeadingDigit(a); d > 0 {
			counts[d]++
			result.Sample++
		}
	}
	if result.Sample == 0 {
		return BenfordResult{}, false
	}

	result.Digits = make([]DigitDeviation, 0, 9)
	for d := 1; d <= 9; d++ {
		actual := float64(counts[d]) / float64(result.Sample)
		expected := BenfordExpected(d)
		diff := math.Abs(actual - expected)
		result.Digits = append(result.Digits, DigitDeviation{
			Digit:     d,
			Count:     counts[d],
			Actual:    actual,
			Expected:  expected,
			Deviation: diff,
			Anomalous: diff > BenfordAnomalyThreshold,
		})
	}
	return result, true
}
