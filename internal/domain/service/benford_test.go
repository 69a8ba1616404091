package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnavadev/fraud-watch/internal/domain/service"
)

func TestLeadingDigit(t *testing.T) {
	tests := []struct {
		amount string
		want   int
	}{
		{"482113", 4},
		{"0.0072", 7},
		{"-9100", 9},
		{"1", 1},
		{"0", 0},
		{"0.000", 0},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, service.LeadingDigit(decimal.RequireFromString(tt.amount)))
		})
	}
}

func TestBenfordExpected(t *testing.T) {
	assert.InDelta(t, 0.30103, service.BenfordExpected(1), 1e-5)
	assert.InDelta(t, 0.04576, service.BenfordExpected(9), 1e-5)
	assert.Zero(t, service.BenfordExpected(0))
	assert.Zero(t, service.BenfordExpected(10))

	total := 0.0
	for d := 1; d <= 9; d++ {
		total += service.BenfordExpected(d)
	}
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestAnalyzeBenford_Empty(t *testing.T) {
	_, ok := service.AnalyzeBenford(nil)
	assert.False(t, ok)

	_, ok = service.AnalyzeBenford([]decimal.Decimal{decimal.Zero, decimal.Zero})
	assert.False(t, ok)
}

func TestAnalyzeBenford_SkewedSample(t *testing.T) {
	amounts := make([]decimal.Decimal, 0, 10)
	for i := 0; i < 9; i++ {
		amounts = append(amounts, decimal.NewFromInt(9_000+int64(i)))
	}
	amounts = append(amounts, decimal.NewFromInt(150_000), decimal.Zero)

	result, ok := service.AnalyzeBenford(amounts)

	require.True(t, ok)
	assert.Equal(t, 10, result.Sample)
	require.Len(t, result.Digits, 9)
	assert.True(t, result.HasAnomaly())

	nine := result.Digits[8]
	assert.Equal(t, 9, nine.Digit)
	assert.Equal(t, 9, nine.Count)
	assert.InDelta(t, 0.9, nine.Actual, 1e-9)
	assert.True(t, nine.Anomalous)

	one := result.Digits[0]
	assert.Equal(t, 1, one.Count)
	assert.InDelta(t, 0.1, one.Actual, 1e-9)
	assert.True(t, one.Anomalous)
}

func TestAnalyzeBenford_ConformingSample(t *testing.T) {
	// 1000 amounts distributed per Benford, rounded to whole counts.
	counts := map[int]int{1: 301, 2: 176, 3: 125, 4: 97, 5: 79, 6: 67, 7: 58, 8: 51, 9: 46}
	var amounts []decimal.Decimal
	for d, n := range counts {
		for i := 0; i < n; i++ {
			amounts = append(amounts, decimal.NewFromInt(int64(d)*1000+int64(i)))
		}
	}

	result, ok := service.AnalyzeBenford(amounts)

	require.True(t, ok)
	assert.Equal(t, 1000, result.Sample)
	assert.False(t, result.HasAnomaly())
	for _, d := range result.Digits {
		assert.Less(t, d.Deviation, service.BenfordAnomalyThreshold)
	}
}
