package postgres

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnavadev/fraud-watch/internal/domain/event"
	"github.com/gnavadev/fraud-watch/internal/domain/model"
	"github.com/gnavadev/fraud-watch/internal/domain/valueobject"
	"github.com/gnavadev/fraud-watch/pkg/events"
)

func TestNewProviderRepository(t *testing.T) {
	repo := NewProviderRepository(nil)
	assert.NotNil(t, repo)
	assert.Nil(t, repo.pool)
}

// TestReconstructProvider covers the mapping from scanned columns back into
// the ScoredProviderRecord aggregate.
func TestReconstructProvider(t *testing.T) {
	ingestedAt := time.Date(2026, 4, 2, 15, 4, 5, 0, time.FixedZone("CDT", -5*3600))

	t.Run("maps every column", func(t *testing.T) {
		capacity := 2
		geo := true
		record, err := reconstructProvider(providerRow{
			providerID:    "1083000",
			licenseHolder: "Happy Days Learning Inc",
			licenseType:   "Child Care Center",
			address:       "123 Lake St",
			city:          "Minneapolis",
			ein:           "41-0000001",
			irsStatus:     model.IRSStatusFound,
			capacity:      &capacity,
			geoMismatch:   &geo,
			revenue:       decimal.NewNullDecimal(decimal.NewFromInt(650_000)),
			riskScore:     80,
			verdict:       "HIGH",
			reasons:       []string{"revenue_capacity_anomaly", "excessive_per_capita_revenue", "geographic_mismatch"},
			ingestedAt:    ingestedAt,
		})

		require.NoError(t, err)
		raw := record.Raw()
		assert.Equal(t, "1083000", record.ProviderID())
		assert.Equal(t, "Happy Days Learning Inc", raw.LicenseHolder)
		assert.Equal(t, "Child Care Center", raw.LicenseType)
		assert.Equal(t, 2, *raw.Capacity)
		assert.True(t, *raw.GeoMismatch)
		require.NotNil(t, raw.Revenue)
		assert.Equal(t, "650000", raw.Revenue.String())
		assert.Equal(t, 80, record.RiskScore())
		assert.True(t, record.Verdict().Equal(valueobject.VerdictHigh))
		assert.Equal(t, []string{"revenue_capacity_anomaly", "excessive_per_capita_revenue", "geographic_mismatch"}, record.Reasons())
		assert.Equal(t, time.UTC, record.IngestedAt().Location())
		assert.True(t, ingestedAt.Equal(record.IngestedAt()))
		assert.Empty(t, record.Events())
	})

	t.Run("null optional columns stay absent", func(t *testing.T) {
		record, err := reconstructProvider(providerRow{providerID: "9", verdict: "LOW", ingestedAt: ingestedAt})

		require.NoError(t, err)
		raw := record.Raw()
		assert.Nil(t, raw.Revenue)
		assert.Nil(t, raw.Capacity)
		assert.Nil(t, raw.ChargebackCount)
		assert.NotNil(t, record.Reasons())
	})

	t.Run("rejects an unknown stored verdict", func(t *testing.T) {
		_, err := reconstructProvider(providerRow{providerID: "9", verdict: "CRITICAL"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid stored verdict")
	})
}

func TestNullDecimal(t *testing.T) {
	assert.False(t, nullDecimal(nil).Valid)

	v := decimal.RequireFromString("1234.50")
	nd := nullDecimal(&v)
	assert.True(t, nd.Valid)
	assert.True(t, v.Equal(nd.Decimal))
}

func TestOutboxEntries(t *testing.T) {
	scoredAt := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	evts := []events.DomainEvent{
		event.NewProviderScored("77", 90, "HIGH", []string{"revenue_capacity_anomaly"}, scoredAt),
		event.NewHighRiskDetected("77", "Shell Care Inc", 90, []string{"revenue_capacity_anomaly"}, scoredAt),
	}

	entries, err := outboxEntries(evts)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, event.EventTypeProviderScored, entries[0].EventType)
	assert.Equal(t, event.AggregateTypeProvider, entries[0].AggregateType)
	assert.Equal(t, "77", entries[1].AggregateID)
	assert.Equal(t, evts[1].EventID(), entries[1].ID)
	assert.Contains(t, string(entries[1].Payload), `"license_holder":"Shell Care Inc"`)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		wantUnavailable bool
	}{
		{name: "nil", err: nil},
		{name: "connection refused", err: fmt.Errorf("postgres: begin tx: %w", &pgconn.PgError{Code: "08001"}), wantUnavailable: true},
		{name: "pool closed", err: errors.New("postgres: begin tx: closed pool"), wantUnavailable: true},
		{name: "check violation", err: fmt.Errorf("failed to upsert provider: %w", &pgconn.PgError{Code: "23514"})},
		{name: "already classified", err: fmt.Errorf("x: %w", model.ErrStorageUnavailable), wantUnavailable: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err)
			assert.Equal(t, tt.wantUnavailable, errors.Is(got, model.ErrStorageUnavailable))
			if tt.err != nil {
				assert.ErrorIs(t, got, tt.err)
			}
		})
	}
}
