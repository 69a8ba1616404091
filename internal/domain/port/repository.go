package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gnavadev/fraud-watch/internal/domain/model"
)

// ProviderRepository defines the persistence port for scored provider records.
type ProviderRepository interface {
	// Upsert inserts the record or replaces the one stored under the same
	// provider ID, together with its pending domain events, atomically.
	Upsert(ctx context.Context, record *model.ScoredProviderRecord) error

	// FindByProviderID returns model.ErrProviderNotFound when no record exists.
	FindByProviderID(ctx context.Context, providerID string) (*model.ScoredProviderRecord, error)

	// ListByRisk returns every stored record, highest risk score first.
	ListByRisk(ctx context.Context) ([]*model.ScoredProviderRecord, error)

	// ListRevenues returns the non-null revenue of every stored record.
	ListRevenues(ctx context.Context) ([]decimal.Decimal, error)
}

// NonprofitMatch is the outcome of a nonprofit registry lookup.
type NonprofitMatch struct {
	Revenue *decimal.Decimal
	EIN     string
	Name    string
	Found   bool
}

// NonprofitLookup resolves a license holder name against the IRS nonprofit
// registry.
type NonprofitLookup interface {
	Lookup(ctx context.Context, name string) (NonprofitMatch, error)
}

// IngestionMetrics records pipeline counters. Implementations must be safe
// for concurrent use.
type IngestionMetrics interface {
	RecordBatch(ctx context.Context, processed, upserted int, duration time.Duration)
	RecordRejection(ctx context.Context, reason string)
}

// Clock supplies ingestion timestamps.
type Clock interface {
	Now() time.Time
}
