package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gnavadev/fraud-watch/internal/domain/model"
	"github.com/gnavadev/fraud-watch/internal/domain/port"
)

// EnrichProviders attaches IRS nonprofit data to raw records before scoring.
type EnrichProviders struct {
	lookup port.NonprofitLookup
	logger *slog.Logger
}

// NewEnrichProviders creates a new EnrichProviders use case.
func NewEnrichProviders(lookup port.NonprofitLookup, logger *slog.Logger) *EnrichProviders {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichProviders{lookup: lookup, logger: logger}
}

// Execute returns enriched copies of records. Records that already carry an
// IRS status or have no license holder pass through unchanged. A failed
// lookup marks the record "Not Found" and never fails the batch.
func (uc *EnrichProviders) Execute(ctx context.Context, records []model.RawProviderRecord) []model.RawProviderRecord {
	out := make([]model.RawProviderRecord, len(records))
	copy(out, records)

	found := 0
	for i, rec := range out {
		if rec.IRSStatus != "" || strings.TrimSpace(rec.LicenseHolder) == "" {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		match, err := uc.lookup.Lookup(ctx, rec.LicenseHolder)
		if err != nil {
			uc.logger.Warn("nonprofit lookup failed",
				"provider_id", rec.ProviderID,
				"license_holder", rec.LicenseHolder,
				"error", err,
			)
			out[i].IRSStatus = model.IRSStatusNotFound
			continue
		}
		if !match.Found {
			out[i].IRSStatus = model.IRSStatusNotFound
			continue
		}

		revenue := match.Revenue
		if revenue == nil {
			revenue = rec.Revenue
		}
		out[i] = rec.WithIRSData(match.EIN, revenue, model.IRSStatusFound)
		found++
	}

	uc.logger.Info("nonprofit enrichment complete", "records", len(records), "matched", found)
	return out
}
