package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/gnavadev/fraud-watch/internal/domain/model"
	"github.com/gnavadev/fraud-watch/internal/domain/valueobject"
	"github.com/gnavadev/fraud-watch/pkg/events"
	pgpkg "github.com/gnavadev/fraud-watch/pkg/postgres"
)

const selectProviderSQL = `
	SELECT
		p.provider_id, p.license_holder, p.license_type, p.address, p.city,
		p.ein, p.irs_status, p.capacity, p.revenue, p.registration_age_days,
		p.chargeback_count, p.claim_volume, p.geo_mismatch,
		p.risk_score, p.verdict, p.ingested_at,
		COALESCE(array_agg(r.reason ORDER BY r.ordinal) FILTER (WHERE r.reason IS NOT NULL), '{}')
	FROM scored_providers p
	LEFT JOIN provider_risk_reasons r ON r.provider_id = p.provider_id
`

// ProviderRepository implements port.ProviderRepository using PostgreSQL.
type ProviderRepository struct {
	pool *pgxpool.Pool
}

// NewProviderRepository creates a new PostgreSQL-backed provider repository.
func NewProviderRepository(pool *pgxpool.Pool) *ProviderRepository {
	return &ProviderRepository{pool: pool}
}

// Upsert writes the scored record, its ordered reasons and its pending domain
// events in one transaction. A concurrent upsert of the same provider ID
// waits on the row lock taken by ON CONFLICT, so the last commit wins whole.
func (r *ProviderRepository) Upsert(ctx context.Context, record *model.ScoredProviderRecord) error {
	entries, err := outboxEntries(record.Events())
	if err != nil {
		return err
	}

	err = pgpkg.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		raw := record.Raw()

		const upsertSQL = `
			INSERT INTO scored_providers (
				provider_id, license_holder, license_type, address, city,
				ein, irs_status, capacity, revenue, registration_age_days,
				chargeback_count, claim_volume, geo_mismatch,
				risk_score, verdict, ingested_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			ON CONFLICT (provider_id) DO UPDATE SET
				license_holder = EXCLUDED.license_holder,
				license_type = EXCLUDED.license_type,
				address = EXCLUDED.address,
				city = EXCLUDED.city,
				ein = EXCLUDED.ein,
				irs_status = EXCLUDED.irs_status,
				capacity = EXCLUDED.capacity,
				revenue = EXCLUDED.revenue,
				registration_age_days = EXCLUDED.registration_age_days,
				chargeback_count = EXCLUDED.chargeback_count,
				claim_volume = EXCLUDED.claim_volume,
				geo_mismatch = EXCLUDED.geo_mismatch,
				risk_score = EXCLUDED.risk_score,
				verdict = EXCLUDED.verdict,
				ingested_at = EXCLUDED.ingested_at
		`
		if _, err := tx.Exec(ctx, upsertSQL,
			raw.ProviderID, raw.LicenseHolder, raw.LicenseType, raw.Address, raw.City,
			raw.EIN, raw.IRSStatus, raw.Capacity, nullDecimal(raw.Revenue), raw.RegistrationAgeDays,
			raw.ChargebackCount, raw.ClaimVolume, raw.GeoMismatch,
			record.RiskScore(), record.Verdict().String(), record.IngestedAt(),
		); err != nil {
			return fmt.Errorf("failed to upsert provider: %w", err)
		}

		// Reasons are replaced wholesale so their order always matches the
		// latest assessment.
		if _, err := tx.Exec(ctx, `DELETE FROM provider_risk_reasons WHERE provider_id = $1`, raw.ProviderID); err != nil {
			return fmt.Errorf("failed to delete old risk reasons: %w", err)
		}
		for i, reason := range record.Reasons() {
			if _, err := tx.Exec(ctx,
				`INSERT INTO provider_risk_reasons (provider_id, ordinal, reason) VALUES ($1, $2, $3)`,
				raw.ProviderID, i, reason,
			); err != nil {
				return fmt.Errorf("failed to save risk reason: %w", err)
			}
		}

		for _, e := range entries {
			const insertOutboxSQL = `
				INSERT INTO outbox (id, aggregate_id, aggregate_type, event_type, payload, created_at)
				VALUES ($1, $2, $3, $4, $5, $6)
			`
			if _, err := tx.Exec(ctx, insertOutboxSQL,
				e.ID, e.AggregateID, e.AggregateType, e.EventType, e.Payload, e.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert outbox event: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return classify(err)
	}

	record.ClearEvents()
	return nil
}

// FindByProviderID retrieves a scored provider by provider ID.
func (r *ProviderRepository) FindByProviderID(ctx context.Context, providerID string) (*model.ScoredProviderRecord, error) {
	query := selectProviderSQL + `
		WHERE p.provider_id = $1
		GROUP BY p.provider_id
	`

	record, err := scanProvider(r.pool.QueryRow(ctx, query, providerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", model.ErrProviderNotFound, providerID)
	}
	if err != nil {
		return nil, classify(err)
	}
	return record, nil
}

// ListByRisk returns all providers ordered by risk score descending, ties
// broken by provider ID.
func (r *ProviderRepository) ListByRisk(ctx context.Context) ([]*model.ScoredProviderRecord, error) {
	query := selectProviderSQL + `
		GROUP BY p.provider_id
		ORDER BY p.risk_score DESC, p.provider_id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query providers: %w", err))
	}
	defer rows.Close()

	records := make([]*model.ScoredProviderRecord, 0)
	for rows.Next() {
		record, err := scanProvider(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("failed to iterate providers: %w", err))
	}

	return records, nil
}

// ListRevenues returns every non-null stored revenue.
func (r *ProviderRepository) ListRevenues(ctx context.Context) ([]decimal.Decimal, error) {
	rows, err := r.pool.Query(ctx, `SELECT revenue FROM scored_providers WHERE revenue IS NOT NULL`)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query revenues: %w", err))
	}
	defer rows.Close()

	revenues := make([]decimal.Decimal, 0)
	for rows.Next() {
		var v decimal.Decimal
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan revenue: %w", err)
		}
		revenues = append(revenues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("failed to iterate revenues: %w", err))
	}
	return revenues, nil
}

// providerRow holds the scanned columns of one provider.
type providerRow struct {
	ingestedAt          time.Time
	capacity            *int
	registrationAgeDays *int
	chargebackCount     *int
	claimVolume         *int
	geoMismatch         *bool
	revenue             decimal.NullDecimal
	reasons             []string
	providerID          string
	licenseHolder       string
	licenseType         string
	address             string
	city                string
	ein                 string
	irsStatus           string
	verdict             string
	riskScore           int
}

func scanProvider(row pgx.Row) (*model.ScoredProviderRecord, error) {
	var pr providerRow
	err := row.Scan(
		&pr.providerID, &pr.licenseHolder, &pr.licenseType, &pr.address, &pr.city,
		&pr.ein, &pr.irsStatus, &pr.capacity, &pr.revenue, &pr.registrationAgeDays,
		&pr.chargebackCount, &pr.claimVolume, &pr.geoMismatch,
		&pr.riskScore, &pr.verdict, &pr.ingestedAt,
		&pr.reasons,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan provider: %w", err)
	}
	return reconstructProvider(pr)
}

// reconstructProvider maps raw database values back into the aggregate.
func reconstructProvider(pr providerRow) (*model.ScoredProviderRecord, error) {
	verdict, err := valueobject.VerdictFromString(pr.verdict)
	if err != nil {
		return nil, fmt.Errorf("invalid stored verdict for provider %s: %w", pr.providerID, err)
	}

	raw := model.RawProviderRecord{
		ProviderID:          pr.providerID,
		LicenseHolder:       pr.licenseHolder,
		LicenseType:         pr.licenseType,
		Address:             pr.address,
		City:                pr.city,
		EIN:                 pr.ein,
		IRSStatus:           pr.irsStatus,
		Capacity:            pr.capacity,
		RegistrationAgeDays: pr.registrationAgeDays,
		ChargebackCount:     pr.chargebackCount,
		ClaimVolume:         pr.claimVolume,
		GeoMismatch:         pr.geoMismatch,
	}
	if pr.revenue.Valid {
		raw.Revenue = model.DecimalPtr(pr.revenue.Decimal)
	}

	return model.Reconstruct(raw, model.RiskAssessment{
		RiskScore: pr.riskScore,
		Verdict:   verdict,
		Reasons:   pr.reasons,
	}, pr.ingestedAt.UTC()), nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func outboxEntries(evts []events.DomainEvent) ([]events.OutboxEntry, error) {
	entries := make([]events.OutboxEntry, 0, len(evts))
	for _, evt := range evts {
		e, err := events.NewOutboxEntry(evt)
		if err != nil {
			return nil, fmt.Errorf("failed to build outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// classify marks connectivity failures as model.ErrStorageUnavailable so
// callers can tell an outage from a rejected statement.
func classify(err error) error {
	if err == nil || errors.Is(err, model.ErrStorageUnavailable) {
		return err
	}
	if pgpkg.IsConnectivityError(err) {
		return fmt.Errorf("%w: %w", model.ErrStorageUnavailable, err)
	}
	return err
}
