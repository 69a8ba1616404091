package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gnavadev/fraud-watch/pkg/events"
)

// OutboxRepository implements events.OutboxRepository using PostgreSQL.
type OutboxRepository struct {
	pool *pgxpool.Pool
}

// NewOutboxRepository creates a new PostgreSQL-backed outbox repository.
func NewOutboxRepository(pool *pgxpool.Pool) *OutboxRepository {
	return &OutboxRepository{pool: pool}
}

// FetchUnpublished returns up to batchSize unpublished entries, oldest first.
func (r *OutboxRepository) FetchUnpublished(ctx context.Context, batchSize int) ([]events.OutboxEntry, error) {
	const query = `
		SELECT id, aggregate_id, aggregate_type, event_type, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY created_at, id
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, batchSize)
	if err != nil {
		return nil, classify(fmt.Errorf("failed to query outbox: %w", err))
	}
	defer rows.Close()

	entries := make([]events.OutboxEntry, 0, batchSize)
	for rows.Next() {
		var e events.OutboxEntry
		if err := rows.Scan(&e.ID, &e.AggregateID, &e.AggregateType, &e.EventType, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outbox entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(fmt.Errorf("failed to iterate outbox: %w", err))
	}
	return entries, nil
}

// MarkPublished stamps the given entries as published.
func (r *OutboxRepository) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := r.pool.Exec(ctx,
		`UPDATE outbox SET published_at = now() WHERE id = ANY($1) AND published_at IS NULL`, ids,
	); err != nil {
		return classify(fmt.Errorf("failed to mark outbox entries published: %w", err))
	}
	return nil
}
