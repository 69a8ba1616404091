package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OutboxEntry represents a domain event stored in the outbox table.
type OutboxEntry struct {
	CreatedAt     time.Time
	PublishedAt   *time.Time
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       []byte
	ID            uuid.UUID
}

// NewOutboxEntry creates an OutboxEntry from a DomainEvent.
// The payload is produced by JSON-marshalling the event itself.
func NewOutboxEntry(event DomainEvent) (OutboxEntry, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return OutboxEntry{}, fmt.Errorf("events: marshal %s: %w", event.EventType(), err)
	}
	return OutboxEntry{
		ID:            event.EventID(),
		AggregateID:   event.AggregateID(),
		AggregateType: event.AggregateType(),
		EventType:     event.EventType(),
		Payload:       payload,
		CreatedAt:     event.OccurredAt(),
	}, nil
}

// OutboxRepository is the port the relay uses to drain the outbox.
type OutboxRepository interface {
	FetchUnpublished(ctx context.Context, batchSize int) ([]OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}
