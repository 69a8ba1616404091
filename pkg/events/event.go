package events

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is the interface all domain events must implement.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() string
	AggregateType() string
	OccurredAt() time.Time
}

// BaseEvent provides a default implementation of DomainEvent. It is meant to
// be embedded in concrete event structs so the metadata is serialized with
// the payload.
type BaseEvent struct {
	OccurredTime  time.Time `json:"occurred_at"`
	Type          string    `json:"event_type"`
	Aggregate     string    `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
	ID            uuid.UUID `json:"event_id"`
}

// NewBaseEvent creates a new BaseEvent with a generated UUID and the given time.
func NewBaseEvent(eventType, aggregateID, aggregateType string, occurredAt time.Time) BaseEvent {
	return BaseEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Aggregate:     aggregateID,
		AggregateKind: aggregateType,
		OccurredTime:  occurredAt.UTC(),
	}
}

// EventID returns the unique identifier for this event.
func (e BaseEvent) EventID() uuid.UUID {
	return e.ID
}

// EventType returns the type name of this event.
func (e BaseEvent) EventType() string {
	return e.Type
}

// AggregateID returns the identifier of the aggregate that produced this event.
func (e BaseEvent) AggregateID() string {
	return e.Aggregate
}

// AggregateType returns the type name of the aggregate that produced this event.
func (e BaseEvent) AggregateType() string {
	return e.AggregateKind
}

// OccurredAt returns the time at which this event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.OccurredTime
}
