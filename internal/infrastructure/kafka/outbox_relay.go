package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gnavadev/fraud-watch/pkg/events"
	pkgkafka "github.com/gnavadev/fraud-watch/pkg/kafka"
)

// MessagePublisher is the subset of pkgkafka.Producer the relay needs.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// RelayConfig configures an OutboxRelay.
type RelayConfig struct {
	Topic        string
	PollInterval time.Duration
	BatchSize    int
}

// OutboxRelay drains committed outbox rows to Kafka. Delivery is at least
// once: a batch that was published but not marked is sent again on the next
// poll.
type OutboxRelay struct {
	outbox    events.OutboxRepository
	publisher MessagePublisher
	logger    *slog.Logger
	cfg       RelayConfig
}

// NewOutboxRelay creates a new relay.
func NewOutboxRelay(outbox events.OutboxRepository, publisher MessagePublisher, cfg RelayConfig, logger *slog.Logger) *OutboxRelay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &OutboxRelay{outbox: outbox, publisher: publisher, cfg: cfg, logger: logger}
}

// Run polls until ctx is cancelled. Poll failures are logged and retried on
// the next tick.
func (r *OutboxRelay) Run(ctx context.Context) error {
	r.logger.Info("outbox relay started",
		"topic", r.cfg.Topic,
		"poll_interval", r.cfg.PollInterval,
	)

	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := r.Drain(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("outbox relay poll failed", "error", err)
		}

		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Drain publishes unpublished entries batch by batch until the outbox is
// empty and returns how many were relayed.
func (r *OutboxRelay) Drain(ctx context.Context) (int, error) {
	relayed := 0
	for {
		n, err := r.relayBatch(ctx)
		relayed += n
		if err != nil || n < r.cfg.BatchSize {
			return relayed, err
		}
	}
}

func (r *OutboxRelay) relayBatch(ctx context.Context) (int, error) {
	entries, err := r.outbox.FetchUnpublished(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch outbox: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	messages := make([]pkgkafka.Message, 0, len(entries))
	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		messages = append(messages, toMessage(e))
		ids = append(ids, e.ID)
	}

	if err := r.publisher.Publish(ctx, r.cfg.Topic, messages...); err != nil {
		return 0, fmt.Errorf("failed to publish outbox batch to topic %s: %w", r.cfg.Topic, err)
	}
	if err := r.outbox.MarkPublished(ctx, ids); err != nil {
		return 0, fmt.Errorf("mark outbox published: %w", err)
	}

	r.logger.DebugContext(ctx, "outbox batch relayed",
		slog.String("topic", r.cfg.Topic),
		slog.Int("count", len(entries)),
	)
	return len(entries), nil
}

// toMessage keys each message by aggregate so events of one provider stay
// ordered within a partition.
func toMessage(e events.OutboxEntry) pkgkafka.Message {
	return pkgkafka.Message{
		Key:   []byte(e.AggregateID),
		Value: e.Payload,
		Time:  e.CreatedAt,
		Headers: map[string]string{
			"event_id":       e.ID.String(),
			"event_type":     e.EventType,
			"aggregate_type": e.AggregateType,
		},
	}
}
