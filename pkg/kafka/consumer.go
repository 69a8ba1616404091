package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
)

const (
	defaultRetryBackoff    = 500 * time.Millisecond
	defaultMaxRetryBackoff = 30 * time.Second
)

// Handler processes a consumed Kafka message. A returned error is retried
// with backoff; the offset is committed only once the handler succeeds.
type Handler func(ctx context.Context, msg Message) error

// messageReader is the slice of *kafkago.Reader the consumer uses.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads one topic as part of a consumer group and delivers every
// message to its handler at least once, in partition order.
type Consumer struct {
	reader     messageReader
	handler    Handler
	logger     *slog.Logger
	topic      string
	group      string
	backoff    time.Duration
	maxBackoff time.Duration
}

// NewConsumer creates a new Consumer for the given topic with the provided handler.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ConsumerGroup == "" {
		return nil, fmt.Errorf("kafka: consumer group is required")
	}
	d, err := dialer(cfg)
	if err != nil {
		return nil, err
	}

	readerCfg := kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10 * 1024 * 1024, // 10 MB
	}
	if d != nil {
		readerCfg.Dialer = d
	}

	return newConsumer(kafkago.NewReader(readerCfg), cfg, topic, handler, logger), nil
}

func newConsumer(reader messageReader, cfg Config, topic string, handler Handler, logger *slog.Logger) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = defaultRetryBackoff
	}
	maxBackoff := cfg.MaxRetryBackoff
	if maxBackoff <= 0 {
		maxBackoff = defaultMaxRetryBackoff
	}
	maxBackoff = max(maxBackoff, backoff)
	return &Consumer{
		reader:     reader,
		handler:    handler,
		logger:     logger,
		topic:      topic,
		group:      cfg.ConsumerGroup,
		backoff:    backoff,
		maxBackoff: maxBackoff,
	}
}

// Start begins consuming messages. Blocks until the context is canceled or
// fetching fails. A message whose handler has not succeeded when ctx is
// canceled stays uncommitted and is redelivered to the group later.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer starting", "topic", c.topic, "group", c.group)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping due to context cancellation")
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if !c.deliver(ctx, m) {
			c.logger.Info("consumer stopping with message unacknowledged",
				"partition", m.Partition,
				"offset", m.Offset,
			)
			return nil
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

// deliver runs the handler until it succeeds and reports false if ctx ends
// first.
func (c *Consumer) deliver(ctx context.Context, m kafkago.Message) bool {
	msg := fromKafkaMessage(m)
	attempt := 0

	err := backoff.RetryNotify(
		func() error {
			attempt++
			return c.handler(ctx, msg)
		},
		backoff.WithContext(c.newBackOff(), ctx),
		func(err error, wait time.Duration) {
			c.logger.Warn("handler error, retrying",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"attempt", attempt,
				"backoff", wait,
				"error", err,
			)
		},
	)
	return err == nil
}

// newBackOff doubles the wait from c.backoff up to c.maxBackoff and never
// gives up on its own.
func (c *Consumer) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.backoff
	b.MaxInterval = c.maxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

func fromKafkaMessage(m kafkago.Message) Message {
	msg := Message{
		Topic:   m.Topic,
		Key:     m.Key,
		Value:   m.Value,
		Time:    m.Time,
		Headers: make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}
