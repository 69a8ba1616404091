package kafka

import (
	"context"
	"fmt"
	"sync"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Message represents a Kafka message.
type Message struct {
	Time    time.Time
	Headers map[string]string
	Topic   string
	Key     []byte
	Value   []byte
}

// Producer wraps kafka-go writers, one per topic, for publishing messages.
type Producer struct {
	transport *kafkago.Transport
	writers   map[string]*kafkago.Writer
	brokers   []string
	mu        sync.Mutex
}

// NewProducer creates a new Producer with the given configuration.
func NewProducer(cfg Config) (*Producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	t, err := transport(cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{
		transport: t,
		writers:   make(map[string]*kafkago.Writer),
		brokers:   cfg.Brokers,
	}, nil
}

// Publish sends messages to the specified topic. Delivery is all-or-nothing
// from the caller's point of view: any failure is returned.
func (p *Producer) Publish(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}
	w := p.getOrCreateWriter(topic)

	if err := w.WriteMessages(ctx, toKafkaMessages(messages)...); err != nil {
		return fmt.Errorf("kafka publish to %s: %w", topic, err)
	}
	return nil
}

func toKafkaMessages(messages []Message) []kafkago.Message {
	out := make([]kafkago.Message, 0, len(messages))
	for _, msg := range messages {
		km := kafkago.Message{
			Key:   msg.Key,
			Value: msg.Value,
			Time:  msg.Time,
		}
		for k, v := range msg.Headers {
			km.Headers = append(km.Headers, kafkago.Header{
				Key:   k,
				Value: []byte(v),
			})
		}
		out = append(out, km)
	}
	return out
}

// Close closes all writers.
func (p *Producer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("closing writer for topic %s: %w", topic, err)
		}
	}
	p.writers = make(map[string]*kafkago.Writer)
	return firstErr
}

// getOrCreateWriter lazily creates a writer for a topic.
func (p *Producer) getOrCreateWriter(topic string) *kafkago.Writer {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}

	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(p.brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
		Transport:              p.transport,
	}
	p.writers[topic] = w
	return w
}
