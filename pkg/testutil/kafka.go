package testutil

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"

	pkgkafka "github.com/gnavadev/fraud-watch/pkg/kafka"
)

// KafkaContainer wraps a single-node testcontainers Kafka broker.
type KafkaContainer struct {
	Container *kafka.KafkaContainer
	Brokers   []string
}

// NewKafkaContainer starts a Kafka broker for testing.
// The caller should defer container.Cleanup(t).
func NewKafkaContainer(ctx context.Context, t *testing.T) *KafkaContainer {
	t.Helper()

	kafkaContainer, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.6.1",
		kafka.WithClusterID("fraud-watch-test"),
	)
	if err != nil {
		t.Fatalf("failed to start kafka container: %v", err)
	}

	brokers, err := kafkaContainer.Brokers(ctx)
	if err != nil {
		t.Fatalf("failed to get kafka brokers: %v", err)
	}

	return &KafkaContainer{
		Container: kafkaContainer,
		Brokers:   brokers,
	}
}

// Config returns client settings for the container, joined to group.
func (kc *KafkaContainer) Config(group string) pkgkafka.Config {
	return pkgkafka.Config{
		ClientID:        "fraud-watch-test",
		ConsumerGroup:   group,
		Brokers:         kc.Brokers,
		RetryBackoff:    50 * time.Millisecond,
		MaxRetryBackoff: 200 * time.Millisecond,
	}
}

// CreateTopics creates single-partition topics so tests can read them in
// write order.
func (kc *KafkaContainer) CreateTopics(ctx context.Context, t *testing.T, topics ...string) {
	t.Helper()

	conn, err := kafkago.DialContext(ctx, "tcp", kc.Brokers[0])
	if err != nil {
		t.Fatalf("failed to dial kafka: %v", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		t.Fatalf("failed to find kafka controller: %v", err)
	}
	ctrl, err := kafkago.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		t.Fatalf("failed to dial kafka controller: %v", err)
	}
	defer ctrl.Close()

	configs := make([]kafkago.TopicConfig, 0, len(topics))
	for _, topic := range topics {
		configs = append(configs, kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	}
	if err := ctrl.CreateTopics(configs...); err != nil {
		t.Fatalf("failed to create topics %v: %v", topics, err)
	}
}

// ReadMessages reads n messages from partition 0 of topic, failing the test
// if they do not arrive within timeout.
func (kc *KafkaContainer) ReadMessages(t *testing.T, topic string, n int, timeout time.Duration) []kafkago.Message {
	t.Helper()

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   kc.Brokers,
		Topic:     topic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  1 << 20,
	})
	defer reader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	msgs := make([]kafkago.Message, 0, n)
	for len(msgs) < n {
		m, err := reader.ReadMessage(ctx)
		if err != nil {
			t.Fatalf("read %d of %d messages from %s: %v", len(msgs), n, topic, err)
		}
		msgs = append(msgs, m)
	}
	return msgs
}

// Cleanup terminates the container.
func (kc *KafkaContainer) Cleanup(t *testing.T) {
	t.Helper()

	if kc.Container != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := kc.Container.Terminate(ctx); err != nil {
			t.Logf("warning: failed to terminate kafka container: %v", err)
		}
	}
}
