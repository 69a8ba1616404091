package kafka_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnavadev/fraud-watch/internal/infrastructure/kafka"
	"github.com/gnavadev/fraud-watch/pkg/events"
	pkgkafka "github.com/gnavadev/fraud-watch/pkg/kafka"
)

type fakeOutbox struct {
	mu        sync.Mutex
	entries   []events.OutboxEntry
	published map[uuid.UUID]bool
	fetchErr  error
	markErr   error
}

func newFakeOutbox(n int) *fakeOutbox {
	o := &fakeOutbox{published: make(map[uuid.UUID]bool)}
	base := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		o.entries = append(o.entries, events.OutboxEntry{
			ID:            uuid.New(),
			AggregateID:   fmt.Sprintf("p-%d", i),
			AggregateType: "ScoredProvider",
			EventType:     "provider.scored",
			Payload:       []byte(fmt.Sprintf(`{"provider_id":"p-%d"}`, i)),
			CreatedAt:     base.Add(time.Duration(i) * time.Second),
		})
	}
	return o
}

func (o *fakeOutbox) FetchUnpublished(_ context.Context, batchSize int) ([]events.OutboxEntry, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.fetchErr != nil {
		return nil, o.fetchErr
	}
	var out []events.OutboxEntry
	for _, e := range o.entries {
		if !o.published[e.ID] && len(out) < batchSize {
			out = append(out, e)
		}
	}
	return out, nil
}

func (o *fakeOutbox) MarkPublished(_ context.Context, ids []uuid.UUID) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.markErr != nil {
		return o.markErr
	}
	for _, id := range ids {
		o.published[id] = true
	}
	return nil
}

func (o *fakeOutbox) unpublished() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.entries) - len(o.published)
}

type fakePublisher struct {
	mu       sync.Mutex
	topics   []string
	messages []pkgkafka.Message
	err      error
}

func (p *fakePublisher) Publish(_ context.Context, topic string, messages ...pkgkafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.messages = append(p.messages, messages...)
	return nil
}

func TestOutboxRelay_DrainInBatches(t *testing.T) {
	outbox := newFakeOutbox(5)
	pub := &fakePublisher{}
	relay := kafka.NewOutboxRelay(outbox, pub, kafka.RelayConfig{Topic: "provider.events", BatchSize: 2}, nil)

	n, err := relay.Drain(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, 0, outbox.unpublished())
	assert.Equal(t, []string{"provider.events", "provider.events", "provider.events"}, pub.topics)

	require.Len(t, pub.messages, 5)
	first := pub.messages[0]
	assert.Equal(t, []byte("p-0"), first.Key)
	assert.Equal(t, outbox.entries[0].Payload, first.Value)
	assert.Equal(t, "provider.scored", first.Headers["event_type"])
	assert.Equal(t, outbox.entries[0].ID.String(), first.Headers["event_id"])
	assert.Equal(t, outbox.entries[0].CreatedAt, first.Time)
}

func TestOutboxRelay_EmptyOutbox(t *testing.T) {
	pub := &fakePublisher{}
	relay := kafka.NewOutboxRelay(newFakeOutbox(0), pub, kafka.RelayConfig{Topic: "provider.events"}, nil)

	n, err := relay.Drain(context.Background())

	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, pub.topics)
}

func TestOutboxRelay_PublishFailureLeavesEntriesUnpublished(t *testing.T) {
	outbox := newFakeOutbox(3)
	pub := &fakePublisher{err: errors.New("broker unreachable")}
	relay := kafka.NewOutboxRelay(outbox, pub, kafka.RelayConfig{Topic: "provider.events"}, nil)

	n, err := relay.Drain(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unreachable")
	assert.Zero(t, n)
	assert.Equal(t, 3, outbox.unpublished())
}

func TestOutboxRelay_FetchAndMarkFailures(t *testing.T) {
	outbox := newFakeOutbox(1)
	outbox.fetchErr = errors.New("db down")
	relay := kafka.NewOutboxRelay(outbox, &fakePublisher{}, kafka.RelayConfig{Topic: "t"}, nil)

	_, err := relay.Drain(context.Background())
	assert.ErrorContains(t, err, "db down")

	outbox.fetchErr = nil
	outbox.markErr = errors.New("mark failed")
	pub := &fakePublisher{}
	relay = kafka.NewOutboxRelay(outbox, pub, kafka.RelayConfig{Topic: "t"}, nil)

	_, err = relay.Drain(context.Background())
	assert.ErrorContains(t, err, "mark failed")
	assert.Len(t, pub.messages, 1, "published before the mark failed")
	assert.Equal(t, 1, outbox.unpublished())
}

func TestOutboxRelay_RunStopsOnCancel(t *testing.T) {
	outbox := newFakeOutbox(4)
	pub := &fakePublisher{}
	relay := kafka.NewOutboxRelay(outbox, pub, kafka.RelayConfig{
		Topic:        "provider.events",
		PollInterval: 10 * time.Millisecond,
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool { return outbox.unpublished() == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop after cancellation")
	}
}
