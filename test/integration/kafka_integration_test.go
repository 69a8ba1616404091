//go:build integration

package integration

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnavadev/fraud-watch/internal/application/usecase"
	"github.com/gnavadev/fraud-watch/internal/domain/event"
	"github.com/gnavadev/fraud-watch/internal/domain/model"
	"github.com/gnavadev/fraud-watch/internal/domain/service"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/kafka"
	"github.com/gnavadev/fraud-watch/internal/infrastructure/postgres"
	"github.com/gnavadev/fraud-watch/internal/presentation/consumer"
	pkgkafka "github.com/gnavadev/fraud-watch/pkg/kafka"
	"github.com/gnavadev/fraud-watch/pkg/testutil"
)

const (
	eventsTopic = "provider.events"
	rawTopic    = "provider.raw"
)

func setupKafka(t *testing.T) *testutil.KafkaContainer {
	t.Helper()
	ctx := context.Background()

	kc := testutil.NewKafkaContainer(ctx, t)
	t.Cleanup(func() { kc.Cleanup(t) })

	kc.CreateTopics(ctx, t, eventsTopic, rawTopic)
	return kc
}

func TestOutboxRelay_PublishesToKafka(t *testing.T) {
	pool := setupTestDB(t)
	kc := setupKafka(t)
	ctx := context.Background()

	repo := postgres.NewProviderRepository(pool)
	outbox := postgres.NewOutboxRepository(pool)

	high := model.RawProviderRecord{
		ProviderID:    testutil.TestProviderID2,
		LicenseHolder: "Shell Holdings Inc",
		Revenue:       model.DecimalPtr(decimal.NewFromInt(650_000)),
		Capacity:      model.IntPtr(2),
	}
	require.NoError(t, repo.Upsert(ctx, newScored(t, high, testutil.TestIngestedAt)))

	producer, err := pkgkafka.NewProducer(kc.Config(""))
	require.NoError(t, err)
	defer producer.Close()

	relay := kafka.NewOutboxRelay(outbox, producer, kafka.RelayConfig{Topic: eventsTopic}, slog.Default())

	relayed, err := relay.Drain(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, relayed)

	msgs := kc.ReadMessages(t, eventsTopic, 2, 30*time.Second)
	types := make([]string, 0, len(msgs))
	for _, m := range msgs {
		assert.Equal(t, testutil.TestProviderID2, string(m.Key))
		assert.Contains(t, string(m.Value), testutil.TestProviderID2)
		for _, h := range m.Headers {
			if h.Key == "event_type" {
				types = append(types, string(h.Value))
			}
		}
	}
	assert.ElementsMatch(t, []string{event.EventTypeProviderScored, event.EventTypeHighRiskDetected}, types)

	// Everything was marked, so a second drain publishes nothing.
	relayed, err = relay.Drain(ctx)
	require.NoError(t, err)
	assert.Zero(t, relayed)
}

func TestFeedConsumer_IngestsRawTopic(t *testing.T) {
	pool := setupTestDB(t)
	kc := setupKafka(t)

	repo := postgres.NewProviderRepository(pool)
	ingest := usecase.NewIngestProviders(repo, service.NewRiskEvaluator(), slog.Default(),
		usecase.WithClock(fixedClock{t: testutil.TestIngestedAt}),
	)

	producer, err := pkgkafka.NewProducer(kc.Config(""))
	require.NoError(t, err)
	defer producer.Close()

	batch := `[
		{"provider_id": "` + testutil.TestProviderID1 + `", "city": "Minneapolis", "capacity": 45},
		{"provider_id": "` + testutil.TestProviderID2 + `", "license_holder": "Shell Holdings Inc", "capacity": 2, "revenue": "650000", "chargeback_count": 5},
		{"license_holder": "Missing Number Daycare"}
	]`
	require.NoError(t, producer.Publish(context.Background(), rawTopic,
		pkgkafka.Message{Key: []byte("licensing"), Value: []byte("not json")},
		pkgkafka.Message{Key: []byte("licensing"), Value: []byte(batch)},
	))

	feedConsumer, err := pkgkafka.NewConsumer(kc.Config("fraud-watch-it"), rawTopic,
		consumer.NewFeedHandler(ingest, nil, slog.Default()).Handle, slog.Default())
	require.NoError(t, err)
	defer feedConsumer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- feedConsumer.Start(ctx) }()

	require.Eventually(t, func() bool {
		_, err := repo.FindByProviderID(context.Background(), testutil.TestProviderID2)
		return err == nil
	}, 60*time.Second, 250*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	shell, err := repo.FindByProviderID(context.Background(), testutil.TestProviderID2)
	require.NoError(t, err)
	// chargeback_count_high 25 + revenue_capacity_anomaly 40 + excessive_per_capita_revenue 30
	assert.Equal(t, 95, shell.RiskScore())

	_, err = repo.FindByProviderID(context.Background(), testutil.TestProviderID1)
	require.NoError(t, err)

	all, err := repo.ListByRisk(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
