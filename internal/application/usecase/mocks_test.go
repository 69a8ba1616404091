package usecase_test

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gnavadev/fraud-watch/internal/domain/model"
	"github.com/gnavadev/fraud-watch/internal/domain/port"
)

// --- Mock implementations ---

type mockProviderRepository struct {
	mu         sync.Mutex
	stored     map[string]*model.ScoredProviderRecord
	upserts    []string
	upsertFunc func(ctx context.Context, record *model.ScoredProviderRecord) error
	findFunc   func(ctx context.Context, providerID string) (*model.ScoredProviderRecord, error)
	listFunc   func(ctx context.Context) ([]*model.ScoredProviderRecord, error)
	revenues   []decimal.Decimal
	revenueErr error
}

func newMockProviderRepository() *mockProviderRepository {
	return &mockProviderRepository{stored: make(map[string]*model.ScoredProviderRecord)}
}

func (m *mockProviderRepository) Upsert(ctx context.Context, record *model.ScoredProviderRecord) error {
	if m.upsertFunc != nil {
		if err := m.upsertFunc(ctx, record); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored[record.ProviderID()] = record
	m.upserts = append(m.upserts, record.ProviderID())
	return nil
}

func (m *mockProviderRepository) FindByProviderID(ctx context.Context, providerID string) (*model.ScoredProviderRecord, error) {
	if m.findFunc != nil {
		return m.findFunc(ctx, providerID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.stored[providerID]
	if !ok {
		return nil, model.ErrProviderNotFound
	}
	return r, nil
}

func (m *mockProviderRepository) ListByRisk(ctx context.Context) ([]*model.ScoredProviderRecord, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx)
	}
	return nil, nil
}

func (m *mockProviderRepository) ListRevenues(_ context.Context) ([]decimal.Decimal, error) {
	return m.revenues, m.revenueErr
}

type mockNonprofitLookup struct {
	calls   []string
	results map[string]port.NonprofitMatch
	err     error
}

func (m *mockNonprofitLookup) Lookup(_ context.Context, name string) (port.NonprofitMatch, error) {
	m.calls = append(m.calls, name)
	if m.err != nil {
		return port.NonprofitMatch{}, m.err
	}
	return m.results[name], nil
}

type recordingMetrics struct {
	mu         sync.Mutex
	batches    int
	processed  int
	upserted   int
	rejections map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{rejections: make(map[string]int)}
}

func (m *recordingMetrics) RecordBatch(_ context.Context, processed, upserted int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.batches++
	m.processed += processed
	m.upserted += upserted
}

func (m *recordingMetrics) RecordRejection(_ context.Context, reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejections[reason]++
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }
