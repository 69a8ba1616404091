package consumer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gnavadev/fraud-watch/internal/application/dto"
	"github.com/gnavadev/fraud-watch/internal/domain/model"
	pkgkafka "github.com/gnavadev/fraud-watch/pkg/kafka"
)

// Ingester scores and stores a batch of raw records.
type Ingester interface {
	Execute(ctx context.Context, records []model.RawProviderRecord) (dto.IngestionReport, error)
}

// Enricher attaches registry data to raw records.
type Enricher interface {
	Execute(ctx context.Context, records []model.RawProviderRecord) []model.RawProviderRecord
}

// FeedHandler turns messages of the raw provider topic into ingestion
// batches. A message holds one JSON record or a JSON array of records.
type FeedHandler struct {
	ingest Ingester
	enrich Enricher
	logger *slog.Logger
}

// NewFeedHandler creates a feed handler. enrich may be nil.
func NewFeedHandler(ingest Ingester, enrich Enricher, logger *slog.Logger) *FeedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedHandler{ingest: ingest, enrich: enrich, logger: logger}
}

// Handle processes one message. Undecodable messages are logged and dropped
// so they cannot block the partition. Only a storage outage is returned, which
// leaves the message's offset uncommitted.
func (h *FeedHandler) Handle(ctx context.Context, msg pkgkafka.Message) error {
	records, err := decodeRecords(msg.Value)
	if err != nil {
		h.logger.Warn("dropping undecodable feed message",
			"topic", msg.Topic,
			"key", string(msg.Key),
			"error", err,
		)
		return nil
	}
	if len(records) == 0 {
		return nil
	}

	if h.enrich != nil {
		records = h.enrich.Execute(ctx, records)
	}

	report, err := h.ingest.Execute(ctx, records)
	if err != nil {
		if errors.Is(err, model.ErrStorageUnavailable) {
			return fmt.Errorf("ingest feed message: %w", err)
		}
		h.logger.Error("feed message ingestion failed", "topic", msg.Topic, "error", err)
		return nil
	}

	for _, r := range report.Rejected {
		h.logger.Warn("feed record rejected",
			"topic", msg.Topic,
			"provider_id", r.ProviderID,
			"reason", r.Reason,
		)
	}
	return nil
}

func decodeRecords(value []byte) ([]model.RawProviderRecord, error) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return nil, errors.New("empty message")
	}

	if value[0] == '[' {
		var records []model.RawProviderRecord
		if err := json.Unmarshal(value, &records); err != nil {
			return nil, fmt.Errorf("decode record array: %w", err)
		}
		return records, nil
	}

	var record model.RawProviderRecord
	if err := json.Unmarshal(value, &record); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return []model.RawProviderRecord{record}, nil
}
