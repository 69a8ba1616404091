package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the ingestion instruments.
const MeterName = "github.com/gnavadev/fraud-watch/ingest"

// IngestionMetrics implements port.IngestionMetrics with OpenTelemetry
// instruments, exported through whichever MeterProvider supplied the meter.
type IngestionMetrics struct {
	processed metric.Int64Counter
	upserted  metric.Int64Counter
	rejected  metric.Int64Counter
	batches   metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewIngestionMetrics registers the ingestion instruments on meter.
func NewIngestionMetrics(meter metric.Meter) (*IngestionMetrics, error) {
	m := &IngestionMetrics{}
	var err error

	if m.processed, err = meter.Int64Counter("fraudwatch.ingest.records.processed",
		metric.WithDescription("Provider records fully handled, upserted or rejected."),
	); err != nil {
		return nil, fmt.Errorf("telemetry: processed counter: %w", err)
	}
	if m.upserted, err = meter.Int64Counter("fraudwatch.ingest.records.upserted",
		metric.WithDescription("Provider records scored and written."),
	); err != nil {
		return nil, fmt.Errorf("telemetry: upserted counter: %w", err)
	}
	if m.rejected, err = meter.Int64Counter("fraudwatch.ingest.records.rejected",
		metric.WithDescription("Provider records rejected, by reason."),
	); err != nil {
		return nil, fmt.Errorf("telemetry: rejected counter: %w", err)
	}
	if m.batches, err = meter.Int64Counter("fraudwatch.ingest.batches",
		metric.WithDescription("Ingestion batches executed."),
	); err != nil {
		return nil, fmt.Errorf("telemetry: batches counter: %w", err)
	}
	if m.duration, err = meter.Float64Histogram("fraudwatch.ingest.batch.duration",
		metric.WithDescription("Wall time of one ingestion batch."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("telemetry: duration histogram: %w", err)
	}

	return m, nil
}

// RecordBatch adds one batch's totals.
func (m *IngestionMetrics) RecordBatch(ctx context.Context, processed, upserted int, duration time.Duration) {
	m.batches.Add(ctx, 1)
	m.processed.Add(ctx, int64(processed))
	m.upserted.Add(ctx, int64(upserted))
	m.duration.Record(ctx, duration.Seconds())
}

// RecordRejection counts one rejected record.
func (m *IngestionMetrics) RecordRejection(ctx context.Context, reason string) {
	m.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
