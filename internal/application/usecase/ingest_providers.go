package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/gnavadev/fraud-watch/internal/application/dto"
	"github.com/gnavadev/fraud-watch/internal/domain/model"
	"github.com/gnavadev/fraud-watch/internal/domain/port"
	"github.com/gnavadev/fraud-watch/internal/domain/service"
)

const tracerName = "github.com/gnavadev/fraud-watch/internal/application/usecase"

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

type noopMetrics struct{}

func (noopMetrics) RecordBatch(context.Context, int, int, time.Duration) {}
func (noopMetrics) RecordRejection(context.Context, string)              {}

// IngestOption configures an IngestProviders use case.
type IngestOption func(*IngestProviders)

// WithWorkers evaluates records on up to n goroutines. Writes stay serialized
// in input order regardless of n.
func WithWorkers(n int) IngestOption {
	return func(uc *IngestProviders) {
		if n > 0 {
			uc.workers = n
		}
	}
}

// WithClock overrides the source of IngestedAt timestamps.
func WithClock(c port.Clock) IngestOption {
	return func(uc *IngestProviders) {
		if c != nil {
			uc.clock = c
		}
	}
}

// WithMetrics records batch and rejection counters on m.
func WithMetrics(m port.IngestionMetrics) IngestOption {
	return func(uc *IngestProviders) {
		if m != nil {
			uc.metrics = m
		}
	}
}

// WithTracer overrides the tracer used for batch spans.
func WithTracer(t trace.Tracer) IngestOption {
	return func(uc *IngestProviders) {
		if t != nil {
			uc.tracer = t
		}
	}
}

// IngestProviders is the use case that scores a batch of raw provider records
// and upserts each one by provider ID.
type IngestProviders struct {
	repo      port.ProviderRepository
	evaluator service.Evaluator
	metrics   port.IngestionMetrics
	clock     port.Clock
	tracer    trace.Tracer
	logger    *slog.Logger
	workers   int
}

// NewIngestProviders creates a new IngestProviders use case.
func NewIngestProviders(
	repo port.ProviderRepository,
	evaluator service.Evaluator,
	logger *slog.Logger,
	opts ...IngestOption,
) *IngestProviders {
	if logger == nil {
		logger = slog.Default()
	}
	uc := &IngestProviders{
		repo:      repo,
		evaluator: evaluator,
		metrics:   noopMetrics{},
		clock:     systemClock{},
		tracer:    otel.Tracer(tracerName),
		logger:    logger,
		workers:   1,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

type evaluation struct {
	err        error
	assessment model.RiskAssessment
}

// Execute ingests records in input order. Per-record failures are collected in
// the report and never stop the batch. A storage outage stops the remaining
// writes; the report of what completed is returned together with an error
// wrapping model.ErrStorageUnavailable.
func (uc *IngestProviders) Execute(ctx context.Context, records []model.RawProviderRecord) (dto.IngestionReport, error) {
	ctx, span := uc.tracer.Start(ctx, "IngestProviders.Execute",
		trace.WithAttributes(attribute.Int("ingest.batch_size", len(records))))
	defer span.End()

	started := time.Now()
	report := dto.IngestionReport{Rejected: make([]dto.Rejection, 0)}

	evaluations := uc.evaluateAll(ctx, records)

	var batchErr error
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			batchErr = fmt.Errorf("%w: %w", model.ErrStorageUnavailable, err)
			break
		}

		ev := evaluations[i]
		if ev.err != nil {
			uc.reject(ctx, &report, i, rec.ProviderID, ev.err)
			continue
		}

		scored, err := model.NewScoredProviderRecord(rec, ev.assessment, uc.clock.Now())
		if err != nil {
			uc.reject(ctx, &report, i, rec.ProviderID, err)
			continue
		}

		if err := uc.repo.Upsert(ctx, scored); err != nil {
			if errors.Is(err, model.ErrStorageUnavailable) || ctx.Err() != nil {
				batchErr = fmt.Errorf("ingest record %d (%s): %w", i, rec.ProviderID, asStorageUnavailable(err))
				break
			}
			uc.reject(ctx, &report, i, rec.ProviderID, err)
			continue
		}

		report.Processed++
		report.Upserted++
		uc.logger.Debug("provider ingested",
			"provider_id", scored.ProviderID(),
			"risk_score", scored.RiskScore(),
			"verdict", scored.Verdict().String(),
		)
	}

	uc.metrics.RecordBatch(ctx, report.Processed, report.Upserted, time.Since(started))
	span.SetAttributes(
		attribute.Int("ingest.processed", report.Processed),
		attribute.Int("ingest.upserted", report.Upserted),
		attribute.Int("ingest.rejected", len(report.Rejected)),
	)

	if batchErr != nil {
		report.Aborted = true
		span.RecordError(batchErr)
		span.SetStatus(codes.Error, "ingestion aborted")
		uc.logger.Error("ingestion aborted",
			"processed", report.Processed,
			"upserted", report.Upserted,
			"remaining", len(records)-report.Processed,
			"error", batchErr,
		)
		return report, batchErr
	}

	uc.logger.Info("ingestion batch complete",
		"processed", report.Processed,
		"upserted", report.Upserted,
		"rejected", len(report.Rejected),
	)
	return report, nil
}

// evaluateAll scores every record. The evaluator is pure, so records are
// scored concurrently when more than one worker is configured.
func (uc *IngestProviders) evaluateAll(ctx context.Context, records []model.RawProviderRecord) []evaluation {
	out := make([]evaluation, len(records))

	if uc.workers <= 1 || len(records) < 2 {
		for i, rec := range records {
			out[i].assessment, out[i].err = uc.evaluator.Evaluate(rec)
		}
		return out
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i := range records {
		g.Go(func() error {
			out[i].assessment, out[i].err = uc.evaluator.Evaluate(records[i])
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (uc *IngestProviders) reject(ctx context.Context, report *dto.IngestionReport, index int, providerID string, err error) {
	reason := rejectionReason(err)
	report.Processed++
	report.Rejected = append(report.Rejected, dto.Rejection{
		Index:      index,
		ProviderID: providerID,
		Reason:     reason,
		Detail:     err.Error(),
	})
	uc.metrics.RecordRejection(ctx, reason)
	uc.logger.Warn("provider record rejected",
		"index", index,
		"provider_id", providerID,
		"reason", reason,
		"error", err,
	)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, model.ErrInvalidRecord):
		return dto.ReasonInvalidRecord
	case errors.Is(err, model.ErrRuleEvaluation):
		return dto.ReasonRuleEvaluationError
	default:
		return dto.ReasonWriteFailed
	}
}

func asStorageUnavailable(err error) error {
	if errors.Is(err, model.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrStorageUnavailable, err)
}
