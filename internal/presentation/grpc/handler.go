package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/gnavadev/fraud-watch/internal/application/dto"
	"github.com/gnavadev/fraud-watch/internal/application/usecase"
	"github.com/gnavadev/fraud-watch/internal/domain/model"
)

// MaxRecordsPerRequest bounds one IngestProviders call.
const MaxRecordsPerRequest = 10_000

// Trailer keys carrying the partial report of an aborted IngestProviders call.
const (
	TrailerIngestProcessed = "ingest-processed"
	TrailerIngestUpserted  = "ingest-upserted"
	TrailerIngestRejected  = "ingest-rejected"
)

// Compile-time assertion that ProviderServiceHandler implements ProviderServiceServer.
var _ ProviderServiceServer = (*ProviderServiceHandler)(nil)

// ProviderServiceHandler implements the gRPC ProviderServiceServer interface.
type ProviderServiceHandler struct {
	UnimplementedProviderServiceServer
	ingest        *usecase.IngestProviders
	enrich        *usecase.EnrichProviders
	getProvider   *usecase.GetProvider
	listProviders *usecase.ListProviders
	logger        *slog.Logger
}

// NewProviderServiceHandler creates a new gRPC handler. enrich may be nil, in
// which case requests asking for enrichment are served without it.
func NewProviderServiceHandler(
	ingest *usecase.IngestProviders,
	enrich *usecase.EnrichProviders,
	getProvider *usecase.GetProvider,
	listProviders *usecase.ListProviders,
	logger *slog.Logger,
) *ProviderServiceHandler {
	return &ProviderServiceHandler{
		ingest:        ingest,
		enrich:        enrich,
		getProvider:   getProvider,
		listProviders: listProviders,
		logger:        logger,
	}
}

// IngestProvidersRequest carries one batch of raw provider records.
type IngestProvidersRequest struct {
	Records []model.RawProviderRecord `json:"records"`
	Enrich  bool                      `json:"enrich"`
}

// IngestProvidersResponse carries the batch's ingestion report.
type IngestProvidersResponse struct {
	Report dto.IngestionReport `json:"report"`
}

// GetProviderRequest identifies one provider.
type GetProviderRequest struct {
	ProviderID string `json:"provider_id"`
}

// GetProviderResponse carries one scored provider.
type GetProviderResponse struct {
	Provider dto.ProviderResponse `json:"provider"`
}

// ListProvidersRequest has no fields; the listing is always risk ordered.
type ListProvidersRequest struct{}

// ListProvidersResponse carries every scored provider, highest risk first.
type ListProvidersResponse struct {
	Providers []dto.ProviderResponse `json:"providers"`
}

// IngestProviders scores and stores a batch. Per-record failures come back in
// the report. A storage outage fails the call with Unavailable, and the counts
// of what was committed before the abort are sent as trailer metadata.
func (h *ProviderServiceHandler) IngestProviders(ctx context.Context, req *IngestProvidersRequest) (*IngestProvidersResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if len(req.Records) > MaxRecordsPerRequest {
		return nil, status.Errorf(codes.InvalidArgument, "at most %d records per request, got %d", MaxRecordsPerRequest, len(req.Records))
	}

	records := req.Records
	if req.Enrich && h.enrich != nil {
		records = h.enrich.Execute(ctx, records)
	}

	report, err := h.ingest.Execute(ctx, records)
	if err != nil {
		h.logger.Error("ingestion failed",
			slog.Int("records", len(records)),
			slog.Int("processed", report.Processed),
			slog.String("error", err.Error()),
		)
		h.setReportTrailer(ctx, report)
		return nil, toStatus(err)
	}

	return &IngestProvidersResponse{Report: report}, nil
}

func (h *ProviderServiceHandler) setReportTrailer(ctx context.Context, report dto.IngestionReport) {
	md := metadata.Pairs(
		TrailerIngestProcessed, strconv.Itoa(report.Processed),
		TrailerIngestUpserted, strconv.Itoa(report.Upserted),
		TrailerIngestRejected, strconv.Itoa(report.RejectedCount()),
	)
	if err := grpclib.SetTrailer(ctx, md); err != nil {
		h.logger.Warn("failed to set ingestion trailer", slog.String("error", err.Error()))
	}
}

// GetProvider returns one scored provider.
func (h *ProviderServiceHandler) GetProvider(ctx context.Context, req *GetProviderRequest) (*GetProviderResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	result, err := h.getProvider.Execute(ctx, dto.GetProviderRequest{ProviderID: req.ProviderID})
	if err != nil {
		return nil, toStatus(err)
	}
	return &GetProviderResponse{Provider: result}, nil
}

// ListProviders returns every scored provider, highest risk first.
func (h *ProviderServiceHandler) ListProviders(ctx context.Context, _ *ListProvidersRequest) (*ListProvidersResponse, error) {
	result, err := h.listProviders.Execute(ctx)
	if err != nil {
		h.logger.Error("failed to list providers", slog.String("error", err.Error()))
		return nil, toStatus(err)
	}
	return &ListProvidersResponse{Providers: result.Providers}, nil
}

// toStatus maps domain errors to gRPC status codes. Unclassified errors are
// reported as Internal without their detail.
func toStatus(err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidRecord):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, model.ErrProviderNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request cancelled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, model.ErrStorageUnavailable):
		return status.Error(codes.Unavailable, "storage unavailable")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
