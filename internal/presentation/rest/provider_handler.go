package rest

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gnavadev/fraud-watch/internal/application/dto"
	"github.com/gnavadev/fraud-watch/internal/application/usecase"
	"github.com/gnavadev/fraud-watch/internal/domain/model"
)

// ProviderHandler serves the read side of the scored provider store.
type ProviderHandler struct {
	getProvider    *usecase.GetProvider
	listProviders  *usecase.ListProviders
	analyzeRevenue *usecase.AnalyzeRevenue
	logger         *slog.Logger
}

// NewProviderHandler creates a new provider handler.
func NewProviderHandler(
	getProvider *usecase.GetProvider,
	listProviders *usecase.ListProviders,
	analyzeRevenue *usecase.AnalyzeRevenue,
	logger *slog.Logger,
) *ProviderHandler {
	return &ProviderHandler{
		getProvider:    getProvider,
		listProviders:  listProviders,
		analyzeRevenue: analyzeRevenue,
		logger:         logger,
	}
}

// RegisterRoutes registers provider endpoints on the provided ServeMux.
func (h *ProviderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /providers", h.List)
	mux.HandleFunc("GET /providers/{id}", h.Get)
	mux.HandleFunc("GET /analytics/benford", h.Benford)
}

// List returns every scored provider, highest risk first, as a JSON array.
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listProviders.Execute(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Providers)
}

// Get returns one scored provider or 404.
func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp, err := h.getProvider.Execute(r.Context(), dto.GetProviderRequest{ProviderID: r.PathValue("id")})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Benford returns the leading-digit analysis of stored revenues.
func (h *ProviderHandler) Benford(w http.ResponseWriter, r *http.Request) {
	resp, err := h.analyzeRevenue.Execute(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ProviderHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, model.ErrProviderNotFound):
		writeError(w, http.StatusNotFound, "provider not found")
	case errors.Is(err, model.ErrInvalidRecord):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrStorageUnavailable):
		h.logger.Error("storage unavailable", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		h.logger.Error("request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
