package usecase

import (
	"context"
	"fmt"

	"github.com/gnavadev/fraud-watch/internal/application/dto"
	"github.com/gnavadev/fraud-watch/internal/domain/port"
)

// ListProviders is the use case for the risk-ordered provider listing.
type ListProviders struct {
	repo port.ProviderRepository
}

// NewListProviders creates a new ListProviders use case.
func NewListProviders(repo port.ProviderRepository) *ListProviders {
	return &ListProviders{repo: repo}
}

// Execute returns every stored provider, highest risk first.
func (uc *ListProviders) Execute(ctx context.Context) (dto.ListProvidersResponse, error) {
	providers, err := uc.repo.ListByRisk(ctx)
	if err != nil {
		return dto.ListProvidersResponse{}, fmt.Errorf("failed to list providers: %w", err)
	}

	resp := dto.ListProvidersResponse{Providers: make([]dto.ProviderResponse, 0, len(providers))}
	for _, p := range providers {
		resp.Providers = append(resp.Providers, dto.FromModel(p))
	}
	return resp, nil
}
