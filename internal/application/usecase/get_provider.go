package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/gnavadev/fraud-watch/internal/application/dto"
	"github.com/gnavadev/fraud-watch/internal/domain/model"
	"github.com/gnavadev/fraud-watch/internal/domain/port"
)

// GetProvider is the use case for retrieving one scored provider.
type GetProvider struct {
	repo port.ProviderRepository
}

// NewGetProvider creates a new GetProvider use case.
func NewGetProvider(repo port.ProviderRepository) *GetProvider {
	return &GetProvider{repo: repo}
}

// Execute retrieves a scored provider by provider ID.
func (uc *GetProvider) Execute(ctx context.Context, req dto.GetProviderRequest) (dto.ProviderResponse, error) {
	id := strings.TrimSpace(req.ProviderID)
	if id == "" {
		return dto.ProviderResponse{}, fmt.Errorf("%w: provider ID is required", model.ErrInvalidRecord)
	}

	provider, err := uc.repo.FindByProviderID(ctx, id)
	if err != nil {
		return dto.ProviderResponse{}, fmt.Errorf("failed to find provider: %w", err)
	}

	return dto.FromModel(provider), nil
}
