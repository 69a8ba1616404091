package usecase

import (
	"context"
	"fmt"

	"github.com/gnavadev/fraud-watch/internal/application/dto"
	"github.com/gnavadev/fraud-watch/internal/domain/port"
	"github.com/gnavadev/fraud-watch/internal/domain/service"
)

// AnalyzeRevenue runs a Benford leading-digit analysis over stored revenues.
type AnalyzeRevenue struct {
	repo port.ProviderRepository
}

// NewAnalyzeRevenue creates a new AnalyzeRevenue use case.
func NewAnalyzeRevenue(repo port.ProviderRepository) *AnalyzeRevenue {
	return &AnalyzeRevenue{repo: repo}
}

// Execute returns the analysis. An empty Digits slice means no stored
// revenue had a leading digit.
func (uc *AnalyzeRevenue) Execute(ctx context.Context) (dto.BenfordResponse, error) {
	revenues, err := uc.repo.ListRevenues(ctx)
	if err != nil {
		return dto.BenfordResponse{}, fmt.Errorf("failed to list revenues: %w", err)
	}

	result, ok := service.AnalyzeBenford(revenues)
	if !ok {
		return dto.BenfordResponse{Digits: []dto.DigitResponse{}}, nil
	}
	return dto.FromBenford(result), nil
}
