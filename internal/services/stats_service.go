package services

import (
	"context"
	"fmt"

	"meatmarket-api/internal/models"
	"meatmarket-api/internal/repositories"
)

// StatsService aggregates taxonomy statistics per category
type StatsService struct {
	cutRepo repositories.NormalizedCutRepositoryInterface
	metrics MetricsRecorderInterface
}

// NewStatsService creates a new stats service
func NewStatsService(cutRepo repositories.NormalizedCutRepositoryInterface, metrics MetricsRecorderInterface) StatsServiceInterface {
	return &StatsService{
		cutRepo: cutRepo,
		metrics: metrics,
	}
}

// GetStats returns per-category counts plus overall totals. Categories with
// no cuts are omitted.
func (s *StatsService) GetStats(ctx context.Context) (*models.NormalizationStats, error) {
	categories, err := s.cutRepo.CategoryStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("stats aggregation failed: %w", err)
	}

	stats := &models.NormalizationStats{
		Categories: categories,
	}
	for _, category := range categories {
		stats.TotalCuts += category.CutCount
		stats.TotalVariations += category.VariationCount
		stats.TotalVerified += category.VerifiedCount
	}

	s.metrics.RecordGauge("normalized_cuts", float64(stats.TotalCuts), nil)
	s.metrics.RecordGauge("cut_variations", float64(stats.TotalVariations), nil)
	s.metrics.RecordGauge("verified_variations", float64(stats.TotalVerified), nil)

	return stats, nil
}
