package repositories

import (
	"context"

	"meatmarket-api/internal/models"

	"github.com/google/uuid"
)

// NormalizedCutRepositoryInterface is the taxonomy store contract
type NormalizedCutRepositoryInterface interface {
	Create(ctx context.Context, cut *models.NormalizedCut) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.NormalizedCut, error)
	GetByNormalizedName(ctx context.Context, category, normalizedName string) (*models.NormalizedCut, error)
	ListCandidates(ctx context.Context, category string) ([]*models.NormalizedCut, error)
	List(ctx context.Context, category string, offset, limit int) ([]*models.NormalizedCut, int64, error)
	Update(ctx context.Context, cut *models.NormalizedCut) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	CategoryStats(ctx context.Context) ([]models.CategoryStats, error)
}

// CutVariationRepositoryInterface is the variation store contract
type CutVariationRepositoryInterface interface {
	Create(ctx context.Context, variation *models.CutVariation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.CutVariation, error)
	GetByNormalizedName(ctx context.Context, normalizedName string) (*models.CutVariation, error)
	ListByCut(ctx context.Context, cutID uuid.UUID, offset, limit int) ([]*models.CutVariation, int64, error)
	ListCandidates(ctx context.Context, category string) ([]*models.CutVariation, error)
	Update(ctx context.Context, variation *models.CutVariation) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByCut(ctx context.Context, cutID uuid.UUID) (int64, error)
}
