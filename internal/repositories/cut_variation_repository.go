package repositories

import (
	"context"
	"errors"

	"meatmarket-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrVariationNotFound      = errors.New("cut variation not found")
	ErrVariationAlreadyExists = errors.New("cut variation already exists")
)

// CutVariationRepository handles database operations for observed variations
type CutVariationRepository struct {
	db *gorm.DB
}

// NewCutVariationRepository creates a new variation repository
func NewCutVariationRepository(db *gorm.DB) CutVariationRepositoryInterface {
	return &CutVariationRepository{
		db: db,
	}
}

// Create inserts a new variation. The unique index on normalized_name turns
// concurrent duplicate creates into ErrVariationAlreadyExists.
func (r *CutVariationRepository) Create(ctx context.Context, variation *models.CutVariation) error {
	if variation == nil {
		return errors.New("variation cannot be nil")
	}

	if err := r.db.WithContext(ctx).Create(variation).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrVariationAlreadyExists
		}
		return wrapStoreError("failed to create cut variation", err)
	}

	return nil
}

// GetByID retrieves a variation by its ID
func (r *CutVariationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.CutVariation, error) {
	variation := &models.CutVariation{ID: id}
	if err := r.db.WithContext(ctx).Preload("NormalizedCut").First(variation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariationNotFound
		}
		return nil, wrapStoreError("failed to get variation by ID", err)
	}

	return variation, nil
}

// GetByNormalizedName retrieves a variation by the fold-normalized form of
// its original name, with its cut preloaded
func (r *CutVariationRepository) GetByNormalizedName(ctx context.Context, normalizedName string) (*models.CutVariation, error) {
	var variation models.CutVariation

	if err := r.db.WithContext(ctx).
		Preload("NormalizedCut").
		Where("normalized_name = ?", normalizedName).
		First(&variation).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVariationNotFound
		}
		return nil, wrapStoreError("failed to get variation by name", err)
	}

	return &variation, nil
}

// ListByCut returns variations pointing at one cut, with pagination
func (r *CutVariationRepository) ListByCut(ctx context.Context, cutID uuid.UUID, offset, limit int) ([]*models.CutVariation, int64, error) {
	var variations []*models.CutVariation
	var total int64

	baseQuery := r.db.WithContext(ctx).Model(&models.CutVariation{}).
		Where("normalized_cut_id = ?", cutID)

	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError("failed to count variations", err)
	}

	if err := baseQuery.Order("confidence_score DESC, created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&variations).Error; err != nil {
		return nil, 0, wrapStoreError("failed to list variations", err)
	}

	return variations, total, nil
}

// ListCandidates returns every variation (optionally restricted to cuts in
// one category) for fuzzy matching, cuts preloaded. Ordered by ID for
// deterministic scoring runs.
func (r *CutVariationRepository) ListCandidates(ctx context.Context, category string) ([]*models.CutVariation, error) {
	var variations []*models.CutVariation

	query := r.db.WithContext(ctx).Preload("NormalizedCut").Order("cut_variations.id ASC")
	if category != "" {
		query = query.Joins("INNER JOIN normalized_cuts ON normalized_cuts.id = cut_variations.normalized_cut_id AND normalized_cuts.deleted_at IS NULL").
			Where("normalized_cuts.category = ?", category)
	}

	if err := query.Find(&variations).Error; err != nil {
		return nil, wrapStoreError("failed to list variation candidates", err)
	}

	return variations, nil
}

// Update saves a full variation record
func (r *CutVariationRepository) Update(ctx context.Context, variation *models.CutVariation) error {
	if variation == nil {
		return errors.New("variation cannot be nil")
	}

	if err := r.db.WithContext(ctx).Save(variation).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrVariationAlreadyExists
		}
		return wrapStoreError("failed to update variation", err)
	}

	return nil
}

// UpdateFields updates specific fields of a variation
func (r *CutVariationRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.CutVariation{ID: id}).Updates(fields)
	if result.Error != nil {
		return wrapStoreError("failed to update variation fields", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVariationNotFound
	}

	return nil
}

// Delete removes a variation
func (r *CutVariationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CutVariation{ID: id})
	if result.Error != nil {
		return wrapStoreError("failed to delete variation", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrVariationNotFound
	}

	return nil
}

// CountByCut counts variations referencing one cut
func (r *CutVariationRepository) CountByCut(ctx context.Context, cutID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.CutVariation{}).
		Where("normalized_cut_id = ?", cutID).
		Count(&count).Error; err != nil {
		return 0, wrapStoreError("failed to count variations for cut", err)
	}

	return count, nil
}
