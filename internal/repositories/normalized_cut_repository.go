package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"meatmarket-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrCutNotFound      = errors.New("normalized cut not found")
	ErrCutAlreadyExists = errors.New("normalized cut already exists in this category")
	ErrCutReferenced    = errors.New("normalized cut is referenced by variations")
	ErrStoreTimeout     = errors.New("store call timed out")
)

// NormalizedCutRepository handles database operations for the cut taxonomy
type NormalizedCutRepository struct {
	db *gorm.DB
}

// NewNormalizedCutRepository creates a new taxonomy repository
func NewNormalizedCutRepository(db *gorm.DB) NormalizedCutRepositoryInterface {
	return &NormalizedCutRepository{
		db: db,
	}
}

// Create inserts a new canonical cut
func (r *NormalizedCutRepository) Create(ctx context.Context, cut *models.NormalizedCut) error {
	if cut == nil {
		return errors.New("cut cannot be nil")
	}

	if err := r.db.WithContext(ctx).Create(cut).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrCutAlreadyExists
		}
		return wrapStoreError("failed to create normalized cut", err)
	}

	return nil
}

// GetByID retrieves a cut by its ID
func (r *NormalizedCutRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.NormalizedCut, error) {
	cut := &models.NormalizedCut{ID: id}
	if err := r.db.WithContext(ctx).First(cut).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCutNotFound
		}
		return nil, wrapStoreError("failed to get normalized cut by ID", err)
	}

	return cut, nil
}

// GetByNormalizedName retrieves a cut by its fold-normalized canonical name.
// An empty category matches any category.
func (r *NormalizedCutRepository) GetByNormalizedName(ctx context.Context, category, normalizedName string) (*models.NormalizedCut, error) {
	var cut models.NormalizedCut

	query := r.db.WithContext(ctx).Where("normalized_name = ?", normalizedName)
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.First(&cut).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCutNotFound
		}
		return nil, wrapStoreError("failed to get normalized cut by name", err)
	}

	return &cut, nil
}

// ListCandidates returns every cut in a category (or all categories when
// empty) for fuzzy matching. Ordered by ID for deterministic scoring runs.
func (r *NormalizedCutRepository) ListCandidates(ctx context.Context, category string) ([]*models.NormalizedCut, error) {
	var cuts []*models.NormalizedCut

	query := r.db.WithContext(ctx).Order("id ASC")
	if category != "" {
		query = query.Where("category = ?", category)
	}

	if err := query.Find(&cuts).Error; err != nil {
		return nil, wrapStoreError("failed to list cut candidates", err)
	}

	return cuts, nil
}

// List returns cuts with pagination for the admin surface
func (r *NormalizedCutRepository) List(ctx context.Context, category string, offset, limit int) ([]*models.NormalizedCut, int64, error) {
	var cuts []*models.NormalizedCut
	var total int64

	baseQuery := r.db.WithContext(ctx).Model(&models.NormalizedCut{})
	if category != "" {
		baseQuery = baseQuery.Where("category = ?", category)
	}

	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, wrapStoreError("failed to count normalized cuts", err)
	}

	if err := baseQuery.Order("category ASC, name ASC").
		Offset(offset).
		Limit(limit).
		Find(&cuts).Error; err != nil {
		return nil, 0, wrapStoreError("failed to list normalized cuts", err)
	}

	return cuts, total, nil
}

// Update saves a full cut record
func (r *NormalizedCutRepository) Update(ctx context.Context, cut *models.NormalizedCut) error {
	if cut == nil {
		return errors.New("cut cannot be nil")
	}

	if err := r.db.WithContext(ctx).Save(cut).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrCutAlreadyExists
		}
		return wrapStoreError("failed to update normalized cut", err)
	}

	return nil
}

// UpdateFields updates specific fields of a cut
func (r *NormalizedCutRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.NormalizedCut{ID: id}).Updates(fields)
	if result.Error != nil {
		if isDuplicateKeyError(result.Error) {
			return ErrCutAlreadyExists
		}
		return wrapStoreError("failed to update cut fields", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCutNotFound
	}

	return nil
}

// Delete soft deletes a cut. Deletion is rejected while variations still
// reference the cut.
func (r *NormalizedCutRepository) Delete(ctx context.Context, id uuid.UUID) error {
	var referenceCount int64
	if err := r.db.WithContext(ctx).Model(&models.CutVariation{}).
		Where("normalized_cut_id = ?", id).
		Count(&referenceCount).Error; err != nil {
		return wrapStoreError("failed to count cut references", err)
	}

	if referenceCount > 0 {
		return ErrCutReferenced
	}

	result := r.db.WithContext(ctx).Delete(&models.NormalizedCut{ID: id})
	if result.Error != nil {
		return wrapStoreError("failed to delete normalized cut", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCutNotFound
	}

	return nil
}

// CategoryStats aggregates cut and variation counts per category
func (r *NormalizedCutRepository) CategoryStats(ctx context.Context) ([]models.CategoryStats, error) {
	var stats []models.CategoryStats

	err := r.db.WithContext(ctx).Raw(`
		SELECT
			nc.category AS category,
			COUNT(DISTINCT nc.id) AS cut_count,
			COUNT(cv.id) AS variation_count,
			COALESCE(SUM(CASE WHEN cv.verified THEN 1 ELSE 0 END), 0) AS verified_count,
			COALESCE(AVG(cv.confidence_score), 0) AS avg_confidence
		FROM normalized_cuts nc
		LEFT JOIN cut_variations cv ON cv.normalized_cut_id = nc.id
		WHERE nc.deleted_at IS NULL
		GROUP BY nc.category
		ORDER BY nc.category ASC
	`).Scan(&stats).Error
	if err != nil {
		return nil, wrapStoreError("failed to aggregate category stats", err)
	}

	return stats, nil
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	// Postgres duplicate key error detection (23505), SQLite for tests
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "23505")
}

// wrapStoreError translates a context deadline into the retryable timeout
// sentinel so callers can apply their retry policy
func wrapStoreError(msg string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", msg, ErrStoreTimeout)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
