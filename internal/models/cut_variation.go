package models

import (
	"errors"
	"fmt"
	"time"

	"meatmarket-api/internal/similarity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Variation sources
const (
	SourceManual     = "manual"
	SourceAutomatic  = "automatic"
	SourceBulkImport = "bulk_import"
	SourceAPI        = "api"
)

// AllSources returns all valid variation source constants
func AllSources() []string {
	return []string{
		SourceManual,
		SourceAutomatic,
		SourceBulkImport,
		SourceAPI,
	}
}

// IsValidSource checks if a variation source string is valid
func IsValidSource(source string) bool {
	for _, validSource := range AllSources() {
		if source == validSource {
			return true
		}
	}
	return false
}

// CutVariation is an observed raw name mapped to a canonical cut.
// NormalizedName holds the fold-normalized form of OriginalName and is unique,
// so two spellings that fold to the same string are one variation row.
type CutVariation struct {
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	OriginalName    string     `gorm:"type:varchar(255);not null" json:"original_name"`
	NormalizedName  string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"-"`
	NormalizedCutID uuid.UUID  `gorm:"type:uuid;not null;index" json:"normalized_cut_id"`
	ConfidenceScore float64    `gorm:"not null" json:"confidence_score"`
	Source          string     `gorm:"type:varchar(20);not null;default:'api'" json:"source"`
	Verified        bool       `gorm:"default:false;index" json:"verified"`
	CreatedBy       *uuid.UUID `gorm:"type:uuid" json:"created_by,omitempty"`
	CreatedAt       time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"not null" json:"updated_at"`

	NormalizedCut *NormalizedCut `gorm:"foreignKey:NormalizedCutID" json:"-"`
}

func (cv *CutVariation) BeforeCreate(tx *gorm.DB) error {
	if cv.ID == uuid.Nil {
		cv.ID = uuid.New()
	}

	if cv.NormalizedName == "" {
		cv.NormalizedName = similarity.Fold(cv.OriginalName)
	}

	now := time.Now()
	if cv.CreatedAt.IsZero() {
		cv.CreatedAt = now
	}
	if cv.UpdatedAt.IsZero() {
		cv.UpdatedAt = now
	}

	return cv.Validate()
}

func (cv *CutVariation) BeforeUpdate(tx *gorm.DB) error {
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}

	return cv.Validate()
}

func (cv *CutVariation) Validate() error {
	if cv.OriginalName == "" {
		return errors.New("original name is required")
	}

	if cv.NormalizedName == "" {
		return errors.New("normalized name cannot be empty")
	}

	if cv.NormalizedCutID == uuid.Nil {
		return errors.New("normalized cut reference is required")
	}

	if cv.ConfidenceScore < 0.0 || cv.ConfidenceScore > 1.0 {
		return fmt.Errorf("confidence score out of range: %f", cv.ConfidenceScore)
	}

	if !IsValidSource(cv.Source) {
		return fmt.Errorf("invalid source: %s", cv.Source)
	}

	return nil
}

// EffectiveConfidence is the confidence used for lookups.
// A verified variation is trusted without re-scoring.
func (cv *CutVariation) EffectiveConfidence() float64 {
	if cv.Verified {
		return 1.0
	}
	return cv.ConfidenceScore
}

// MarkVerified transitions the variation to the verified state
func (cv *CutVariation) MarkVerified() {
	cv.Verified = true
	cv.UpdatedAt = time.Now()
}

// ReassignTo points the variation at a different cut.
// The mapping drops back to unverified under the new cut.
func (cv *CutVariation) ReassignTo(cutID uuid.UUID, confidence float64) {
	cv.NormalizedCutID = cutID
	cv.ConfidenceScore = confidence
	cv.Verified = false
	cv.UpdatedAt = time.Now()
}

func (cv *CutVariation) String() string {
	return fmt.Sprintf("CutVariation[%s -> %s, confidence: %.2f, verified: %v]",
		cv.OriginalName, cv.NormalizedCutID, cv.ConfidenceScore, cv.Verified)
}

func (cv *CutVariation) TableName() string {
	return "cut_variations"
}
