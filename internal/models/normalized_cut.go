package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"meatmarket-api/internal/similarity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Meat categories for the cut taxonomy
const (
	CategoryBeef    = "beef"
	CategoryChicken = "chicken"
	CategoryLamb    = "lamb"
	CategoryPork    = "pork"
	CategoryFish    = "fish"
	CategoryOther   = "other"
)

// Cut types within a category
const (
	CutTypeSteak  = "steak"
	CutTypeRoast  = "roast"
	CutTypeGround = "ground"
	CutTypeFillet = "fillet"
	CutTypeShank  = "shank"
	CutTypeWing   = "wing"
	CutTypeBreast = "breast"
	CutTypeRibs   = "ribs"
	CutTypeTendon = "tendon"
	CutTypeWhole  = "whole"
	CutTypeOther  = "other"
)

// categoryLabels maps category constants to Hebrew display labels
var categoryLabels = map[string]string{
	CategoryBeef:    "בקר",
	CategoryChicken: "עוף",
	CategoryLamb:    "טלה",
	CategoryPork:    "חזיר",
	CategoryFish:    "דגים",
	CategoryOther:   "אחר",
}

// AllCategories returns all valid meat category constants
func AllCategories() []string {
	return []string{
		CategoryBeef,
		CategoryChicken,
		CategoryLamb,
		CategoryPork,
		CategoryFish,
		CategoryOther,
	}
}

// AllCutTypes returns all valid cut type constants
func AllCutTypes() []string {
	return []string{
		CutTypeSteak,
		CutTypeRoast,
		CutTypeGround,
		CutTypeFillet,
		CutTypeShank,
		CutTypeWing,
		CutTypeBreast,
		CutTypeRibs,
		CutTypeTendon,
		CutTypeWhole,
		CutTypeOther,
	}
}

// IsValidCategory checks if a category string is valid
func IsValidCategory(category string) bool {
	for _, validCategory := range AllCategories() {
		if category == validCategory {
			return true
		}
	}
	return false
}

// IsValidCutType checks if a cut type string is valid
func IsValidCutType(cutType string) bool {
	for _, validType := range AllCutTypes() {
		if cutType == validType {
			return true
		}
	}
	return false
}

// CategoryLabel returns the Hebrew display label for a category
func CategoryLabel(category string) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return category
}

// NormalizedCut is the canonical taxonomy entry a variation points at.
// Name is unique within a category after fold-normalization.
type NormalizedCut struct {
	ID               uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Name             string           `gorm:"type:varchar(255);not null" json:"name"`
	NormalizedName   string           `gorm:"type:varchar(255);not null;uniqueIndex:idx_cuts_category_normalized,priority:2" json:"-"`
	Category         string           `gorm:"type:varchar(20);not null;uniqueIndex:idx_cuts_category_normalized,priority:1;index" json:"category"`
	CutType          string           `gorm:"type:varchar(20)" json:"cut_type,omitempty"`
	Subcategory      string           `gorm:"type:varchar(100)" json:"subcategory,omitempty"`
	Description      string           `gorm:"type:text" json:"description,omitempty"`
	IsPremium        bool             `gorm:"default:false" json:"is_premium"`
	TypicalWeightMin *decimal.Decimal `gorm:"type:decimal(8,3)" json:"typical_weight_min,omitempty"`
	TypicalWeightMax *decimal.Decimal `gorm:"type:decimal(8,3)" json:"typical_weight_max,omitempty"`
	CookingMethods   StringList       `gorm:"type:text" json:"cooking_methods,omitempty"`
	CreatedAt        time.Time        `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null" json:"updated_at"`
	DeletedAt        gorm.DeletedAt   `gorm:"index" json:"deleted_at,omitempty"`

	Variations []CutVariation `gorm:"foreignKey:NormalizedCutID" json:"-"`
}

func (nc *NormalizedCut) BeforeCreate(tx *gorm.DB) error {
	if nc.ID == uuid.Nil {
		nc.ID = uuid.New()
	}

	if nc.NormalizedName == "" {
		nc.NormalizedName = similarity.Fold(nc.Name)
	}

	// Set timestamps if not already set (for tests)
	now := time.Now()
	if nc.CreatedAt.IsZero() {
		nc.CreatedAt = now
	}
	if nc.UpdatedAt.IsZero() {
		nc.UpdatedAt = now
	}

	return nc.Validate()
}

func (nc *NormalizedCut) BeforeUpdate(tx *gorm.DB) error {
	// Skip validation for map-based updates where the struct is empty
	if tx.Statement.Dest != nil {
		if _, ok := tx.Statement.Dest.(map[string]interface{}); ok {
			return nil
		}
	}

	if nc.NormalizedName == "" {
		nc.NormalizedName = similarity.Fold(nc.Name)
	}

	return nc.Validate()
}

func (nc *NormalizedCut) Validate() error {
	if nc.Name == "" {
		return errors.New("name is required")
	}

	if nc.NormalizedName == "" {
		return errors.New("normalized name cannot be empty")
	}

	if !IsValidCategory(nc.Category) {
		return fmt.Errorf("invalid category: %s", nc.Category)
	}

	if nc.CutType != "" && !IsValidCutType(nc.CutType) {
		return fmt.Errorf("invalid cut type: %s", nc.CutType)
	}

	if nc.TypicalWeightMin != nil && nc.TypicalWeightMax != nil &&
		nc.TypicalWeightMin.GreaterThan(*nc.TypicalWeightMax) {
		return errors.New("typical weight range is inverted")
	}

	return nil
}

func (nc *NormalizedCut) CategoryLabel() string {
	return CategoryLabel(nc.Category)
}

func (nc *NormalizedCut) String() string {
	return fmt.Sprintf("NormalizedCut[%s/%s]", nc.Category, nc.Name)
}

func (nc *NormalizedCut) TableName() string {
	return "normalized_cuts"
}

// StringList is an ordered list of strings stored as a JSON text column
type StringList []string

// Value implements driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return nil, nil
	}
	bytes, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	// Return string for SQLite compatibility
	return string(bytes), nil
}

// Scan implements sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("cannot scan %T into StringList", value)
	}
}
