package dto

import (
	"meatmarket-api/internal/models"
)

// CreateCutRequest represents the request to create a canonical cut
type CreateCutRequest struct {
	Name             string   `json:"name" validate:"required,min=1,max=255"`
	Category         string   `json:"category" validate:"required,meat_category"`
	CutType          string   `json:"cut_type" validate:"omitempty,cut_type"`
	Subcategory      string   `json:"subcategory" validate:"omitempty,max=100"`
	Description      string   `json:"description" validate:"omitempty,max=1000"`
	IsPremium        bool     `json:"is_premium"`
	TypicalWeightMin string   `json:"typical_weight_min" validate:"omitempty"`
	TypicalWeightMax string   `json:"typical_weight_max" validate:"omitempty"`
	CookingMethods   []string `json:"cooking_methods" validate:"omitempty,dive,min=1,max=50"`
}

// UpdateCutRequest represents the request to update a canonical cut.
// Nil fields are left unchanged.
type UpdateCutRequest struct {
	Name             *string   `json:"name" validate:"omitempty,min=1,max=255"`
	CutType          *string   `json:"cut_type" validate:"omitempty,cut_type"`
	Subcategory      *string   `json:"subcategory" validate:"omitempty,max=100"`
	Description      *string   `json:"description" validate:"omitempty,max=1000"`
	IsPremium        *bool     `json:"is_premium"`
	TypicalWeightMin *string   `json:"typical_weight_min" validate:"omitempty"`
	TypicalWeightMax *string   `json:"typical_weight_max" validate:"omitempty"`
	CookingMethods   *[]string `json:"cooking_methods" validate:"omitempty,dive,min=1,max=50"`
}

// ListCutsRequest represents the query parameters for listing cuts
type ListCutsRequest struct {
	Category string `query:"category" validate:"omitempty,meat_category"`
	Limit    int    `query:"limit" validate:"omitempty,min=1,max=200"`
	Offset   int    `query:"offset" validate:"omitempty,min=0"`
}

// ListCutsResponse represents a page of canonical cuts
type ListCutsResponse struct {
	Cuts   []*models.NormalizedCut `json:"cuts"`
	Total  int64                   `json:"total"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

// GetCutResponse represents a single canonical cut with its variations
type GetCutResponse struct {
	Cut        *models.NormalizedCut  `json:"cut"`
	Variations []*models.CutVariation `json:"variations"`
}

// DeleteCutResponse represents the response after deleting a cut
type DeleteCutResponse struct {
	Message string `json:"message"`
}

// ListVariationsResponse represents the variations attached to a cut
type ListVariationsResponse struct {
	Variations []*models.CutVariation `json:"variations"`
	Total      int64                  `json:"total"`
}

// VerifyVariationResponse represents the response after verifying a variation
type VerifyVariationResponse struct {
	Variation *models.CutVariation `json:"variation"`
	Message   string               `json:"message"`
}

// ReassignVariationRequest represents the request to move a variation to a different cut
type ReassignVariationRequest struct {
	NormalizedCutID string   `json:"normalized_cut_id" validate:"required,entity_id"`
	Confidence      *float64 `json:"confidence" validate:"omitempty,confidence_score"`
}

// ReassignVariationResponse represents the response after reassigning a variation
type ReassignVariationResponse struct {
	Variation *models.CutVariation `json:"variation"`
	Message   string               `json:"message"`
}

// DeleteVariationResponse represents the response after deleting a variation
type DeleteVariationResponse struct {
	Message string `json:"message"`
}
