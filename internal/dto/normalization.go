package dto

import (
	"meatmarket-api/internal/models"
)

// SuggestRequest represents the query parameters for a suggestion lookup
type SuggestRequest struct {
	Query         string   `query:"q" validate:"required,min=1,max=255"`
	Category      string   `query:"category" validate:"omitempty,meat_category"`
	Limit         int      `query:"limit" validate:"omitempty,min=1,max=50"`
	MinConfidence *float64 `query:"min_confidence" validate:"omitempty,confidence_score"`
}

// SuggestResponse represents the ranked candidates for a raw name
type SuggestResponse struct {
	Query      string            `json:"query"`
	Candidates []models.CutMatch `json:"candidates"`
	HasExact   bool              `json:"has_exact"`
}

// NormalizeRequest represents the request to normalize a raw cut name
type NormalizeRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=255"`
	ForceCreate bool   `json:"force_create"`
	Category    string `json:"category" validate:"omitempty,meat_category"`
	CutType     string `json:"cut_type" validate:"omitempty,cut_type"`
	Source      string `json:"source" validate:"omitempty,variation_source"`
}

// NormalizeResponse represents the outcome of a normalize call
type NormalizeResponse struct {
	NormalizedCut *models.NormalizedCut `json:"normalized_cut,omitempty"`
	Variation     *models.CutVariation  `json:"variation,omitempty"`
	IsNewCut      bool                  `json:"is_new_cut"`
	Confidence    float64               `json:"confidence"`
	Alternatives  []models.CutMatch     `json:"alternatives,omitempty"`
}

// AnalyzeRequest represents the request to analyze a raw cut name
type AnalyzeRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
}

// AnalyzeResponse represents the advisory analysis of a raw name
type AnalyzeResponse struct {
	SuggestedCategory       string            `json:"suggested_category,omitempty"`
	SuggestedCutType        string            `json:"suggested_cut_type,omitempty"`
	SuggestedNormalizedName string            `json:"suggested_normalized_name"`
	Confidence              float64           `json:"confidence"`
	Reasons                 []string          `json:"reasons"`
	PossibleMatches         []models.CutMatch `json:"possible_matches"`
}

// BulkImportRequest represents a batch of raw names to normalize
type BulkImportRequest struct {
	Rows          []BulkImportRowDTO `json:"rows" validate:"required,min=1,max=1000,dive"`
	SkipExisting  bool               `json:"skip_existing"`
	MinConfidence float64            `json:"min_confidence" validate:"omitempty,confidence_score"`
	AutoVerify    bool               `json:"auto_verify"`
	DryRun        bool               `json:"dry_run"`
}

// BulkImportRowDTO represents one raw name in a bulk import batch
type BulkImportRowDTO struct {
	OriginalName string `json:"original_name" validate:"required,min=1,max=255"`
	Category     string `json:"category" validate:"omitempty,meat_category"`
	CutType      string `json:"cut_type" validate:"omitempty,cut_type"`
	Description  string `json:"description" validate:"omitempty,max=1000"`
	Source       string `json:"source" validate:"omitempty,variation_source"`
}

// BulkImportResponse represents the per-row outcomes of a bulk import
type BulkImportResponse struct {
	Processed int                          `json:"processed"`
	Created   int                          `json:"created"`
	Updated   int                          `json:"updated"`
	Skipped   int                          `json:"skipped"`
	Errors    int                          `json:"errors"`
	DryRun    bool                         `json:"dry_run"`
	Results   []models.BulkImportRowResult `json:"results"`
}

// StatsResponse represents the per-category taxonomy statistics
type StatsResponse struct {
	Categories      []models.CategoryStats `json:"categories"`
	TotalCuts       int64                  `json:"total_cuts"`
	TotalVariations int64                  `json:"total_variations"`
	TotalVerified   int64                  `json:"total_verified"`
}
