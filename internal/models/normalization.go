package models

import "github.com/google/uuid"

// Bulk import row outcomes
const (
	OutcomeCreated = "created"
	OutcomeUpdated = "updated"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
)

// NormalizeOptions controls a single normalize call
type NormalizeOptions struct {
	ForceCreate bool
	Category    string
	CutType     string
	Source      string
	CreatedBy   *uuid.UUID
}

// NormalizeResult is the outcome of a normalize call. When no candidate
// clears the attach threshold and creation was not forced, NormalizedCut and
// Variation are nil and Alternatives carries the ranked candidates for the
// caller to disambiguate.
type NormalizeResult struct {
	NormalizedCut *NormalizedCut `json:"normalized_cut,omitempty"`
	Variation     *CutVariation  `json:"variation,omitempty"`
	IsNewCut      bool           `json:"is_new_cut"`
	Confidence    float64        `json:"confidence"`
	Alternatives  []CutMatch     `json:"alternatives,omitempty"`
}

// AnalysisResult is the advisory, never-persisted view of a raw name
type AnalysisResult struct {
	SuggestedCategory       string     `json:"suggested_category,omitempty"`
	SuggestedCutType        string     `json:"suggested_cut_type,omitempty"`
	SuggestedNormalizedName string     `json:"suggested_normalized_name"`
	Confidence              float64    `json:"confidence"`
	Reasons                 []string   `json:"reasons"`
	PossibleMatches         []CutMatch `json:"possible_matches"`
}

// BulkImportRow is one raw name submitted for bulk normalization
type BulkImportRow struct {
	OriginalName string `json:"original_name"`
	Category     string `json:"category,omitempty"`
	CutType      string `json:"cut_type,omitempty"`
	Description  string `json:"description,omitempty"`
	Source       string `json:"source,omitempty"`
}

// BulkImportOptions controls a bulk import batch
type BulkImportOptions struct {
	SkipExisting  bool
	MinConfidence float64
	AutoVerify    bool
	DryRun        bool
	CreatedBy     *uuid.UUID
}

// BulkImportRowResult is the per-row outcome of a bulk import
type BulkImportRowResult struct {
	OriginalName    string     `json:"original_name"`
	Outcome         string     `json:"outcome"`
	NormalizedCutID *uuid.UUID `json:"normalized_cut_id,omitempty"`
	VariationID     *uuid.UUID `json:"variation_id,omitempty"`
	Confidence      float64    `json:"confidence"`
	Error           string     `json:"error,omitempty"`
}

// BulkImportResult aggregates a whole batch. A row error never aborts the
// sibling rows.
type BulkImportResult struct {
	Processed int                   `json:"processed"`
	Created   int                   `json:"created"`
	Updated   int                   `json:"updated"`
	Skipped   int                   `json:"skipped"`
	Errors    int                   `json:"errors"`
	Results   []BulkImportRowResult `json:"results"`
}
