package models

// Match types describing how a candidate was found
const (
	MatchTypeVariation = "variation"
	MatchTypeExact     = "exact"
	MatchTypeFuzzy     = "fuzzy"
)

// CutMatch is a single ranked candidate returned by the matcher
type CutMatch struct {
	Cut        *NormalizedCut `json:"cut"`
	Confidence float64        `json:"confidence"`
	MatchType  string         `json:"match_type"`
}

// CategoryStats aggregates taxonomy counts for one category
type CategoryStats struct {
	Category       string  `json:"category"`
	CutCount       int64   `json:"cut_count"`
	VariationCount int64   `json:"variation_count"`
	VerifiedCount  int64   `json:"verified_count"`
	AvgConfidence  float64 `json:"avg_confidence"`
}

// NormalizationStats is the full per-category aggregate view
type NormalizationStats struct {
	Categories      []CategoryStats `json:"categories"`
	TotalCuts       int64           `json:"total_cuts"`
	TotalVariations int64           `json:"total_variations"`
	TotalVerified   int64           `json:"total_verified"`
}
