package services

import (
	"context"
	"time"

	"meatmarket-api/internal/models"
)

// MatcherServiceInterface finds ranked canonical-cut candidates for a raw
// cut name
type MatcherServiceInterface interface {
	// FindCandidates returns candidates ordered by confidence. An empty
	// category matches all categories. Empty/whitespace names and
	// non-positive limits yield an empty result, not an error.
	FindCandidates(ctx context.Context, rawName, category string, limit int, minConfidence float64) ([]models.CutMatch, error)
}

// NormalizerServiceInterface orchestrates the create-vs-attach decision for
// raw cut names
type NormalizerServiceInterface interface {
	// Normalize attaches the raw name to an existing cut, creates a new
	// cut when forced, or returns alternatives for the caller to
	// disambiguate
	Normalize(ctx context.Context, rawName string, opts models.NormalizeOptions) (*models.NormalizeResult, error)

	// Analyze is the read-only variant: suggested category, cut type and
	// canonical name plus possible matches. Never persists.
	Analyze(ctx context.Context, rawName string) (*models.AnalysisResult, error)

	// BulkImport normalizes a batch of raw names with per-row outcomes.
	// One bad row never aborts the batch.
	BulkImport(ctx context.Context, rows []models.BulkImportRow, opts models.BulkImportOptions) (*models.BulkImportResult, error)
}

// StatsServiceInterface provides aggregate taxonomy statistics
type StatsServiceInterface interface {
	GetStats(ctx context.Context) (*models.NormalizationStats, error)
}

// TokenServiceInterface verifies tokens issued by the external auth
// subsystem
type TokenServiceInterface interface {
	ValidateAccessToken(tokenString string) (*models.ActorClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
}

// NormalizationLoggerInterface provides structured logging for
// normalization operations
type NormalizationLoggerInterface interface {
	LogSuggestStarted(ctx context.Context, query, category string, limit int)
	LogSuggestCompleted(ctx context.Context, resultsCount int, hasExact bool, durationMs int64)
	LogNormalizeDecision(ctx context.Context, rawName, decision string, confidence float64, isNewCut bool)
	LogNormalizeFailed(ctx context.Context, rawName, errorMsg string)
	LogConflictRecovered(ctx context.Context, rawName string)
	LogBulkImportCompleted(ctx context.Context, processed, created, updated, skipped, errored int, dryRun bool, durationMs int64)
}

// MetricsRecorderInterface abstracts the metrics backend
type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

// HasExactMatch reports whether a ranked candidate list contains a
// non-fuzzy hit, so the UI can skip "create new" prompts
func HasExactMatch(matches []models.CutMatch) bool {
	for _, match := range matches {
		if match.MatchType == models.MatchTypeVariation || match.MatchType == models.MatchTypeExact {
			return true
		}
	}
	return false
}
