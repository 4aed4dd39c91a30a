package services

import (
	"context"
	"log/slog"
	"time"
)

// NormalizationLogger provides structured logging for suggestion and
// normalization operations
type NormalizationLogger struct {
	logger *slog.Logger
}

// NewNormalizationLogger creates a new normalization logger
func NewNormalizationLogger(logger *slog.Logger) NormalizationLoggerInterface {
	return &NormalizationLogger{
		logger: logger,
	}
}

// LogSuggestStarted logs the start of a suggestion lookup
func (nl *NormalizationLogger) LogSuggestStarted(ctx context.Context, query, category string, limit int) {
	nl.logger.InfoContext(ctx, "suggest started",
		slog.String("event_type", "suggest_started"),
		slog.String("query", query),
		slog.String("category", category),
		slog.Int("limit", limit),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", getRequestID(ctx)),
	)
}

// LogSuggestCompleted logs the completion of a suggestion lookup
func (nl *NormalizationLogger) LogSuggestCompleted(ctx context.Context, resultsCount int, hasExact bool, durationMs int64) {
	nl.logger.InfoContext(ctx, "suggest completed",
		slog.String("event_type", "suggest_completed"),
		slog.Int("results_count", resultsCount),
		slog.Bool("has_exact", hasExact),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", getRequestID(ctx)),
	)
}

// LogNormalizeDecision logs the decision taken for a normalize call
func (nl *NormalizationLogger) LogNormalizeDecision(ctx context.Context, rawName, decision string, confidence float64, isNewCut bool) {
	nl.logger.InfoContext(ctx, "normalize decision",
		slog.String("event_type", "normalize_decision"),
		slog.String("raw_name", rawName),
		slog.String("decision", decision),
		slog.Float64("confidence", confidence),
		slog.Bool("is_new_cut", isNewCut),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", getRequestID(ctx)),
	)
}

// LogNormalizeFailed logs a failed normalize call
func (nl *NormalizationLogger) LogNormalizeFailed(ctx context.Context, rawName, errorMsg string) {
	nl.logger.WarnContext(ctx, "normalize failed",
		slog.String("event_type", "normalize_failed"),
		slog.String("raw_name", rawName),
		slog.String("error", errorMsg),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", getRequestID(ctx)),
	)
}

// LogConflictRecovered logs a uniqueness conflict that was recovered by
// attaching to the winning row
func (nl *NormalizationLogger) LogConflictRecovered(ctx context.Context, rawName string) {
	nl.logger.InfoContext(ctx, "creation conflict recovered",
		slog.String("event_type", "conflict_recovered"),
		slog.String("raw_name", rawName),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", getRequestID(ctx)),
	)
}

// LogBulkImportCompleted logs the summary of a bulk import batch
func (nl *NormalizationLogger) LogBulkImportCompleted(ctx context.Context, processed, created, updated, skipped, errored int, dryRun bool, durationMs int64) {
	nl.logger.InfoContext(ctx, "bulk import completed",
		slog.String("event_type", "bulk_import_completed"),
		slog.Int("processed", processed),
		slog.Int("created", created),
		slog.Int("updated", updated),
		slog.Int("skipped", skipped),
		slog.Int("errored", errored),
		slog.Bool("dry_run", dryRun),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("request_id", getRequestID(ctx)),
	)
}

// Helper functions

func getRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if requestID, ok := ctx.Value("request_id").(string); ok {
		return requestID
	}
	return ""
}
