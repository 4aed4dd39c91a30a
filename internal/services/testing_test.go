package services

import (
	"io"
	"log/slog"
	"time"

	"meatmarket-api/internal/config"
)

// noopMetrics satisfies MetricsRecorderInterface without touching the
// prometheus default registry, so suites can run in parallel
type noopMetrics struct{}

func (noopMetrics) IncrementCounter(name string, tags map[string]string)    {}
func (noopMetrics) RecordProcessingTime(name string, duration time.Duration) {}
func (noopMetrics) RecordGauge(name string, value float64, tags map[string]string) {}

func newTestLogger() NormalizationLoggerInterface {
	return NewNormalizationLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testMatchingConfig() config.MatchingConfig {
	return config.MatchingConfig{
		MinConfidence:       0.3,
		AttachThreshold:     0.75,
		AutoVerifyThreshold: 0.9,
		SuggestLimit:        5,
		MaxSuggestLimit:     50,
	}
}
