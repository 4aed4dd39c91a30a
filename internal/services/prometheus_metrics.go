package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	suggestRequests       *prometheus.CounterVec
	suggestDuration       prometheus.Histogram
	normalizeRequests     *prometheus.CounterVec
	normalizeDuration     prometheus.Histogram
	conflictsRecovered    prometheus.Counter
	bulkImportBatches     *prometheus.CounterVec
	bulkImportDuration    prometheus.Histogram
	bulkImportRows        prometheus.Gauge
	cutsTotal             prometheus.Gauge
	variationsTotal       prometheus.Gauge
	verifiedVariations    prometheus.Gauge
	authenticationEvents  *prometheus.CounterVec
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		suggestRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suggest_requests_total",
				Help: "Total number of suggestion requests",
			},
			[]string{"status"},
		),
		suggestDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "suggest_duration_seconds",
				Help:    "Suggestion lookup duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		normalizeRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "normalize_requests_total",
				Help: "Total number of normalize requests",
			},
			[]string{"status"},
		),
		normalizeDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "normalize_duration_seconds",
				Help:    "Normalize decision duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		conflictsRecovered: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "normalize_conflicts_recovered_total",
				Help: "Total number of creation races recovered by attaching to the existing row",
			},
		),
		bulkImportBatches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bulk_import_batches_total",
				Help: "Total number of bulk import batches",
			},
			[]string{"dry_run"},
		),
		bulkImportDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bulk_import_duration_milliseconds",
				Help:    "Bulk import batch duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
		),
		bulkImportRows: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "bulk_import_last_batch_rows",
				Help: "Row count of the most recent bulk import batch",
			},
		),
		cutsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "normalized_cuts_total",
				Help: "Current number of canonical cuts",
			},
		),
		variationsTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "cut_variations_total",
				Help: "Current number of cut variations",
			},
		),
		verifiedVariations: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "cut_variations_verified_total",
				Help: "Current number of verified cut variations",
			},
		),
		authenticationEvents: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authentication_events_total",
				Help: "Total number of authentication events",
			},
			[]string{"event_type"},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	status := tags["status"]

	switch name {
	case "suggest_request":
		if status != "" {
			m.suggestRequests.WithLabelValues(status).Inc()
		}
	case "normalize_request":
		if status != "" {
			m.normalizeRequests.WithLabelValues(status).Inc()
		}
	case "normalize_conflict_recovered":
		m.conflictsRecovered.Inc()
	case "bulk_import_batch":
		m.bulkImportBatches.WithLabelValues(tags["dry_run"]).Inc()
	case "authentication_event":
		if eventType := tags["event_type"]; eventType != "" {
			m.authenticationEvents.WithLabelValues(eventType).Inc()
		}
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "suggest":
		m.suggestDuration.Observe(duration.Seconds())
	case "normalize":
		m.normalizeDuration.Observe(duration.Seconds())
	case "bulk_import":
		m.bulkImportDuration.Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "bulk_import_rows":
		m.bulkImportRows.Set(value)
	case "normalized_cuts":
		m.cutsTotal.Set(value)
	case "cut_variations":
		m.variationsTotal.Set(value)
	case "verified_variations":
		m.verifiedVariations.Set(value)
	}
}
