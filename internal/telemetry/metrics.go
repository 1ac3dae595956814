package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the docuchat server.
type Metrics struct {
	ChatRequestTotal  *prometheus.CounterVec
	ChatDurationMs    *prometheus.HistogramVec
	ExtractionTotal   *prometheus.CounterVec
	DriveImportTotal  *prometheus.CounterVec
	RateLimitedTotal  *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		ChatRequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docuchat_chat_request_total",
			Help: "Total number of chat turns processed.",
		}, []string{"provider", "status", "byok"}),

		ChatDurationMs: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docuchat_chat_duration_ms",
			Help:    "Chat turn duration in milliseconds (including provider latency).",
			Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000, 60000},
		}, []string{"provider"}),

		ExtractionTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docuchat_extraction_total",
			Help: "Total document extractions by declared type.",
		}, []string{"type"}),

		DriveImportTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docuchat_drive_import_total",
			Help: "Total Drive document imports by outcome.",
		}, []string{"outcome"}),

		RateLimitedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "docuchat_rate_limited_total",
			Help: "Total requests rejected by the rate limiter.",
		}, []string{"dimension"}),
	}
}

// RecordChat records one completed chat turn.
func (m *Metrics) RecordChat(provider, status string, byok bool, durationMs float64) {
	b := "false"
	if byok {
		b = "true"
	}
	m.ChatRequestTotal.WithLabelValues(provider, status, b).Inc()
	m.ChatDurationMs.WithLabelValues(provider).Observe(durationMs)
}

// RecordExtraction records one document extraction.
func (m *Metrics) RecordExtraction(declaredType string) {
	m.ExtractionTotal.WithLabelValues(declaredType).Inc()
}

// RecordDriveImport records one Drive fetch outcome ("ok" or "error").
func (m *Metrics) RecordDriveImport(outcome string) {
	m.DriveImportTotal.WithLabelValues(outcome).Inc()
}

// RecordRateLimited records one rejected request.
func (m *Metrics) RecordRateLimited(dimension string) {
	m.RateLimitedTotal.WithLabelValues(dimension).Inc()
}
