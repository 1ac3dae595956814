package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewMetrics(t *testing.T) {
	m := NewMetrics()

	if m.ChatRequestTotal == nil {
		t.Error("ChatRequestTotal should not be nil")
	}
	if m.ChatDurationMs == nil {
		t.Error("ChatDurationMs should not be nil")
	}
	if m.ExtractionTotal == nil {
		t.Error("ExtractionTotal should not be nil")
	}
	if m.DriveImportTotal == nil {
		t.Error("DriveImportTotal should not be nil")
	}
	if m.RateLimitedTotal == nil {
		t.Error("RateLimitedTotal should not be nil")
	}
}

func TestRecordChat(t *testing.T) {
	// Use fresh collectors to avoid polluting the default registry.
	reg := prometheus.NewRegistry()

	chatTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_docuchat_chat_request_total",
		Help: "Test counter",
	}, []string{"provider", "status", "byok"})

	durationMs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "test_docuchat_chat_duration_ms",
		Help:    "Test histogram",
		Buckets: []float64{100, 500, 1000},
	}, []string{"provider"})

	reg.MustRegister(chatTotal, durationMs)

	m := &Metrics{
		ChatRequestTotal: chatTotal,
		ChatDurationMs:   durationMs,
	}

	m.RecordChat("openai", "200", true, 321)
	m.RecordChat("openai", "200", true, 450)
	m.RecordChat("gemini", "429", false, 12)

	count := counterValue(t, chatTotal, "openai", "200", "true")
	if count != 2 {
		t.Errorf("expected openai counter 2, got %v", count)
	}
	count = counterValue(t, chatTotal, "gemini", "429", "false")
	if count != 1 {
		t.Errorf("expected gemini counter 1, got %v", count)
	}
}

func TestRecordRateLimited(t *testing.T) {
	reg := prometheus.NewRegistry()
	rl := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "test_docuchat_rate_limited_total",
		Help: "Test counter",
	}, []string{"dimension"})
	reg.MustRegister(rl)

	m := &Metrics{RateLimitedTotal: rl}
	m.RecordRateLimited("rpm")
	m.RecordRateLimited("rpm")

	if v := counterValue(t, rl, "rpm"); v != 2 {
		t.Errorf("expected 2, got %v", v)
	}
}

func counterValue(t *testing.T, vec *prometheus.CounterVec, labels ...string) float64 {
	t.Helper()
	c, err := vec.GetMetricWithLabelValues(labels...)
	if err != nil {
		t.Fatalf("get metric: %v", err)
	}
	var metric dto.Metric
	if err := c.Write(&metric); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return metric.GetCounter().GetValue()
}
