package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for speech_gateway_requests_total.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

var (
	// Request metrics
	speechRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speech_gateway_requests_total",
		Help: "Total number of speech synthesis requests",
	}, []string{"provider", "outcome"})

	inFlightRequests = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "speech_gateway_in_flight_requests",
		Help: "Number of speech synthesis requests currently being served",
	})

	// Upstream metrics
	upstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "speech_gateway_upstream_latency_seconds",
		Help:    "Provider synthesis latency in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
	}, []string{"provider"})

	// Audio metrics
	audioBytes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speech_gateway_audio_bytes_total",
		Help: "Total synthesized audio bytes returned to callers",
	}, []string{"provider"})

	// Error metrics
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speech_gateway_errors_total",
		Help: "Total number of failed requests by error kind",
	}, []string{"kind"})
)

// RequestMetrics tracks metrics for a single synthesis request.
// It is owned by one request goroutine and needs no locking.
type RequestMetrics struct {
	provider      string
	upstreamStart time.Time
	finished      bool
}

// NewRequestMetrics starts tracking a request and marks it in flight.
func NewRequestMetrics() *RequestMetrics {
	inFlightRequests.Inc()
	return &RequestMetrics{provider: "unknown"}
}

// SetProvider labels the request once the model has been resolved.
func (m *RequestMetrics) SetProvider(provider string) {
	m.provider = provider
}

// RecordUpstreamStart records the start of the provider call
func (m *RequestMetrics) RecordUpstreamStart() {
	m.upstreamStart = time.Now()
}

// RecordUpstreamEnd observes the provider call latency
func (m *RequestMetrics) RecordUpstreamEnd() {
	if !m.upstreamStart.IsZero() {
		upstreamLatency.WithLabelValues(m.provider).Observe(time.Since(m.upstreamStart).Seconds())
	}
}

// RecordSuccess records a completed request and the audio it returned.
func (m *RequestMetrics) RecordSuccess(bytes int) {
	if m.finish() {
		speechRequests.WithLabelValues(m.provider, OutcomeSuccess).Inc()
		audioBytes.WithLabelValues(m.provider).Add(float64(bytes))
	}
}

// RecordError records a failed request under the given error kind.
func (m *RequestMetrics) RecordError(kind string) {
	if m.finish() {
		speechRequests.WithLabelValues(m.provider, OutcomeError).Inc()
		errorsTotal.WithLabelValues(kind).Inc()
	}
}

// Done releases the in-flight slot if no outcome was recorded, for example
// when the handler panicked. Deferred by the handler; safe to call after
// RecordSuccess or RecordError.
func (m *RequestMetrics) Done() {
	m.finish()
}

// finish releases the in-flight slot exactly once.
func (m *RequestMetrics) finish() bool {
	if m.finished {
		return false
	}
	m.finished = true
	inFlightRequests.Dec()
	return true
}
