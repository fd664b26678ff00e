package gateway

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ClientMetrics records outbound call outcomes. The zero value is inert so
// callers that skip metrics pay nothing.
type ClientMetrics struct {
	duration  *prometheus.HistogramVec
	requests  *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
}

// NewClientMetrics registers the gateway metrics on the provided registerer.
func NewClientMetrics(reg prometheus.Registerer) *ClientMetrics {
	if reg == nil {
		return &ClientMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gateway_request_duration_seconds",
		Help:    "Duration of outbound gateway calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_requests_total",
		Help: "Outbound gateway calls by method and outcome.",
	}, []string{"method", "outcome"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_protocol_fallbacks_total",
		Help: "Secondary-protocol attempts by operation.",
	}, []string{"operation"})
	reg.MustRegister(duration, requests, fallbacks)
	return &ClientMetrics{
		duration:  duration,
		requests:  requests,
		fallbacks: fallbacks,
	}
}

// ObserveRequest records one completed call.
func (m *ClientMetrics) ObserveRequest(method, outcome string, elapsed time.Duration) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(method, outcome).Inc()
	m.duration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// IncFallback counts a secondary-protocol attempt for the named operation.
func (m *ClientMetrics) IncFallback(operation string) {
	if m == nil || m.fallbacks == nil {
		return
	}
	m.fallbacks.WithLabelValues(operation).Inc()
}
