package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "searchagent"

// Metrics owns its own registry so tests and multiple servers never collide.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal       *prometheus.CounterVec
	searchDuration      *prometheus.HistogramVec
	candidatesTotal     *prometheus.CounterVec
	providerLatency     *prometheus.HistogramVec
	circuitBreakerState *prometheus.GaugeVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		searchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "duration_seconds",
				Help:      "End to end search duration in seconds",
				Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"outcome"},
		),
		candidatesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "search",
				Name:      "candidates_total",
				Help:      "Candidate extraction outcomes",
			},
			[]string{"status"},
		),
		providerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "provider",
				Name:      "latency_seconds",
				Help:      "Search provider response time in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"provider", "status"},
		),
		circuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "provider",
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0=closed, 0.5=half-open, 1=open)",
			},
			[]string{"provider"},
		),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.searchDuration,
		m.candidatesTotal,
		m.providerLatency,
		m.circuitBreakerState,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRequest(method, path, status string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, path, status).Inc()
}

func (m *Metrics) RecordSearch(outcome string, durationSec float64) {
	if m == nil {
		return
	}
	m.searchDuration.WithLabelValues(outcome).Observe(durationSec)
}

func (m *Metrics) RecordCandidate(status string) {
	if m == nil {
		return
	}
	m.candidatesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordProviderLatency(provider, status string, durationSec float64) {
	if m == nil {
		return
	}
	if provider == "" {
		provider = "unknown"
	}
	m.providerLatency.WithLabelValues(provider, status).Observe(durationSec)
}

func (m *Metrics) SetCircuitBreakerState(provider, state string) {
	if m == nil {
		return
	}
	var val float64
	switch state {
	case "closed":
		val = 0.0
	case "half-open":
		val = 0.5
	case "open":
		val = 1.0
	}
	m.circuitBreakerState.WithLabelValues(provider).Set(val)
}
