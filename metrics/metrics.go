// Package metrics provides Prometheus metrics for the Wikipedia MCP server.
// It tracks tool calls, provider API calls, resolution outcomes and failures.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace for all metrics
const (
	Namespace = "wikipedia_mcp"
)

var (
	// RequestsTotal counts total MCP tool calls by tool name and status
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "requests_total",
		Help:      "Total number of MCP tool calls",
	}, []string{"tool", "status"})

	// RequestDuration measures request latency distribution
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "request_duration_seconds",
		Help:      "Request latency distribution by tool",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"tool"})

	// RequestInFlight tracks currently executing requests
	RequestInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "requests_in_flight",
		Help:      "Number of requests currently being processed",
	}, []string{"tool"})

	// ValidationFailures counts tool calls rejected before reaching the provider
	ValidationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "validation_failures_total",
		Help:      "Tool calls rejected by input validation",
	}, []string{"tool", "field"})

	// ProviderAPILatency measures provider API call latency by action
	ProviderAPILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "provider_api_latency_seconds",
		Help:      "Provider API call latency by action",
		Buckets:   prometheus.DefBuckets,
	}, []string{"action"})

	// ProviderAPIRequestsTotal counts provider API requests
	ProviderAPIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "provider_api_requests_total",
		Help:      "Total provider API requests by action and status",
	}, []string{"action", "status"})

	// ProviderAPIErrors counts provider API errors by error code
	ProviderAPIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "provider_api_errors_total",
		Help:      "Provider API errors by action and error code",
	}, []string{"action", "error_code"})

	// ResolutionOutcomes counts page title resolutions by outcome
	ResolutionOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "resolution_outcomes_total",
		Help:      "Page title resolutions by outcome (found, not_found, ambiguous)",
	}, []string{"outcome"})

	// CircuitBreakerRejections counts calls rejected by an open circuit breaker
	CircuitBreakerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "circuit_breaker_rejections_total",
		Help:      "Provider calls rejected by an open circuit breaker",
	}, []string{"breaker"})

	// CircuitBreakerTransitions counts circuit breaker state changes
	CircuitBreakerTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "circuit_breaker_transitions_total",
		Help:      "Circuit breaker state transitions",
	}, []string{"breaker", "from", "to"})

	// PanicsRecovered counts recovered panics
	PanicsRecovered = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "panics_recovered_total",
		Help:      "Number of panics recovered in tool handlers",
	}, []string{"tool"})

	// HTTPRequestsTotal counts HTTP transport requests
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by method and status",
	}, []string{"method", "status"})

	// HTTPRequestDuration measures HTTP request latency
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency distribution",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path"})

	// ContentSize tracks content sizes returned by text-producing tools
	ContentSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "content_size_bytes",
		Help:      "Content size distribution in bytes",
		Buckets:   []float64{100, 1000, 10000, 50000, 100000, 250000, 500000, 1000000},
	}, []string{"operation"})
)

// RecordRequest records a completed request with its duration and status
func RecordRequest(tool string, duration float64, success bool) {
	RequestsTotal.WithLabelValues(tool, status(success)).Inc()
	RequestDuration.WithLabelValues(tool).Observe(duration)
}

// RecordAPICall records a provider API call
func RecordAPICall(action string, duration float64, success bool, errorCode string) {
	ProviderAPIRequestsTotal.WithLabelValues(action, status(success)).Inc()
	ProviderAPILatency.WithLabelValues(action).Observe(duration)
	if errorCode != "" {
		ProviderAPIErrors.WithLabelValues(action, errorCode).Inc()
	}
}

// RecordResolution records the outcome of a title resolution
func RecordResolution(outcome string) {
	ResolutionOutcomes.WithLabelValues(outcome).Inc()
}

// RecordValidationFailure records a tool call rejected by input validation
func RecordValidationFailure(tool, field string) {
	if field == "" {
		field = "unknown"
	}
	ValidationFailures.WithLabelValues(tool, field).Inc()
}

// RecordContentSize records the size of text returned by a tool
func RecordContentSize(operation string, size int) {
	ContentSize.WithLabelValues(operation).Observe(float64(size))
}

func status(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
