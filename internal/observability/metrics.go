package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry

	// HTTP request rate by route template and status class.
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTP request latency per request.
	HTTPRequestDuration *prometheus.HistogramVec

	// Concurrent requests in flight.
	HTTPRequestsInFlight prometheus.Gauge

	// OpenWeatherMap calls by status label (success, client_error, server_error, error).
	// Watch for: client_error spikes after a bad key rotation.
	WeatherAPICallsTotal *prometheus.CounterVec

	// OpenWeatherMap latency. No client timeout by default, so watch the +Inf bucket.
	WeatherAPIDuration *prometheus.HistogramVec

	// Fetches that never reached the result store (network, read, parse), by category.
	// These render as "still loading" to the user.
	WeatherFetchFailuresTotal *prometheus.CounterVec

	// Effect runs that skipped the network call (empty_location, missing_api_key).
	FetchSkippedTotal *prometheus.CounterVec

	// Submit presses.
	SubmissionsTotal prometheus.Counter

	// Responses dropped by the optional sequence guard.
	StaleResponsesDiscardedTotal prometheus.Counter

	// Result store failures by operation (load, replace).
	ResultStoreErrorsTotal *prometheus.CounterVec

	// Rate limit denials on the submit path.
	RateLimitDeniedTotal prometheus.Counter
)

func init() {
	registry = prometheus.NewRegistry()

	registry.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "httpRequestsTotal",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "statusCode"},
	)
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "httpRequestDurationSeconds",
			Help:    "HTTP request latency in seconds (per request)",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
	HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "httpRequestsInFlight",
			Help: "Number of HTTP requests currently being served",
		},
	)
	WeatherAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherApiCallsTotal",
			Help: "Total number of OpenWeatherMap API calls",
		},
		[]string{"status"},
	)
	WeatherAPIDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "weatherApiDurationSeconds",
			Help:    "OpenWeatherMap API latency in seconds (per request)",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"status"},
	)
	WeatherFetchFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weatherFetchFailuresTotal",
			Help: "Weather fetches that failed before reaching the result store",
		},
		[]string{"category"},
	)
	FetchSkippedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fetchSkippedTotal",
			Help: "Fetch effect runs that made no network call",
		},
		[]string{"reason"},
	)
	SubmissionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "submissionsTotal",
			Help: "Total number of location submissions",
		},
	)
	StaleResponsesDiscardedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "staleResponsesDiscardedTotal",
			Help: "Responses dropped because a newer request was already applied",
		},
	)
	ResultStoreErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resultStoreErrorsTotal",
			Help: "Result store errors by operation",
		},
		[]string{"op"},
	)
	RateLimitDeniedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rateLimitDeniedTotal",
			Help: "Total number of requests denied by rate limiter (429)",
		},
	)

	registry.MustRegister(
		HTTPRequestsTotal, HTTPRequestDuration, HTTPRequestsInFlight,
		WeatherAPICallsTotal, WeatherAPIDuration,
		WeatherFetchFailuresTotal, FetchSkippedTotal,
		SubmissionsTotal, StaleResponsesDiscardedTotal,
		ResultStoreErrorsTotal, RateLimitDeniedTotal,
	)
}

// MetricsHandler returns an http.Handler that serves application and runtime metrics.
func MetricsHandler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
