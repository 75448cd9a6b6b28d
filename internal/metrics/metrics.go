package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Analyze endpoint metrics
var (
	AnalyzeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidgrab_analyze_requests_total",
			Help: "Total number of analyze requests by outcome.",
		},
		[]string{"outcome"},
	)

	AnalyzeFormatsReturned = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vidgrab_analyze_formats_returned",
			Help:    "Number of combined formats returned per successful analyze request.",
			Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
		},
	)
)

// Provider metrics
var (
	ProviderLookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidgrab_provider_lookup_duration_seconds",
			Help:    "Latency of metadata provider lookups.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider", "status"},
	)

	ProviderCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidgrab_provider_cache_total",
			Help: "Metadata cache lookups by result.",
		},
		[]string{"result"},
	)
)

// HTTP metrics
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vidgrab_http_requests_total",
			Help: "Total HTTP requests by route and status code.",
		},
		[]string{"route", "code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vidgrab_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vidgrab_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter.",
		},
	)
)

// Outcome labels for AnalyzeRequestsTotal.
const (
	OutcomeSuccess      = "success"
	OutcomeInvalidInput = "invalid_input"
	OutcomeFailure      = "failure"
)

func init() {
	prometheus.MustRegister(
		AnalyzeRequestsTotal,
		AnalyzeFormatsReturned,
		ProviderLookupDuration,
		ProviderCacheTotal,
		HTTPRequestsTotal,
		HTTPRequestDuration,
		RateLimitedTotal,
	)
}
