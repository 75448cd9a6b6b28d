package handlers

import (
	"net/http"

	"github.com/vidgrab/backend/internal/metrics"
	"github.com/vidgrab/backend/internal/middleware"
)

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{ProviderName: deps.ProviderName}
	analyze := AnalyzeHandler{
		Provider:     deps.Provider,
		ProviderName: deps.ProviderName,
		Reporter:     deps.Reporter,
	}

	mux.Handle("/api/analyze", middleware.Chain(
		http.HandlerFunc(analyze.Analyze),
		middleware.Metrics("/api/analyze"),
		middleware.RateLimit(deps.RateLimiter, deps.TrustProxyHeaders),
	))
	mux.Handle("/healthz", middleware.Chain(http.HandlerFunc(health.Handle), middleware.Metrics("/healthz")))

	if deps.MetricsEnabled {
		mux.Handle("/metrics", metrics.Handler())
	}
}

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Provider       VideoProvider
	ProviderName   string
	Reporter       ErrorReporter
	RateLimiter    middleware.RateLimiter
	MetricsEnabled bool

	// TrustProxyHeaders keys rate limiting on X-Forwarded-For.
	TrustProxyHeaders bool
}
