package app

import (
	"fmt"

	"github.com/vidgrab/backend/internal/config"
	"github.com/vidgrab/backend/internal/handlers"
	"github.com/vidgrab/backend/internal/middleware"
	"github.com/vidgrab/backend/internal/reporting"
	"github.com/vidgrab/backend/internal/videos"
)

// Dependencies holds the wired collaborators plus the reporter the process
// must flush on exit.
type Dependencies struct {
	HTTP     handlers.Dependencies
	Reporter reporting.Reporter
}

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(cfg config.Config) (Dependencies, error) {
	var provider videos.Provider
	switch cfg.Provider {
	case config.ProviderYouTube:
		provider = videos.NewLibraryProvider()
	case config.ProviderYTDLP, "":
		provider = videos.NewYTDLPProvider(cfg.YTDLPPath, cfg.YTDLPTimeout)
	default:
		return Dependencies{}, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
	name := cfg.Provider
	if name == "" {
		name = config.ProviderYTDLP
	}

	provider = videos.NewInstrumentedProvider(provider, name)
	if cfg.MetadataCacheTTL > 0 {
		provider = videos.NewCachingProvider(provider, cfg.MetadataCacheTTL, cfg.MetadataCacheSize)
	}

	var reporter reporting.Reporter = reporting.Nop{}
	if cfg.SentryDSN != "" {
		sentryReporter, err := reporting.NewSentryReporter(cfg.SentryDSN, cfg.Environment, "")
		if err != nil {
			return Dependencies{}, err
		}
		reporter = sentryReporter
	}

	var limiter middleware.RateLimiter
	if cfg.RateLimit.Enabled() {
		limiter = middleware.NewIPRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window, cfg.RateLimit.Burst, 0)
	}

	return Dependencies{
		HTTP: handlers.Dependencies{
			Provider:          provider,
			ProviderName:      name,
			Reporter:          reporter,
			RateLimiter:       limiter,
			MetricsEnabled:    cfg.MetricsEnabled,
			TrustProxyHeaders: cfg.RateLimit.TrustProxyHeaders,
		},
		Reporter: reporter,
	}, nil
}
