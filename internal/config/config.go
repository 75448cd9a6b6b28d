package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures the runtime configuration for the vidgrab analyzer service.
type Config struct {
	AppPort         int
	LogLevel        string
	ShutdownTimeout time.Duration

	Provider     string
	YTDLPPath    string
	YTDLPTimeout time.Duration

	MetadataCacheTTL  time.Duration
	MetadataCacheSize int

	RateLimit RateLimitConfig

	MetricsEnabled bool
	SentryDSN      string
	Environment    string

	// YouTubeAPIKey is accepted for parity with existing deployments. No code
	// path reads it.
	YouTubeAPIKey string
}

// RateLimitConfig bounds how often a single client may call the analyze endpoint.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Burst    int

	// TrustProxyHeaders keys clients on X-Forwarded-For. Only safe when a
	// proxy in front of the service overwrites the header.
	TrustProxyHeaders bool
}

// Enabled reports whether rate limiting should be installed. It is off by
// default; request concurrency is left to the hosting environment.
func (c RateLimitConfig) Enabled() bool {
	return c.Requests > 0
}

const (
	ProviderYTDLP   = "ytdlp"
	ProviderYouTube = "youtube"
)

// Load reads configuration from optional .env files and environment variables,
// applying defaults suitable for local development.
func Load() (Config, error) {
	if err := loadEnvFiles(); err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppPort:           getInt("VIDGRAB_PORT", 8080),
		LogLevel:          getString("VIDGRAB_LOG_LEVEL", "info"),
		ShutdownTimeout:   getDuration("VIDGRAB_SHUTDOWN_TIMEOUT", 30*time.Second),
		Provider:          strings.ToLower(getString("VIDGRAB_PROVIDER", ProviderYTDLP)),
		YTDLPPath:         getString("VIDGRAB_YTDLP_PATH", "yt-dlp"),
		YTDLPTimeout:      getDuration("VIDGRAB_YTDLP_TIMEOUT", 30*time.Second),
		MetadataCacheTTL:  getDuration("VIDGRAB_METADATA_CACHE_TTL", 0),
		MetadataCacheSize: getInt("VIDGRAB_METADATA_CACHE_SIZE", 256),
		RateLimit: RateLimitConfig{
			Requests:          getInt("VIDGRAB_RATE_LIMIT_REQUESTS", 0),
			Window:            getDuration("VIDGRAB_RATE_LIMIT_WINDOW", time.Minute),
			Burst:             getInt("VIDGRAB_RATE_LIMIT_BURST", 10),
			TrustProxyHeaders: getBool("VIDGRAB_TRUST_PROXY_HEADERS", false),
		},
		MetricsEnabled: getBool("VIDGRAB_METRICS_ENABLED", true),
		SentryDSN:      getString("VIDGRAB_SENTRY_DSN", ""),
		Environment:    getString("VIDGRAB_ENV", "development"),
		YouTubeAPIKey:  getString("YOUTUBE_API_KEY", ""),
	}

	switch cfg.Provider {
	case ProviderYTDLP, ProviderYouTube:
	default:
		return Config{}, fmt.Errorf("unknown provider %q (expected %q or %q)", cfg.Provider, ProviderYTDLP, ProviderYouTube)
	}

	return cfg, nil
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c Config) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// InLambda reports whether the process runs inside the AWS Lambda runtime.
func InLambda() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

// loadEnvFiles loads .env, .env.<VIDGRAB_ENV> and .env.local in increasing precedence.
// Variables already present in the process environment win over .env.
func loadEnvFiles() error {
	if InLambda() {
		return nil
	}

	if fileExists(".env") {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("load .env: %w", err)
		}
	}

	if env := os.Getenv("VIDGRAB_ENV"); env != "" {
		name := ".env." + env
		if fileExists(name) {
			if err := godotenv.Overload(name); err != nil {
				return fmt.Errorf("load %s: %w", name, err)
			}
		}
	}

	if fileExists(".env.local") {
		if err := godotenv.Overload(".env.local"); err != nil {
			return fmt.Errorf("load .env.local: %w", err)
		}
	}

	return nil
}

func fileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func getString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return i
}

func getBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
