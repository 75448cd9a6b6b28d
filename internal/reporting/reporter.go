// Package reporting forwards swallowed request errors to an external
// diagnostics service without affecting the HTTP response.
package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/vidgrab/backend/internal/logging"
)

// Reporter receives the root cause of failures that are hidden from callers.
type Reporter interface {
	Report(ctx context.Context, err error, tags map[string]string)
	Flush(timeout time.Duration) bool
}

// Nop discards every report.
type Nop struct{}

func (Nop) Report(context.Context, error, map[string]string) {}

func (Nop) Flush(time.Duration) bool { return true }

// SentryReporter sends reports to Sentry through a dedicated hub.
type SentryReporter struct {
	hub *sentry.Hub
}

// NewSentryReporter initialises a Sentry client for dsn.
func NewSentryReporter(dsn, environment, release string) (*SentryReporter, error) {
	client, err := sentry.NewClient(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	})
	if err != nil {
		return nil, fmt.Errorf("init sentry client: %w", err)
	}
	return newSentryReporter(sentry.NewHub(client, sentry.NewScope())), nil
}

func newSentryReporter(hub *sentry.Hub) *SentryReporter {
	return &SentryReporter{hub: hub}
}

// Report captures err with the request id and tags attached.
func (r *SentryReporter) Report(ctx context.Context, err error, tags map[string]string) {
	if r == nil || r.hub == nil || err == nil {
		return
	}

	hub := r.hub.Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		if requestID := logging.RequestIDFromContext(ctx); requestID != "" {
			scope.SetTag("request_id", requestID)
		}
		for key, value := range tags {
			scope.SetTag(key, value)
		}
		hub.CaptureException(err)
	})
}

// Flush waits up to timeout for buffered events to be delivered.
func (r *SentryReporter) Flush(timeout time.Duration) bool {
	if r == nil || r.hub == nil {
		return true
	}
	return r.hub.Flush(timeout)
}
