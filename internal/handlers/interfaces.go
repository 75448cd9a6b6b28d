package handlers

import (
	"context"

	"github.com/vidgrab/backend/internal/videos"
)

// VideoProvider resolves video URLs into metadata and formats.
type VideoProvider interface {
	Validate(url string) bool
	Lookup(ctx context.Context, url string) (videos.VideoInfo, error)
}

// ErrorReporter receives failures whose details are withheld from the caller.
type ErrorReporter interface {
	Report(ctx context.Context, err error, tags map[string]string)
}
