package httpserver

import (
	"context"
	"fmt"
	"time"
)

// DefaultShutdownTimeout matches the default yt-dlp lookup timeout so an
// in-flight analyze request can finish during a deploy.
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown stops accepting connections and drains in-flight requests until
// they finish, the shutdown timeout passes or ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.shutdownTimeout)
	defer cancel()

	if err := s.inner.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}
