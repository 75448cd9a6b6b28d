package videos

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/vidgrab/backend/internal/metrics"
)

// CachingProvider wraps another Provider with a bounded, TTL-based in-memory cache.
// Failed lookups are never cached.
type CachingProvider struct {
	base  Provider
	ttl   time.Duration
	items *lru.LRU[string, VideoInfo]
}

// NewCachingProvider returns a Provider that caches up to size lookups for ttl.
func NewCachingProvider(base Provider, ttl time.Duration, size int) *CachingProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if size <= 0 {
		size = 256
	}
	return &CachingProvider{
		base:  base,
		ttl:   ttl,
		items: lru.NewLRU[string, VideoInfo](size, nil, ttl),
	}
}

// Validate delegates to the wrapped provider.
func (c *CachingProvider) Validate(url string) bool {
	if c == nil || c.base == nil {
		return false
	}
	return c.base.Validate(url)
}

// Lookup returns cached metadata when available, otherwise it delegates to the
// underlying provider and stores the result.
func (c *CachingProvider) Lookup(ctx context.Context, url string) (VideoInfo, error) {
	if c == nil || c.base == nil {
		return VideoInfo{}, ErrProviderUnavailable
	}

	if info, ok := c.items.Get(url); ok {
		metrics.ProviderCacheTotal.WithLabelValues("hit").Inc()
		return info, nil
	}
	metrics.ProviderCacheTotal.WithLabelValues("miss").Inc()

	info, err := c.base.Lookup(ctx, url)
	if err != nil {
		return VideoInfo{}, err
	}

	c.items.Add(url, info)
	return info, nil
}
