package videos

import (
	"context"
	"time"

	"github.com/vidgrab/backend/internal/metrics"
)

// InstrumentedProvider records lookup latency for the wrapped provider.
type InstrumentedProvider struct {
	base Provider
	name string
}

// NewInstrumentedProvider labels observations of base with name.
func NewInstrumentedProvider(base Provider, name string) *InstrumentedProvider {
	return &InstrumentedProvider{base: base, name: name}
}

// Validate delegates to the wrapped provider.
func (p *InstrumentedProvider) Validate(url string) bool {
	if p == nil || p.base == nil {
		return false
	}
	return p.base.Validate(url)
}

// Lookup delegates to the wrapped provider and observes its duration.
func (p *InstrumentedProvider) Lookup(ctx context.Context, url string) (VideoInfo, error) {
	if p == nil || p.base == nil {
		return VideoInfo{}, ErrProviderUnavailable
	}

	start := time.Now()
	info, err := p.base.Lookup(ctx, url)

	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.ProviderLookupDuration.WithLabelValues(p.name, status).Observe(time.Since(start).Seconds())

	return info, err
}
