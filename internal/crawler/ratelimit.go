package crawler

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// HostLimiter enforces a per-host request budget so one site is not hammered
// by the whole worker pool at once.
type HostLimiter struct {
	qps      float64
	limiters sync.Map
}

// NewHostLimiter returns nil when qps <= 0; a nil limiter waits for nothing.
func NewHostLimiter(qps float64) *HostLimiter {
	if qps <= 0 {
		return nil
	}
	return &HostLimiter{qps: qps}
}

// Wait blocks until the host of rawURL has budget, or ctx ends.
func (l *HostLimiter) Wait(ctx context.Context, rawURL string) error {
	if l == nil {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url for rate limit: %w", err)
	}
	host := strings.ToLower(parsed.Host)
	val, _ := l.limiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(l.qps), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait limiter: %w", err)
	}
	return nil
}
