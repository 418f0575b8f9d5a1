// internal/ratelimit/limiter.go
package ratelimit

import (
	"context"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter paces requests per host.
type RateLimiter interface {
	// Wait blocks until a request for urlStr may proceed or ctx is done.
	Wait(ctx context.Context, urlStr string) error

	// Allow reports whether a request for urlStr may proceed now, consuming
	// the slot if so.
	Allow(urlStr string) bool
}

// HostLimiter enforces a fixed minimum delay between requests to the same
// host. The first request to a host proceeds immediately.
type HostLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	every    rate.Limit
}

// NewHostLimiter creates a limiter allowing one request per delay per host.
// A non-positive delay disables pacing.
func NewHostLimiter(delay time.Duration) *HostLimiter {
	every := rate.Inf
	if delay > 0 {
		every = rate.Every(delay)
	}
	return &HostLimiter{
		limiters: make(map[string]*rate.Limiter),
		every:    every,
	}
}

// Wait blocks until the host of urlStr is due
func (hl *HostLimiter) Wait(ctx context.Context, urlStr string) error {
	host := extractHost(urlStr)
	if host == "" {
		// invalid URLs fail later in the fetcher
		return nil
	}
	return hl.getLimiter(host).Wait(ctx)
}

// Allow checks whether the host of urlStr is due without blocking
func (hl *HostLimiter) Allow(urlStr string) bool {
	host := extractHost(urlStr)
	if host == "" {
		return true
	}
	return hl.getLimiter(host).Allow()
}

func (hl *HostLimiter) getLimiter(host string) *rate.Limiter {
	hl.mu.Lock()
	defer hl.mu.Unlock()

	limiter, exists := hl.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(hl.every, 1)
		hl.limiters[host] = limiter
	}
	return limiter
}

func extractHost(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Host
}
