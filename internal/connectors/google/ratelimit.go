package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultDriveRateLimit stays below Drive's 10 requests/sec/user quota.
var DefaultDriveRateLimit = RateLimitConfig{RequestsPerSecond: 8.0, BurstSize: 10}

// DefaultBackoff is used when a 429 response carries no Retry-After.
const DefaultBackoff = 60 * time.Second

// RateLimiter paces Drive requests and pauses all of them after a 429.
type RateLimiter struct {
	limiter *rate.Limiter

	mu        sync.Mutex
	pausedTil time.Time
}

// NewRateLimiter creates a rate limiter with the Drive defaults.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(DefaultDriveRateLimit)
}

// NewRateLimiterWithConfig creates a rate limiter with custom configuration.
func NewRateLimiterWithConfig(cfg RateLimitConfig) *RateLimiter {
	if cfg.BurstSize < 1 {
		cfg.BurstSize = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
	}
}

// Wait blocks until the pause set by Backoff has passed and a token is free.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if pause := time.Until(r.PausedUntil()); pause > 0 {
		timer := time.NewTimer(pause)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return r.limiter.Wait(ctx)
}

// Backoff pauses requests after a rate-limited response. The pause follows
// the Retry-After header when err carries one, DefaultBackoff otherwise.
// Errors that are not rate limits are ignored.
func (r *RateLimiter) Backoff(err error) {
	if !IsRateLimited(err) {
		return
	}
	pause := DefaultBackoff
	if secs := RetryAfter(err); secs > 0 {
		pause = time.Duration(secs) * time.Second
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if until := time.Now().Add(pause); until.After(r.pausedTil) {
		r.pausedTil = until
	}
}

// PausedUntil returns the end of the current backoff, zero when none was set.
func (r *RateLimiter) PausedUntil() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pausedTil
}
