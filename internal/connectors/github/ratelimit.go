package github

import (
	"context"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"
)

const (
	// DefaultHourlyQuota is the authenticated core quota.
	DefaultHourlyQuota = 5000

	// DefaultRequestsPerSecond keeps a full refresh under the hourly quota.
	DefaultRequestsPerSecond = 1.2

	// ReserveRequests are left untouched; below this Wait sleeps until reset.
	ReserveRequests = 100
)

// RateLimiter paces requests with a token bucket and pauses when the quota
// reported by GitHub drops under ReserveRequests.
type RateLimiter struct {
	bucket  *rate.Limiter
	reserve int

	mu    sync.Mutex
	quota gh.Rate
}

// NewRateLimiter creates a limiter at DefaultRequestsPerSecond.
func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithRate(DefaultRequestsPerSecond, 1)
}

// NewRateLimiterWithRate creates a limiter allowing rps requests per second.
func NewRateLimiterWithRate(rps float64, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		bucket:  rate.NewLimiter(rate.Limit(rps), burst),
		reserve: ReserveRequests,
		quota:   gh.Rate{Limit: DefaultHourlyQuota, Remaining: DefaultHourlyQuota},
	}
}

// Wait blocks until the next request may be sent.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	q := r.Quota()
	if q.Remaining >= r.reserve || q.Reset.IsZero() {
		return nil
	}
	pause := time.Until(q.Reset.Time)
	if pause <= 0 {
		return nil
	}

	timer := time.NewTimer(pause)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Observe records the quota go-github parsed from a response.
// Responses without rate headers leave the state unchanged.
func (r *RateLimiter) Observe(resp *gh.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	r.mu.Lock()
	r.quota = resp.Rate
	r.mu.Unlock()
}

// Quota returns the last observed quota.
func (r *RateLimiter) Quota() gh.Rate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.quota
}
