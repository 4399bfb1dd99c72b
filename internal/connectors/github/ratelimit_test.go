package github

import (
	"context"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func response(limit, remaining int, reset time.Time) *gh.Response {
	return &gh.Response{Rate: gh.Rate{
		Limit:     limit,
		Remaining: remaining,
		Reset:     gh.Timestamp{Time: reset},
	}}
}

func TestNewRateLimiter(t *testing.T) {
	q := NewRateLimiter().Quota()

	assert.Equal(t, DefaultHourlyQuota, q.Remaining)
	assert.Equal(t, DefaultHourlyQuota, q.Limit)
	assert.True(t, q.Reset.IsZero())
}

func TestRateLimiter_Observe(t *testing.T) {
	rl := NewRateLimiter()
	reset := time.Unix(1700000000, 0)

	rl.Observe(response(60, 42, reset))

	q := rl.Quota()
	assert.Equal(t, 60, q.Limit)
	assert.Equal(t, 42, q.Remaining)
	assert.True(t, reset.Equal(q.Reset.Time))
}

func TestRateLimiter_ObserveIgnoresMissingHeaders(t *testing.T) {
	rl := NewRateLimiter()

	rl.Observe(&gh.Response{})
	rl.Observe(nil)

	assert.Equal(t, DefaultHourlyQuota, rl.Quota().Remaining)
}

func TestRateLimiter_WaitHonoursContext(t *testing.T) {
	rl := NewRateLimiterWithRate(1000, 10)
	rl.Observe(response(5000, 0, time.Now().Add(time.Hour)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rl.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRateLimiter_WaitAfterResetPassed(t *testing.T) {
	rl := NewRateLimiterWithRate(1000, 10)
	rl.Observe(response(5000, 0, time.Now().Add(-time.Minute)))

	require.NoError(t, rl.Wait(context.Background()))
}

func TestRateLimiter_WaitFastPath(t *testing.T) {
	rl := NewRateLimiterWithRate(1000, 10)
	require.NoError(t, rl.Wait(context.Background()))
}
