package github

import (
	"context"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/time/rate"
)

const (
	// ProactiveRate is the default request rate (~1.2 req/sec = 4320/hr),
	// under the authenticated limit of 5000/hr.
	ProactiveRate = rate.Limit(1.2)

	// MinBuffer is the number of remaining requests below which the limiter
	// waits for the quota to reset.
	MinBuffer = 10
)

// RateLimiter throttles API calls with a token bucket and backs off when
// the quota reported by GitHub runs low.
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	bucket    *rate.Limiter
}

// NewRateLimiter creates a limiter allowing r requests per second.
func NewRateLimiter(r rate.Limit) *RateLimiter {
	return &RateLimiter{
		remaining: -1,
		bucket:    rate.NewLimiter(r, 1),
	}
}

// Wait blocks until a request may be made or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	remaining, resetTime := r.remaining, r.resetTime
	r.mu.Unlock()

	if remaining < 0 || remaining >= MinBuffer || !time.Now().Before(resetTime) {
		return nil
	}

	timer := time.NewTimer(time.Until(resetTime))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Update records the quota reported with resp. A nil response or one
// without rate headers is ignored.
func (r *RateLimiter) Update(resp *gh.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.remaining = resp.Rate.Remaining
	r.resetTime = resp.Rate.Reset.Time
}

// Remaining returns the last reported quota, or -1 if none was reported.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining
}
