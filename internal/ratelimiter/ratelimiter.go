// Package ratelimiter wraps golang.org/x/time/rate behind the small
// facade the RPC listener uses to admit or reject an accepted connection
// before a worker goroutine is spawned for it.
package ratelimiter

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// unlimitedRate stands in for "no rate limiting configured". rate.Inf
// would be more literal but interacts awkwardly with SetLimit/SetBurst, so
// a large finite rate is used instead.
const unlimitedRate = 1_000_000_000

// RateLimiter is a token-bucket admission gate. The zero value is not
// usable; construct with New or Unlimited.
type RateLimiter struct {
	limiter *rate.Limiter
}

// New creates a RateLimiter sustaining requestsPerSecond with burst
// capacity burst. requestsPerSecond == 0 means unlimited.
func New(requestsPerSecond, burst uint) *RateLimiter {
	if requestsPerSecond == 0 {
		requestsPerSecond = unlimitedRate
		burst = unlimitedRate
	}

	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), int(burst)),
	}
}

// Unlimited returns a RateLimiter that never rejects; it is equivalent to
// New(0, 0).
func Unlimited() *RateLimiter {
	return New(0, 0)
}

// Allow reports whether a request may proceed now, consuming one token if
// so. Use this to reject rather than queue excess load.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

// Wait blocks until a token is available or ctx is cancelled.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

// AllowN reports whether n tokens are available, consuming them if so.
// No tokens are consumed if n are not all available.
func (r *RateLimiter) AllowN(n uint) bool {
	return r.limiter.AllowN(time.Now(), int(n))
}

// SetLimit changes the sustained rate. If the burst was at its default
// (2x the old rate) or no larger than the old rate, the burst is rescaled
// to match; an explicitly oversized burst is left alone.
func (r *RateLimiter) SetLimit(requestsPerSecond uint) {
	if requestsPerSecond == 0 {
		requestsPerSecond = unlimitedRate
	}

	oldRate := uint(r.limiter.Limit())
	oldBurst := uint(r.limiter.Burst())
	r.limiter.SetLimit(rate.Limit(requestsPerSecond))

	if oldBurst == oldRate*2 || oldBurst <= oldRate {
		r.limiter.SetBurst(int(requestsPerSecond * 2))
	}
}

// SetBurst changes the burst capacity.
func (r *RateLimiter) SetBurst(burst uint) {
	r.limiter.SetBurst(int(burst))
}

// Tokens returns the current (possibly fractional) token count. Useful for
// diagnostics; the value may be stale by the time the caller observes it.
func (r *RateLimiter) Tokens() float64 {
	return r.limiter.Tokens()
}
