// Package retrylimit provides an adaptive rate limiter with retry support
// for outbound REST calls. The limit grows while calls succeed and backs off
// when they fail.
package retrylimit

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// AdaptiveLimiter manages a rate limit that adjusts automatically: it
// increases on success and decreases on errors. Safe for concurrent use.
type AdaptiveLimiter struct {
	mu       sync.Mutex
	limiter  *rate.Limiter
	minLimit rate.Limit
	maxLimit rate.Limit
	stepUp   rate.Limit
	stepDown float64
}

// NewAdaptiveLimiter creates an AdaptiveLimiter starting at initial requests
// per second, clamped to [min, max]. stepUp is added after each success;
// stepDown multiplies the rate after each failure (e.g. 0.5 to halve).
func NewAdaptiveLimiter(initial, min, max, stepUp rate.Limit, stepDown float64) *AdaptiveLimiter {
	if initial < 1 {
		initial = 1
	}
	if min < 1 {
		min = 1
	}
	return &AdaptiveLimiter{
		limiter:  rate.NewLimiter(initial, int(initial)),
		minLimit: min,
		maxLimit: max,
		stepUp:   stepUp,
		stepDown: stepDown,
	}
}

// Wait blocks until the limiter allows one event or ctx is done.
func (l *AdaptiveLimiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Success raises the rate by one step, up to the maximum.
func (l *AdaptiveLimiter) Success() {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := l.limiter.Limit() + l.stepUp
	if next > l.maxLimit {
		next = l.maxLimit
	}
	l.limiter.SetLimit(next)
}

// Failure multiplies the rate by the step-down factor, down to the minimum.
func (l *AdaptiveLimiter) Failure() {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := rate.Limit(float64(l.limiter.Limit()) * l.stepDown)
	if next < l.minLimit {
		next = l.minLimit
	}
	l.limiter.SetLimit(next)
}

const (
	maxAttempts = 3
	baseBackoff = 250 * time.Millisecond
)

// WithRetry runs fn under the limiter, retrying with jittered backoff. The
// last error is returned when all attempts fail.
func WithRetry(ctx context.Context, fn func() error, lim *AdaptiveLimiter) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := lim.Wait(ctx); err != nil {
			return err
		}

		if lastErr = fn(); lastErr == nil {
			lim.Success()
			return nil
		}
		lim.Failure()

		backoff := baseBackoff << attempt
		jitter := time.Duration(rand.Int63n(int64(backoff / 2)))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff + jitter):
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}
