// Package utils provides shared helpers for the HaloChat client.
package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// RetryConfig defines the retry budget for one request lifecycle.
type RetryConfig struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int
	// BaseDelay is the wait before the second attempt; attempt n waits
	// BaseDelay * (n-1).
	BaseDelay time.Duration
}

// DefaultRetryConfig returns the standard retry budget.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
	}
}

// LinearBackOff implements backoff.BackOff with a delay that grows
// linearly with the attempt number: base, 2*base, 3*base, ...
type LinearBackOff struct {
	Base    time.Duration
	attempt int
}

// NextBackOff returns the wait before the next attempt.
func (l *LinearBackOff) NextBackOff() time.Duration {
	l.attempt++
	return time.Duration(l.attempt) * l.Base
}

// Reset restarts the attempt counter.
func (l *LinearBackOff) Reset() { l.attempt = 0 }

// NewBackOff builds the backoff policy for this config, honouring ctx
// cancellation between attempts.
func (rc RetryConfig) NewBackOff(ctx context.Context) backoff.BackOff {
	attempts := rc.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var b backoff.BackOff = &LinearBackOff{Base: rc.BaseDelay}
	b = backoff.WithMaxRetries(b, uint64(attempts-1))
	return backoff.WithContext(b, ctx)
}

// ExecuteWithRetry runs operation until it succeeds, returns a permanent
// error, or the budget is exhausted. Wrap non-retryable failures with
// backoff.Permanent inside operation to abort immediately.
func ExecuteWithRetry(ctx context.Context, operation func() error, config RetryConfig) error {
	err := backoff.Retry(operation, config.NewBackOff(ctx))
	if err != nil {
		return fmt.Errorf("operation failed after retries: %w", err)
	}
	return nil
}

// ExecuteWithRetryNotify is ExecuteWithRetry with a per-retry callback,
// used for logging waits between attempts.
func ExecuteWithRetryNotify(ctx context.Context, operation func() error, config RetryConfig, notify func(err error, next time.Duration)) error {
	err := backoff.RetryNotify(operation, config.NewBackOff(ctx), notify)
	if err != nil {
		return fmt.Errorf("operation failed after retries: %w", err)
	}
	return nil
}
