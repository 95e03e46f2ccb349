package utils

import (
	"context"
	"time"
)

// RateLimiter implements token bucket rate limiting for outbound API
// requests. It is optional; the client only waits on one when configured.
type RateLimiter struct {
	tokens       chan struct{}
	refillTicker *time.Ticker
	done         chan struct{}
}

// NewRateLimiter creates a limiter allowing requestsPerSecond sustained
// throughput with bursts up to maxBurst.
func NewRateLimiter(requestsPerSecond float64, maxBurst int) *RateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1.0
	}
	if maxBurst <= 0 {
		maxBurst = 10
	}

	rl := &RateLimiter{
		tokens: make(chan struct{}, maxBurst),
		done:   make(chan struct{}),
	}
	for i := 0; i < maxBurst; i++ {
		rl.tokens <- struct{}{}
	}

	rl.refillTicker = time.NewTicker(time.Duration(float64(time.Second) / requestsPerSecond))
	go func() {
		for {
			select {
			case <-rl.refillTicker.C:
				select {
				case rl.tokens <- struct{}{}:
				default:
				}
			case <-rl.done:
				return
			}
		}
	}()

	return rl
}

// Wait blocks until a token is available or ctx is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	select {
	case <-rl.tokens:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop terminates the refill goroutine. The limiter must not be used
// after Stop.
func (rl *RateLimiter) Stop() {
	if rl.refillTicker != nil {
		rl.refillTicker.Stop()
	}
	close(rl.done)
}
