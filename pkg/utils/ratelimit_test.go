package utils

import (
	"context"
	"runtime"
	"testing"
	"time"
)

func TestRateLimiterBurst(t *testing.T) {
	rl := NewRateLimiter(1, 3)
	defer rl.Stop()

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("burst token %d: %v", i, err)
		}
	}
}

func TestRateLimiterWaitHonorsContext(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	defer rl.Stop()

	// Drain the burst so the next Wait has to block.
	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Error("expected error from cancelled context")
	}
}

func TestRateLimiterRefills(t *testing.T) {
	rl := NewRateLimiter(100, 1)
	defer rl.Stop()

	if err := rl.Wait(context.Background()); err != nil {
		t.Fatalf("drain: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := rl.Wait(ctx); err != nil {
		t.Errorf("expected a refilled token within the deadline, got %v", err)
	}
}

func TestRateLimiterStopReleasesGoroutine(t *testing.T) {
	before := runtime.NumGoroutine()

	rl := NewRateLimiter(100, 1)
	rl.Stop()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= before {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("refill goroutine still running after Stop: %d goroutines, started with %d",
		runtime.NumGoroutine(), before)
}
