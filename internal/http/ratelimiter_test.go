package http

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterRefillsOverTime(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, 0.5, time.Minute)
	current := time.Unix(0, 0)
	rl.now = func() time.Time { return current }

	key := "10.0.0.1"
	for i := 0; i < 2; i++ {
		if !rl.Allow(key) {
			t.Fatalf("expected request %d to be allowed", i+1)
		}
	}
	if rl.Allow(key) {
		t.Fatalf("expected third request to be denied")
	}

	current = current.Add(time.Second)
	if rl.Allow(key) {
		t.Fatalf("expected half a token to be insufficient")
	}

	current = current.Add(time.Second)
	if !rl.Allow(key) {
		t.Fatalf("expected request after two seconds to be allowed")
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, time.Minute)
	current := time.Unix(0, 0)
	rl.now = func() time.Time { return current }

	if !rl.Allow("a") || !rl.Allow("b") {
		t.Fatalf("expected first request per key to be allowed")
	}
	if rl.Allow("a") {
		t.Fatalf("expected second request for a to be denied")
	}
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, time.Minute)
	current := time.Unix(0, 0)
	rl.now = func() time.Time { return current }

	rl.Allow("idle")
	current = current.Add(30 * time.Second)
	rl.Allow("recent")

	current = current.Add(45 * time.Second)
	if evicted := rl.evictIdle(); evicted != 1 {
		t.Fatalf("expected one eviction, got %d", evicted)
	}
	if rl.size() != 1 {
		t.Fatalf("expected one remaining client, got %d", rl.size())
	}
}

func TestRateLimiterRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(1, 1, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- rl.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancellation")
	}
}
