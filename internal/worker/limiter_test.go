package worker

import (
	"context"
	"testing"
)

func TestLimiter_Defaults(t *testing.T) {
	l := NewLimiter(10, -1)
	if l.defaultBurst != 1 {
		t.Errorf("expected default burst 1 for negative input, got %d", l.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	l := NewLimiter(100, 1)
	ctx := context.Background()

	if err := l.Wait(ctx, "courtlistener"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
	if err := l.Wait(ctx, "ndcourts"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_SharedBucketPerSource(t *testing.T) {
	// 1 rps, burst 1: the second request against the same source must be
	// throttled, while a different source still has its own token.
	l := NewLimiter(1, 1)

	if !l.Allow("ndcourts") {
		t.Error("first request should pass")
	}
	if l.Allow("ndcourts") {
		t.Error("second request should be throttled (shared bucket)")
	}
	if !l.Allow("ndstatutes") {
		t.Error("other source should have its own bucket")
	}
}

func TestLimiter_SetSourceRate(t *testing.T) {
	l := NewLimiter(10, 10)
	l.SetSourceRate("ndcourts", 0.1, 1)

	if !l.Allow("ndcourts") {
		t.Error("first request should pass")
	}
	if l.Allow("ndcourts") {
		t.Error("second request should be throttled by the custom rate")
	}
	if !l.Allow("courtlistener") {
		t.Error("default-rate source should pass")
	}
}

func TestLimiter_WaitCancelled(t *testing.T) {
	l := NewLimiter(0.001, 1)
	l.Allow("slow") // drain the only token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx, "slow"); err == nil {
		t.Error("expected error from cancelled context")
	}
}
