package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_New(t *testing.T) {
	limiter := NewLimiter(10, 5)
	if limiter.defaultBurst != 5 {
		t.Errorf("expected burst 5, got %d", limiter.defaultBurst)
	}

	l2 := NewLimiter(10, -1)
	if l2.defaultBurst != 5 {
		t.Errorf("expected default burst 5 for negative input, got %d", l2.defaultBurst)
	}
}

func TestLimiter_Wait(t *testing.T) {
	limiter := NewLimiter(100, 1)
	ctx := context.Background()

	if err := limiter.Wait(ctx, "subpoema-istemei"); err != nil {
		t.Errorf("wait failed: %v", err)
	}

	// Different adapter has its own budget
	if err := limiter.Wait(ctx, "subpoema-isproba"); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestLimiter_RateLimit(t *testing.T) {
	limiter := NewLimiter(1, 1)
	ctx := context.Background()
	key := "counterclaim-iscerere"

	if err := limiter.Wait(ctx, key); err != nil {
		t.Errorf("first wait failed: %v", err)
	}

	// Burst of 1 is consumed
	if limiter.Allow(key) {
		t.Errorf("expected allow to fail (exhausted tokens)")
	}

	if !limiter.Allow("counterclaim-isparat") {
		t.Errorf("expected allow for another adapter")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)

	for i := 0; i < 100; i++ {
		if !limiter.Allow("subpoema-isselect") {
			t.Fatalf("expected unlimited limiter to allow request %d", i)
		}
	}
}

func TestLimiter_WaitRespectsContext(t *testing.T) {
	limiter := NewLimiter(0.01, 1)
	key := "subpoema-isreclamant"
	_ = limiter.Allow(key)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := limiter.Wait(ctx, key); err == nil {
		t.Error("expected wait to fail when the context ends first")
	}
}

func TestLimiter_SetRate(t *testing.T) {
	limiter := NewLimiter(10, 10)
	key := "rewrite-cerere"

	limiter.SetRate(key, 0.1, 1)

	if !limiter.Allow(key) {
		t.Errorf("first request should pass")
	}
	if limiter.Allow(key) {
		t.Errorf("second request should fail")
	}
	if !limiter.Allow("summary-select") {
		t.Errorf("other adapter should pass")
	}
}
