package util

import (
	"context"
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	// 10 tokens per second, burst of 2
	l := NewLimiter(10, 2)

	if !l.Allow(1) {
		t.Error("expected first token to be allowed")
	}
	if !l.Allow(1) {
		t.Error("expected second token to be allowed (burst)")
	}
	if l.Allow(1) {
		t.Error("expected third token to be rejected (burst exhausted)")
	}

	time.Sleep(150 * time.Millisecond)
	if !l.Allow(1) {
		t.Error("expected token to be refilled after wait")
	}
}

func TestPerMinute(t *testing.T) {
	l := PerMinute(1)
	if !l.Allow(1) {
		t.Fatal("expected first run to be allowed")
	}
	if l.Allow(1) {
		t.Error("expected second run within the minute to be rejected")
	}

	unlimited := PerMinute(0)
	for i := 0; i < 100; i++ {
		if !unlimited.Allow(1) {
			t.Fatalf("expected unlimited limiter to allow run %d", i)
		}
	}
}

func TestLimiterWait(t *testing.T) {
	l := NewLimiter(1, 1)
	l.Allow(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, 1); err == nil {
		t.Error("expected wait to fail when the context expires first")
	}
}
