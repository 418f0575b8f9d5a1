package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestHostLimiter_PerHost(t *testing.T) {
	l := NewHostLimiter(time.Hour)

	if !l.Allow("https://www.sports-reference.com/a") {
		t.Fatal("first request to a host must proceed")
	}
	if l.Allow("https://www.sports-reference.com/b") {
		t.Error("second request to the same host must wait")
	}
	if !l.Allow("https://basketball.realgm.com/nba/players") {
		t.Error("other hosts are paced independently")
	}
}

func TestHostLimiter_WaitHonoursContext(t *testing.T) {
	l := NewHostLimiter(time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "https://example.com/1"); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}
	if err := l.Wait(ctx, "https://example.com/2"); err == nil {
		t.Error("expected wait to fail when the delay exceeds the deadline")
	}
}

func TestHostLimiter_ZeroDelay(t *testing.T) {
	l := NewHostLimiter(0)
	for i := 0; i < 5; i++ {
		if !l.Allow("https://example.com/") {
			t.Fatal("zero delay must not pace")
		}
	}
}

func TestHostLimiter_InvalidURL(t *testing.T) {
	l := NewHostLimiter(time.Hour)
	if err := l.Wait(context.Background(), "://bad"); err != nil {
		t.Errorf("invalid URL should pass through, got %v", err)
	}
}
