package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func fastConfig() Config {
	cfg := DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	return cfg
}

func TestDo_RetriesTransientStatus(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		if calls < 3 {
			return &StatusError{URL: "u", StatusCode: http.StatusServiceUnavailable, Status: "503"}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDo_StopsOnPermanentStatus(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return &StatusError{URL: "u", StatusCode: http.StatusNotFound, Status: "404 Not Found"}
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Errorf("expected StatusError 404, got %v", err)
	}
}

func TestDo_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastConfig(), func(context.Context) error {
		calls++
		return &StatusError{URL: "u", StatusCode: http.StatusTooManyRequests, Status: "429"}
	})
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Errorf("final error should wrap the last StatusError, got %v", err)
	}
}

func TestDo_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig()
	cfg.InitialBackoff = time.Hour
	cfg.MaxBackoff = time.Hour

	calls := 0
	err := Do(ctx, cfg, func(context.Context) error {
		calls++
		cancel()
		return &StatusError{URL: "u", StatusCode: http.StatusBadGateway, Status: "502"}
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if err == nil {
		t.Error("expected error")
	}
}

func TestRetryable(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"500", &StatusError{StatusCode: 500}, true},
		{"403", &StatusError{StatusCode: 403}, false},
		{"plain", errors.New("parse failure"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Retryable(tt.err, cfg); got != tt.want {
				t.Errorf("Retryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
