package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/law-makers/boxscore/internal/cache"
	"github.com/law-makers/boxscore/internal/ratelimit"
	"github.com/law-makers/boxscore/internal/retry"
)

func fastRetry() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.InitialBackoff = time.Millisecond
	cfg.MaxBackoff = time.Millisecond
	return cfg
}

func TestHTTPFetcher_Fetch(t *testing.T) {
	var ua string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(`<html><body><h1>Box Score</h1></body></html>`))
	}))
	defer server.Close()

	f := New(server.Client(), Options{UserAgent: "test-agent", Retry: fastRetry()})
	doc, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got := doc.Find("h1").Text(); got != "Box Score" {
		t.Errorf("h1 = %q", got)
	}
	if ua != "test-agent" {
		t.Errorf("User-Agent = %q", ua)
	}
}

func TestHTTPFetcher_DecodesCharset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		// "José" in Latin-1
		w.Write([]byte("<html><body><a>Jos\xe9</a></body></html>"))
	}))
	defer server.Close()

	f := New(server.Client(), Options{Retry: fastRetry()})
	doc, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if got := doc.Find("a").Text(); got != "José" {
		t.Errorf("name = %q, want José", got)
	}
}

func TestHTTPFetcher_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`<html><body>ok</body></html>`))
	}))
	defer server.Close()

	var observed atomic.Int32
	f := New(server.Client(), Options{
		Retry:   fastRetry(),
		Observe: func(time.Duration) { observed.Add(1) },
	})
	if _, err := f.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
	if observed.Load() != 2 {
		t.Errorf("observed = %d, want 2", observed.Load())
	}
}

func TestHTTPFetcher_NotFoundIsFinal(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	f := New(server.Client(), Options{Retry: fastRetry()})
	_, err := f.Fetch(context.Background(), server.URL)

	var se *retry.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 StatusError, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestHTTPFetcher_OversizedBodyNotCached(t *testing.T) {
	defer func(n int64) { maxBodyBytes = n }(maxBodyBytes)
	maxBodyBytes = 64

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("<html><body>" + strings.Repeat("x", 200) + "</body></html>"))
	}))
	defer server.Close()

	c := cache.NewMemoryCache(1 << 20)
	defer c.Close()

	f := New(server.Client(), Options{Cache: c, CacheTTL: time.Minute, Retry: fastRetry()})
	if _, err := f.Fetch(context.Background(), server.URL); !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("expected ErrBodyTooLarge, got %v", err)
	}
	if _, ok := c.Get(server.URL); ok {
		t.Error("truncated document must not be cached")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestHTTPFetcher_CacheHitSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`<html><body>cached</body></html>`))
	}))
	defer server.Close()

	c := cache.NewMemoryCache(1 << 20)
	defer c.Close()

	f := New(server.Client(), Options{
		Cache:    c,
		CacheTTL: time.Minute,
		Limiter:  ratelimit.NewHostLimiter(time.Hour),
		Retry:    fastRetry(),
	})
	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), server.URL); err != nil {
			t.Fatalf("Fetch %d failed: %v", i, err)
		}
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestHTTPFetcher_InvalidURL(t *testing.T) {
	f := New(nil, Options{})
	_, err := f.Fetch(context.Background(), "ftp://example.com/file")
	if !errors.Is(err, ErrInvalidURL) {
		t.Errorf("expected ErrInvalidURL, got %v", err)
	}
}

func TestFindChrome_ConfiguredPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec bit not meaningful on windows")
	}
	path := filepath.Join(t.TempDir(), "chrome")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}
	if got := FindChrome(path); got != path {
		t.Errorf("FindChrome = %q, want %q", got, path)
	}

	t.Setenv("CHROME_PATH", path)
	if got := FindChrome(""); got != path {
		t.Errorf("FindChrome via env = %q, want %q", got, path)
	}
}
