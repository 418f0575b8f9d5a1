// Package app wires configuration into the long-lived dependencies a command
// needs and tears them down afterwards.
package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/boxscore/internal/cache"
	"github.com/law-makers/boxscore/internal/canon"
	"github.com/law-makers/boxscore/internal/config"
	"github.com/law-makers/boxscore/internal/fetch"
	"github.com/law-makers/boxscore/internal/metrics"
	"github.com/law-makers/boxscore/internal/ratelimit"
	"github.com/law-makers/boxscore/internal/retry"
	"github.com/law-makers/boxscore/internal/runctx"
	"github.com/law-makers/boxscore/internal/store"
	"github.com/law-makers/boxscore/pkg/models"
)

// Application holds the dependencies of one command run.
//
// The store and the browser are opened on first use so commands that do not
// need them never touch the database or start Chrome.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	Cache       *cache.MemoryCache
	RateLimiter ratelimit.RateLimiter
	HTTPClient  *http.Client
	Fetcher     *fetch.HTTPFetcher
	Metrics     *metrics.Manager
	Labels      *canon.Table

	// DryRun makes the store drop writes. It must be set before Store is
	// first called.
	DryRun bool

	mu        sync.Mutex
	store     store.Store
	browser   *fetch.Browser
	startTime time.Time
}

// New creates an Application from cfg. ctx should carry the run from
// runctx.WithRun so every log line is tagged with the run id.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	logger := runctx.Logger(ctx)
	log.Logger = logger

	memCache := cache.NewMemoryCache(cfg.CacheMaxSizeBytes)
	limiter := ratelimit.NewHostLimiter(cfg.RequestDelay)
	logger.Debug().
		Dur("request_delay", cfg.RequestDelay).
		Int64("cache_max_size_bytes", cfg.CacheMaxSizeBytes).
		Msg("Cache and rate limiter initialized")

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	m := metrics.NewManager(metrics.WithConstLabels(map[string]string{"league": cfg.League}))

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxAttempts = cfg.RetryAttempts
	if cfg.RequestDelay > retryCfg.InitialBackoff {
		retryCfg.InitialBackoff = cfg.RequestDelay
	}

	fetcher := fetch.New(httpClient, fetch.Options{
		Cache:     memCache,
		CacheTTL:  cfg.CacheTTL,
		Limiter:   limiter,
		Retry:     retryCfg,
		UserAgent: cfg.UserAgent,
		Observe:   m.ObserveFetch,
	})

	labels := canon.Default().With(cfg.LabelAliases)

	a := &Application{
		Config:      cfg,
		Logger:      &logger,
		Cache:       memCache,
		RateLimiter: limiter,
		HTTPClient:  httpClient,
		Fetcher:     fetcher,
		Metrics:     m,
		Labels:      labels,
		startTime:   time.Now(),
	}

	logger.Debug().
		Str("league", cfg.League).
		Int("label_aliases", labels.Len()).
		Msg("Application initialized")
	return a, nil
}

// League is the configured league
func (a *Application) League() models.League {
	return models.League(a.Config.League)
}

// Store opens the configured store on first call
func (a *Application) Store(ctx context.Context) (store.Store, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.store != nil {
		return a.store, nil
	}

	s, err := store.Open(ctx, store.Options{
		Driver:  a.Config.StoreDriver,
		DSN:     a.Config.StoreDSN,
		URL:     a.Config.StoreURL,
		APIKey:  a.Config.StoreKey,
		Table:   a.Config.StoreTable,
		Timeout: a.Config.HTTPTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", a.Config.StoreDriver, err)
	}
	if a.DryRun {
		s = store.ReadOnly(s)
		a.Logger.Info().Msg("Dry run: store writes are disabled")
	}

	a.store = s
	return s, nil
}

// Browser returns the shared headless browser fetcher, created on first use
func (a *Application) Browser() *fetch.Browser {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.browser == nil {
		a.browser = fetch.NewBrowser(fetch.BrowserOptions{
			ChromePath: a.Config.ChromePath,
			Headless:   a.Config.BrowserHeadless,
			UserAgent:  a.Config.UserAgent,
			Timeout:    a.Config.HTTPTimeout * 2,
			Limiter:    a.RateLimiter,
		})
	}
	return a.browser
}

// Close releases everything New and the lazy accessors acquired and writes
// the metrics textfile if one is configured. All steps run even if one fails;
// the first error is returned.
func (a *Application) Close(ctx context.Context) error {
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}

	a.mu.Lock()
	if a.browser != nil {
		a.browser.Close()
		a.browser = nil
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Error closing store")
			keep(err)
		}
		a.store = nil
	}
	a.mu.Unlock()

	if err := a.Metrics.WriteTextfile(a.Config.MetricsFile); err != nil {
		a.Logger.Warn().Err(err).Msg("Error writing metrics")
		keep(err)
	}

	stats := a.Cache.Stats()
	a.Cache.Close()
	a.HTTPClient.CloseIdleConnections()

	a.Logger.Debug().
		Dur("uptime", a.Uptime()).
		Uint64("cache_hits", stats.Hits).
		Uint64("cache_misses", stats.Misses).
		Msg("Application shutdown complete")
	return first
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
