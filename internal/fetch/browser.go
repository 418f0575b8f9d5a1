// internal/fetch/browser.go
package fetch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"

	"github.com/law-makers/boxscore/internal/ratelimit"
	"github.com/law-makers/boxscore/internal/retry"
	urlutil "github.com/law-makers/boxscore/internal/utils/url"
)

// BrowserOptions configures the headless browser fetcher
type BrowserOptions struct {
	ChromePath string
	Headless   bool
	UserAgent  string
	Timeout    time.Duration
	Limiter    ratelimit.RateLimiter
}

// Browser renders documents in headless Chrome. The browser process starts
// on the first Fetch and is reused until Close.
type Browser struct {
	opts BrowserOptions

	mu          sync.Mutex
	browserCtx  context.Context
	allocCancel context.CancelFunc
	cancel      context.CancelFunc
}

// NewBrowser creates a browser fetcher without starting Chrome
func NewBrowser(opts BrowserOptions) *Browser {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Browser{opts: opts}
}

func (b *Browser) start() (context.Context, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx != nil {
		return b.browserCtx, nil
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", b.opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(b.opts.UserAgent),
	)
	if path := FindChrome(b.opts.ChromePath); path != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(path))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(browserCtx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Debug().Bool("headless", b.opts.Headless).Msg("Browser started")

	b.browserCtx = browserCtx
	b.allocCancel = allocCancel
	b.cancel = cancel
	return browserCtx, nil
}

// Fetch navigates a fresh tab to url and returns the rendered document
func (b *Browser) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	if err := urlutil.ValidateURL(url); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if b.opts.Limiter != nil {
		if err := b.opts.Limiter.Wait(ctx, url); err != nil {
			return nil, err
		}
	}

	browserCtx, err := b.start()
	if err != nil {
		return nil, err
	}

	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.opts.Timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTimeout)
	defer stop()

	var (
		statusMu sync.Mutex
		status   int64
		statusOf string
	)
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		if e, ok := ev.(*network.EventResponseReceived); ok && e.Type == network.ResourceTypeDocument {
			statusMu.Lock()
			if status == 0 {
				status = e.Response.Status
				statusOf = e.Response.StatusText
			}
			statusMu.Unlock()
		}
	})

	start := time.Now()
	var html string
	err = chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("browser fetch %s: %w", url, err)
	}

	statusMu.Lock()
	code, text := int(status), statusOf
	statusMu.Unlock()
	if code != 0 && (code < 200 || code > 299) {
		return nil, &retry.StatusError{URL: url, StatusCode: code, Status: fmt.Sprintf("%d %s", code, text)}
	}

	log.Debug().
		Str("url", url).
		Int("status", code).
		Int("bytes", len(html)).
		Dur("elapsed", time.Since(start)).
		Msg("Browser fetch completed")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse rendered HTML from %s: %w", url, err)
	}
	return doc, nil
}

// Close shuts down the browser if it was started
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browserCtx == nil {
		return
	}
	b.cancel()
	b.allocCancel()
	b.browserCtx = nil
	log.Debug().Msg("Browser closed")
}
