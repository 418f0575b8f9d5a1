// internal/fetch/fetcher.go
package fetch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html/charset"

	"github.com/law-makers/boxscore/internal/cache"
	"github.com/law-makers/boxscore/internal/ratelimit"
	"github.com/law-makers/boxscore/internal/retry"
	urlutil "github.com/law-makers/boxscore/internal/utils/url"
)

// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs
var ErrInvalidURL = errors.New("invalid document URL")

// DefaultUserAgent identifies the fetcher to the sites it reads
const DefaultUserAgent = "boxscore/1.0 (+https://github.com/law-makers/boxscore)"

// ErrBodyTooLarge is returned when a document exceeds maxBodyBytes
var ErrBodyTooLarge = errors.New("document body too large")

// maxBodyBytes bounds a single document read
var maxBodyBytes int64 = 16 << 20

// Options configures an HTTPFetcher. Zero values disable the optional parts.
type Options struct {
	Cache     cache.Cache
	CacheTTL  time.Duration
	Limiter   ratelimit.RateLimiter
	Retry     retry.Config
	UserAgent string
	// Observe receives the wall time of every network round trip
	Observe func(time.Duration)
}

// HTTPFetcher retrieves static HTML documents and parses them with goquery
type HTTPFetcher struct {
	client *http.Client
	opts   Options
}

// New creates an HTTPFetcher over client
func New(client *http.Client, opts Options) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = retry.DefaultConfig()
	}
	return &HTTPFetcher{client: client, opts: opts}
}

// Fetch returns the parsed document at url
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := f.FetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", url, err)
	}
	return doc, nil
}

// FetchBytes returns the UTF-8 body at url, consulting the cache first
func (f *HTTPFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	if err := urlutil.ValidateURL(url); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if f.opts.Cache != nil {
		if body, ok := f.opts.Cache.Get(url); ok {
			return body, nil
		}
	}

	var body []byte
	err := retry.Do(ctx, f.opts.Retry, func(ctx context.Context) error {
		if f.opts.Limiter != nil {
			if err := f.opts.Limiter.Wait(ctx, url); err != nil {
				return err
			}
		}
		b, err := f.get(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if f.opts.Cache != nil {
		if err := f.opts.Cache.Set(url, body, f.opts.CacheTTL); err != nil {
			log.Debug().Err(err).Str("url", url).Msg("Failed to cache document")
		}
	}
	return body, nil
}

func (f *HTTPFetcher) get(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if f.opts.Observe != nil {
		f.opts.Observe(time.Since(start))
	}

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, retry.NewStatusError(url, resp)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if int64(len(raw)) > maxBodyBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, url, maxBodyBytes)
	}

	reader, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", url, err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", url, err)
	}

	log.Debug().
		Str("url", url).
		Int("status", resp.StatusCode).
		Int("bytes", len(body)).
		Dur("elapsed", time.Since(start)).
		Msg("Fetch completed")

	return body, nil
}
