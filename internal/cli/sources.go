package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/schollz/progressbar/v3"

	"github.com/law-makers/boxscore/internal/app"
	"github.com/law-makers/boxscore/internal/extract"
)

const dateLayout = "2006-01-02"

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return d, nil
}

// indexLinks lists the box-score URLs of the daily scores page for date
func indexLinks(ctx context.Context, a *app.Application, date time.Time, browser bool) ([]string, error) {
	url, err := extract.BoxScoreIndexURL(a.Config.BaseURL, date)
	if err != nil {
		return nil, err
	}

	var doc *goquery.Document
	if browser {
		doc, err = a.Browser().Fetch(ctx, url)
	} else {
		doc, err = a.Fetcher.Fetch(ctx, url)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching index %s: %w", url, err)
	}

	links, err := extract.BoxScoreLinks(doc, url)
	if err != nil {
		return nil, fmt.Errorf("reading index %s: %w", url, err)
	}
	a.Logger.Info().
		Str("date", date.Format(dateLayout)).
		Int("games", len(links)).
		Msg("Box score index read")
	return links, nil
}

// readURLs returns one URL per line, skipping blanks and # comments
func readURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

func readURLFile(path string) ([]string, error) {
	if path == "-" {
		return readURLs(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readURLs(f)
}

// dedupe keeps the first occurrence of every URL
func dedupe(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := urls[:0:0]
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

// newProgressBar returns nil when output should stay quiet
func newProgressBar(a *app.Application, total int, description string) *progressbar.ProgressBar {
	if quietOutput(a) || total <= 1 {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionClearOnFinish(),
	)
}
