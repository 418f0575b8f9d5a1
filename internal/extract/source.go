package extract

import (
	"context"
	"errors"

	"github.com/PuerkitoBio/goquery"

	"github.com/law-makers/boxscore/internal/reconcile"
	"github.com/law-makers/boxscore/pkg/models"
)

// Fetcher returns the parsed document at a URL
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// BoxScoreSource fetches box-score pages and extracts their rows
type BoxScoreSource struct {
	Fetcher Fetcher
	League  models.League
}

// Rows implements reconcile.RowSource
func (s BoxScoreSource) Rows(ctx context.Context, url string) ([]models.Row, error) {
	doc, err := s.Fetcher.Fetch(ctx, url)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, reconcile.NewError(reconcile.ErrCodeFetch, "fetching "+url, err)
	}

	rows, err := BoxScore(doc, s.League)
	if err != nil {
		return nil, reconcile.NewError(reconcile.ErrCodeExtract, "extracting "+url, err)
	}
	return rows, nil
}
