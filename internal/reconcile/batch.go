package reconcile

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/boxscore/pkg/models"
)

// RowSource turns one source identifier into extracted rows (fetch + extract)
type RowSource interface {
	Rows(ctx context.Context, url string) ([]models.Row, error)
}

// Checkpoint remembers applied rows and completed documents so that a re-run
// does not append the same observation twice.
type Checkpoint interface {
	Done(url string) bool
	Applied(url string, key models.Key) bool
	Record(url string, key models.Key) error
	Complete(url string) error
}

// Recorder receives per-row and per-document results, typically metrics
type Recorder interface {
	RowOutcome(outcome string)
	Document(status string, elapsed time.Duration)
}

// DocumentStatus is the final state of one source document
type DocumentStatus string

const (
	DocumentOK        DocumentStatus = "ok"
	DocumentFailed    DocumentStatus = "failed"
	DocumentSkipped   DocumentStatus = "skipped"
	DocumentCancelled DocumentStatus = "cancelled"
)

// DocumentReport summarizes the reconciliation of one source document
type DocumentReport struct {
	URL         string
	Status      DocumentStatus
	Rows        int
	Updated     int
	Missed      int
	ParseErrors int
	StoreErrors int
	SkippedRows int
	Unprocessed int
	Misses      []Outcome
	Err         error
	Elapsed     time.Duration
}

// Summary aggregates counts over a whole run
type Summary struct {
	Documents   int
	Succeeded   int
	Failed      int
	Skipped     int
	Updated     int
	Missed      int
	ParseErrors int
	StoreErrors int
	SkippedRows int
}

// Report is the result of a batch run
type Report struct {
	Documents []DocumentReport
	Summary   Summary
	Cancelled bool
}

// FailedURLs lists documents that did not complete, in input order
func (r Report) FailedURLs() []string {
	var urls []string
	for _, d := range r.Documents {
		if d.Status == DocumentFailed || d.Status == DocumentCancelled {
			urls = append(urls, d.URL)
		}
	}
	return urls
}

func (r *Report) add(d DocumentReport) {
	r.Documents = append(r.Documents, d)
	s := &r.Summary
	s.Documents++
	switch d.Status {
	case DocumentOK:
		s.Succeeded++
	case DocumentSkipped:
		s.Skipped++
	default:
		s.Failed++
	}
	s.Updated += d.Updated
	s.Missed += d.Missed
	s.ParseErrors += d.ParseErrors
	s.StoreErrors += d.StoreErrors
	s.SkippedRows += d.SkippedRows
}

// BatchOption configures a Batch
type BatchOption func(*Batch)

// WithCheckpoint enables resume bookkeeping
func WithCheckpoint(cp Checkpoint) BatchOption {
	return func(b *Batch) { b.checkpoint = cp }
}

// WithRecorder attaches a metrics recorder
func WithRecorder(rec Recorder) BatchOption {
	return func(b *Batch) { b.recorder = rec }
}

// WithDocumentHook registers a callback invoked after every document
func WithDocumentHook(fn func(DocumentReport)) BatchOption {
	return func(b *Batch) { b.onDocument = fn }
}

// Batch runs the reconciler over a list of source documents, one at a time.
// Failures stay local to the row or document they occur in.
type Batch struct {
	source     RowSource
	reconciler *Reconciler
	checkpoint Checkpoint
	recorder   Recorder
	onDocument func(DocumentReport)
}

// NewBatch creates a Batch
func NewBatch(source RowSource, reconciler *Reconciler, opts ...BatchOption) *Batch {
	b := &Batch{
		source:     source,
		reconciler: reconciler,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run processes urls sequentially and returns the aggregated report.
// Cancelling ctx stops the run between rows; rows already applied stay applied.
func (b *Batch) Run(ctx context.Context, urls []string) Report {
	var report Report

	for _, url := range urls {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		doc := b.runDocument(ctx, url)
		if doc.Status == DocumentCancelled {
			report.Cancelled = true
		}
		report.add(doc)

		if b.recorder != nil {
			b.recorder.Document(string(doc.Status), doc.Elapsed)
		}
		if b.onDocument != nil {
			b.onDocument(doc)
		}
		if report.Cancelled {
			break
		}
	}

	log.Info().
		Int("documents", report.Summary.Documents).
		Int("failed", report.Summary.Failed).
		Int("updated", report.Summary.Updated).
		Int("missed", report.Summary.Missed).
		Int("parse_errors", report.Summary.ParseErrors).
		Int("store_errors", report.Summary.StoreErrors).
		Bool("cancelled", report.Cancelled).
		Msg("Batch finished")

	return report
}

func (b *Batch) runDocument(ctx context.Context, url string) (doc DocumentReport) {
	start := time.Now()
	doc.URL = url
	defer func() { doc.Elapsed = time.Since(start) }()

	if b.checkpoint != nil && b.checkpoint.Done(url) {
		log.Info().Str("url", url).Msg("Document already reconciled, skipping")
		doc.Status = DocumentSkipped
		return doc
	}

	rows, err := b.source.Rows(ctx, url)
	if err != nil {
		if CodeOf(err) == "" {
			err = NewError(ErrCodeFetch, "rows of "+url, err)
		}
		log.Error().Err(err).Str("url", url).Msg("Failed to load document")
		doc.Status = DocumentFailed
		doc.Err = err
		if errors.Is(err, context.Canceled) {
			doc.Status = DocumentCancelled
		}
		return doc
	}
	doc.Rows = len(rows)

	for i, row := range rows {
		if ctx.Err() != nil {
			doc.Status = DocumentCancelled
			doc.Err = ctx.Err()
			doc.Unprocessed = len(rows) - i
			return doc
		}

		key := b.reconciler.Key(row)
		if b.checkpoint != nil && b.checkpoint.Applied(url, key) {
			doc.SkippedRows++
			continue
		}

		outcome := b.reconciler.Reconcile(ctx, row)
		if outcome.Status == StatusStoreError && (ctx.Err() != nil || errors.Is(outcome.Err, context.Canceled)) {
			// interrupted mid-write, the row was not applied
			doc.Status = DocumentCancelled
			doc.Err = outcome.Err
			doc.Unprocessed = len(rows) - i
			return doc
		}
		if b.recorder != nil {
			b.recorder.RowOutcome(outcome.Status.String())
		}

		switch outcome.Status {
		case StatusUpdated:
			doc.Updated++
			log.Debug().
				Str("name", outcome.Key.Name).
				Str("team", outcome.Key.Team).
				Int64("entity_id", outcome.EntityID).
				Int("series_len", len(outcome.Series)).
				Msg("Series updated")
			if b.checkpoint != nil {
				if err := b.checkpoint.Record(url, outcome.Key); err != nil {
					log.Error().Err(err).Str("url", url).Msg("Failed to journal applied row")
				}
			}

		case StatusMissed:
			doc.Missed++
			doc.Misses = append(doc.Misses, outcome)
			ev := log.Warn().
				Str("name", outcome.Key.Name).
				Str("team", outcome.Key.Team).
				Str("league", string(outcome.Key.League)).
				Str("reason", outcome.Miss.String())
			if outcome.Suggestion != "" {
				ev = ev.Str("did_you_mean", outcome.Suggestion)
			}
			ev.Msg("Missed")

		case StatusParseError:
			doc.ParseErrors++
			log.Warn().Err(outcome.Err).Str("name", outcome.Key.Name).Msg("Skipping row")

		case StatusStoreError:
			doc.StoreErrors++
			doc.Unprocessed = len(rows) - i - 1
			doc.Status = DocumentFailed
			doc.Err = outcome.Err
			log.Error().
				Err(outcome.Err).
				Str("url", url).
				Int("unprocessed", doc.Unprocessed).
				Msg("Store error, abandoning document")
			return doc
		}
	}

	doc.Status = DocumentOK
	if b.checkpoint != nil {
		if err := b.checkpoint.Complete(url); err != nil {
			log.Error().Err(err).Str("url", url).Msg("Failed to journal completed document")
		}
	}
	return doc
}
