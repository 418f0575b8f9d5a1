// Package reconcile matches freshly scraped scoring rows against existing
// player records and appends each observation to the player's score series.
package reconcile

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/law-makers/boxscore/internal/canon"
	"github.com/law-makers/boxscore/pkg/models"
)

// Store is the persisted entity store the reconciler reads and writes.
// Find reports found=false with a nil error when no entity has the key.
type Store interface {
	Find(ctx context.Context, key models.Key) (models.Entity, bool, error)
	UpdateSeries(ctx context.Context, id int64, series []float64) error
}

// TeamLister is implemented by stores that can enumerate the teams of a
// league. It is only used to explain misses.
type TeamLister interface {
	Teams(ctx context.Context, league models.League) ([]string, error)
}

// Status is the result class of a single reconciliation
type Status int

const (
	StatusUpdated Status = iota
	StatusMissed
	StatusParseError
	StatusStoreError
)

func (s Status) String() string {
	switch s {
	case StatusUpdated:
		return "updated"
	case StatusMissed:
		return "missed"
	case StatusParseError:
		return "parse_error"
	case StatusStoreError:
		return "store_error"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome describes what happened to one row
type Outcome struct {
	Status Status
	Key    models.Key

	// Set when Status is StatusUpdated
	EntityID int64
	Series   []float64

	// Set when Status is StatusMissed
	Miss       MissReason
	Suggestion string

	// Set when Status is StatusParseError or StatusStoreError
	Err error
}

// Reconciler appends observations to existing entities. It holds no state
// between calls besides its immutable label table.
type Reconciler struct {
	store  Store
	labels *canon.Table
}

// New creates a Reconciler. A nil table canonicalizes with the generic
// transform only.
func New(store Store, labels *canon.Table) *Reconciler {
	return &Reconciler{
		store:  store,
		labels: labels,
	}
}

// Key returns the identity key a row resolves to
func (r *Reconciler) Key(row models.Row) models.Key {
	return models.Key{
		Name:   strings.TrimSpace(row.Name),
		Team:   r.labels.Canonicalize(row.Team),
		League: row.League,
	}
}

// Reconcile resolves row against the store and appends its observation to
// the matching entity's series. Unmatched rows are never inserted.
func (r *Reconciler) Reconcile(ctx context.Context, row models.Row) Outcome {
	key := r.Key(row)

	value, err := ParseObservation(row.Observation)
	if err != nil {
		return Outcome{Status: StatusParseError, Key: key, Err: err}
	}

	entity, found, err := r.store.Find(ctx, key)
	if err != nil {
		return Outcome{
			Status: StatusStoreError,
			Key:    key,
			Err:    NewError(ErrCodeStore, "lookup "+key.String(), err),
		}
	}
	if !found {
		miss, suggestion := r.diagnose(ctx, key)
		return Outcome{Status: StatusMissed, Key: key, Miss: miss, Suggestion: suggestion}
	}

	series := make([]float64, len(entity.Series), len(entity.Series)+1)
	copy(series, entity.Series)
	series = append(series, value)

	if err := r.store.UpdateSeries(ctx, entity.ID, series); err != nil {
		return Outcome{
			Status:   StatusStoreError,
			Key:      key,
			EntityID: entity.ID,
			Err:      NewError(ErrCodeStore, fmt.Sprintf("update series of %d", entity.ID), err),
		}
	}

	return Outcome{
		Status:   StatusUpdated,
		Key:      key,
		EntityID: entity.ID,
		Series:   series,
	}
}

// ParseObservation parses a scraped stat cell. Only finite, non-negative
// decimals are accepted.
func ParseObservation(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, NewError(ErrCodeParse, "empty observation", nil)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, NewError(ErrCodeParse, fmt.Sprintf("observation %q is not a number", s), err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, NewError(ErrCodeParse, fmt.Sprintf("observation %q is not finite", s), nil)
	}
	if v < 0 {
		return 0, NewError(ErrCodeParse, fmt.Sprintf("observation %q is negative", s), nil)
	}
	return v, nil
}
