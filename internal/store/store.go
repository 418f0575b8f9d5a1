// Package store persists player records and their score series.
//
// Three backends are provided: SQLStore (local SQLite file or a remote libSQL
// database), RESTStore (a PostgREST-style table API) and MemoryStore.
// None of them guard against concurrent writers: updating a series is a
// read-then-write round trip and the last write wins.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/boxscore/pkg/models"
)

var (
	ErrUnknownDriver = errors.New("unknown store driver")
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicate     = errors.New("entity already exists")
)

// DefaultTable is the table player records live in
const DefaultTable = "players"

// Store is the full entity store used by the CLI: the reconciler's lookup
// and update plus roster creation.
type Store interface {
	Find(ctx context.Context, key models.Key) (models.Entity, bool, error)
	UpdateSeries(ctx context.Context, id int64, series []float64) error
	Insert(ctx context.Context, p models.Player) (int64, error)
	Teams(ctx context.Context, league models.League) ([]string, error)
	Close() error
}

// Options selects and configures a backend
type Options struct {
	// Driver is one of sqlite, libsql, rest, memory
	Driver string
	// DSN is a file path (sqlite) or database URL (libsql)
	DSN string
	// URL and APIKey address the REST backend
	URL     string
	APIKey  string
	Table   string
	Timeout time.Duration
}

// Open creates the backend named by opts.Driver
func Open(ctx context.Context, opts Options) (Store, error) {
	if opts.Table == "" {
		opts.Table = DefaultTable
	}

	log.Debug().
		Str("driver", opts.Driver).
		Str("table", opts.Table).
		Msg("Opening store")

	switch strings.ToLower(opts.Driver) {
	case "sqlite", "":
		return OpenSQL(ctx, "sqlite", opts.DSN, opts.Table)
	case "libsql":
		return OpenSQL(ctx, "libsql", opts.DSN, opts.Table)
	case "rest":
		return NewREST(opts.URL, opts.APIKey, opts.Table, opts.Timeout)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, opts.Driver)
	}
}

// readOnly forwards lookups and drops writes
type readOnly struct {
	Store
}

// ReadOnly wraps s so that UpdateSeries and Insert are logged and discarded.
// It backs dry runs.
func ReadOnly(s Store) Store {
	return readOnly{Store: s}
}

func (r readOnly) UpdateSeries(ctx context.Context, id int64, series []float64) error {
	log.Info().
		Int64("entity_id", id).
		Floats64("series", series).
		Msg("Dry run: series update skipped")
	return nil
}

func (r readOnly) Insert(ctx context.Context, p models.Player) (int64, error) {
	log.Info().
		Str("name", p.Name).
		Str("team", p.Team).
		Msg("Dry run: insert skipped")
	return 0, nil
}
