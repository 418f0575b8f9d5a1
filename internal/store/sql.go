package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"

	"github.com/law-makers/boxscore/pkg/models"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore stores players in a SQL table through database/sql.
// The "sqlite" driver opens a local file, "libsql" a remote libSQL URL.
type SQLStore struct {
	db    *sql.DB
	table string
}

// OpenSQL opens the database and creates the players table if needed
func OpenSQL(ctx context.Context, driver, dsn, table string) (*SQLStore, error) {
	if dsn == "" {
		return nil, fmt.Errorf("%s store: a dsn was not specified", driver)
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", driver, err)
	}

	if driver == "sqlite" {
		// a single connection keeps :memory: databases shared and avoids
		// SQLITE_BUSY on concurrent writes
		db.SetMaxOpenConns(1)
		if dsn != ":memory:" {
			if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
				db.Close()
				return nil, fmt.Errorf("enabling WAL: %w", err)
			}
		}
	}

	s := &SQLStore{db: db, table: table}
	if err := s.ensureSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug().Str("driver", driver).Str("table", table).Msg("SQL store ready")
	return s, nil
}

// NewSQL wraps an already open database. The schema is created if needed.
func NewSQL(ctx context.Context, db *sql.DB, table string) (*SQLStore, error) {
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	s := &SQLStore{db: db, table: table}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) ensureSchema(ctx context.Context) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	player_id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name        TEXT NOT NULL,
	team_name   TEXT NOT NULL,
	league      TEXT NOT NULL,
	scores      TEXT NOT NULL DEFAULT '[]',
	position    TEXT NOT NULL DEFAULT '',
	height      TEXT NOT NULL DEFAULT '',
	weight      TEXT NOT NULL DEFAULT '',
	age         TEXT NOT NULL DEFAULT '',
	year        TEXT NOT NULL DEFAULT '',
	nationality TEXT NOT NULL DEFAULT '',
	number      TEXT NOT NULL DEFAULT '',
	UNIQUE (name, team_name, league)
)`, s.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_league_team ON %s (league, team_name)`, s.table, s.table),
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Find looks up an entity by exact key
func (s *SQLStore) Find(ctx context.Context, key models.Key) (models.Entity, bool, error) {
	query := fmt.Sprintf(
		`SELECT player_id, scores FROM %s WHERE name = ? AND team_name = ? AND league = ? LIMIT 1`,
		s.table,
	)

	var (
		id     int64
		scores sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, key.Name, key.Team, string(key.League)).Scan(&id, &scores)
	if err == sql.ErrNoRows {
		return models.Entity{}, false, nil
	}
	if err != nil {
		return models.Entity{}, false, fmt.Errorf("querying %s: %w", key, err)
	}

	series, err := decodeSeries(scores.String)
	if err != nil {
		return models.Entity{}, false, fmt.Errorf("decoding scores of %d: %w", id, err)
	}
	return models.Entity{ID: id, Key: key, Series: series}, true, nil
}

// UpdateSeries overwrites the scores column of one player
func (s *SQLStore) UpdateSeries(ctx context.Context, id int64, series []float64) error {
	encoded, err := encodeSeries(series)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE %s SET scores = ? WHERE player_id = ?`, s.table),
		encoded, id,
	)
	if err != nil {
		return fmt.Errorf("updating scores of %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// Insert creates a player record
func (s *SQLStore) Insert(ctx context.Context, p models.Player) (int64, error) {
	encoded, err := encodeSeries(p.Scores)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s
	(name, team_name, league, scores, position, height, weight, age, year, nationality, number)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table),
		p.Name, p.Team, string(p.League), encoded,
		p.Position, p.Height, p.Weight, p.Age, p.Year, p.Nationality, p.Number,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return 0, fmt.Errorf("%w: %s", ErrDuplicate, p.Key())
		}
		return 0, fmt.Errorf("inserting %s: %w", p.Key(), err)
	}
	return res.LastInsertId()
}

// Teams lists the distinct teams of a league
func (s *SQLStore) Teams(ctx context.Context, league models.League) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT DISTINCT team_name FROM %s WHERE league = ? ORDER BY team_name`, s.table),
		string(league),
	)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []string
	for rows.Next() {
		var team string
		if err := rows.Scan(&team); err != nil {
			return nil, err
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

func encodeSeries(series []float64) (string, error) {
	if series == nil {
		series = []float64{}
	}
	b, err := json.Marshal(series)
	if err != nil {
		return "", fmt.Errorf("encoding series: %w", err)
	}
	return string(b), nil
}

func decodeSeries(raw string) ([]float64, error) {
	series := []float64{}
	if strings.TrimSpace(raw) == "" {
		return series, nil
	}
	if err := json.Unmarshal([]byte(raw), &series); err != nil {
		return nil, err
	}
	return series, nil
}
