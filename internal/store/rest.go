package store

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/law-makers/boxscore/pkg/models"
)

// RESTStore talks to a PostgREST-style table API (as exposed by Supabase):
// filters are query parameters of the form column=eq.value.
type RESTStore struct {
	client *resty.Client
	table  string
}

type restRow struct {
	PlayerID int64     `json:"player_id"`
	TeamName string    `json:"team_name,omitempty"`
	Scores   []float64 `json:"scores,omitempty"`
}

// NewREST creates a RESTStore rooted at baseURL (the project URL, without
// the /rest/v1 suffix). apiKey is sent both as apikey and bearer token.
func NewREST(baseURL, apiKey, table string, timeout time.Duration) (*RESTStore, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("rest store: a url was not specified")
	}
	if table == "" {
		table = DefaultTable
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/rest/v1").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)
	if apiKey != "" {
		client.SetHeader("apikey", apiKey)
		client.SetAuthToken(apiKey)
	}

	return &RESTStore{client: client, table: table}, nil
}

// Find looks up an entity by exact key
func (s *RESTStore) Find(ctx context.Context, key models.Key) (models.Entity, bool, error) {
	var rows []restRow
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select":    "player_id,scores",
			"league":    "eq." + string(key.League),
			"team_name": "eq." + key.Team,
			"name":      "eq." + key.Name,
			"limit":     "1",
		}).
		SetResult(&rows).
		Get("/" + s.table)
	if err != nil {
		return models.Entity{}, false, fmt.Errorf("querying %s: %w", key, err)
	}
	if res.IsError() {
		return models.Entity{}, false, responseError("querying "+key.String(), res)
	}
	if len(rows) == 0 {
		return models.Entity{}, false, nil
	}

	series := rows[0].Scores
	if series == nil {
		series = []float64{}
	}
	return models.Entity{ID: rows[0].PlayerID, Key: key, Series: series}, true, nil
}

// UpdateSeries overwrites the scores column of one player
func (s *RESTStore) UpdateSeries(ctx context.Context, id int64, series []float64) error {
	if series == nil {
		series = []float64{}
	}

	var rows []restRow
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParam("player_id", "eq."+strconv.FormatInt(id, 10)).
		SetHeader("Prefer", "return=representation").
		SetBody(map[string]any{"scores": series}).
		SetResult(&rows).
		Patch("/" + s.table)
	if err != nil {
		return fmt.Errorf("updating scores of %d: %w", id, err)
	}
	if res.IsError() {
		return responseError(fmt.Sprintf("updating scores of %d", id), res)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return nil
}

// Insert creates a player record
func (s *RESTStore) Insert(ctx context.Context, p models.Player) (int64, error) {
	if p.Scores == nil {
		p.Scores = []float64{}
	}
	p.ID = 0

	var rows []restRow
	res, err := s.client.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(p).
		SetResult(&rows).
		Post("/" + s.table)
	if err != nil {
		return 0, fmt.Errorf("inserting %s: %w", p.Key(), err)
	}
	if res.StatusCode() == http.StatusConflict {
		return 0, fmt.Errorf("%w: %s", ErrDuplicate, p.Key())
	}
	if res.IsError() {
		return 0, responseError("inserting "+p.Key().String(), res)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("inserting %s: empty response", p.Key())
	}
	return rows[0].PlayerID, nil
}

// Teams lists the distinct teams of a league
func (s *RESTStore) Teams(ctx context.Context, league models.League) ([]string, error) {
	var rows []restRow
	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"select": "team_name",
			"league": "eq." + string(league),
		}).
		SetResult(&rows).
		Get("/" + s.table)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	if res.IsError() {
		return nil, responseError("listing teams", res)
	}

	seen := make(map[string]struct{}, len(rows))
	teams := make([]string, 0, len(rows))
	for _, r := range rows {
		if _, ok := seen[r.TeamName]; ok {
			continue
		}
		seen[r.TeamName] = struct{}{}
		teams = append(teams, r.TeamName)
	}
	sort.Strings(teams)
	return teams, nil
}

// Close releases idle connections
func (s *RESTStore) Close() error {
	s.client.GetClient().CloseIdleConnections()
	return nil
}

// StatusError is returned when the table API answers with an error status
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
}

func responseError(op string, res *resty.Response) error {
	body := strings.TrimSpace(res.String())
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return &StatusError{Op: op, StatusCode: res.StatusCode(), Body: body}
}
