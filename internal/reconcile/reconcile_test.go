package reconcile

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/law-makers/boxscore/internal/canon"
	"github.com/law-makers/boxscore/internal/store"
	"github.com/law-makers/boxscore/pkg/models"
)

// countingStore records calls and can be made to fail
type countingStore struct {
	*store.MemoryStore
	finds     int
	updates   int
	findErr   error
	updateErr error
}

func (c *countingStore) Find(ctx context.Context, key models.Key) (models.Entity, bool, error) {
	c.finds++
	if c.findErr != nil {
		return models.Entity{}, false, c.findErr
	}
	return c.MemoryStore.Find(ctx, key)
}

func (c *countingStore) UpdateSeries(ctx context.Context, id int64, series []float64) error {
	c.updates++
	if c.updateErr != nil {
		return c.updateErr
	}
	return c.MemoryStore.UpdateSeries(ctx, id, series)
}

// bareStore hides the TeamLister implementation of the memory store
type bareStore struct {
	s *store.MemoryStore
}

func (b bareStore) Find(ctx context.Context, key models.Key) (models.Entity, bool, error) {
	return b.s.Find(ctx, key)
}

func (b bareStore) UpdateSeries(ctx context.Context, id int64, series []float64) error {
	return b.s.UpdateSeries(ctx, id, series)
}

func seed(t *testing.T, players ...models.Player) *countingStore {
	t.Helper()
	mem := store.NewMemory()
	for _, p := range players {
		if _, err := mem.Insert(context.Background(), p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return &countingStore{MemoryStore: mem}
}

var janeDoe = models.Player{Name: "Jane Doe", Team: "UConn", League: models.LeagueNCAAM, Scores: []float64{12}}

func TestReconcile_Scenario(t *testing.T) {
	s := seed(t, janeDoe)
	r := New(s, canon.Default())

	out := r.Reconcile(context.Background(), models.Row{
		Name: "Jane Doe", Team: "connecticut", League: models.LeagueNCAAM, Observation: "18",
	})

	if out.Status != StatusUpdated {
		t.Fatalf("expected updated, got %s (%v)", out.Status, out.Err)
	}
	if diff := cmp.Diff([]float64{12, 18}, out.Series); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
	p, _ := s.Player(out.EntityID)
	if diff := cmp.Diff([]float64{12, 18}, p.Scores); diff != "" {
		t.Errorf("stored series mismatch (-want +got):\n%s", diff)
	}
}

func TestReconcile_AppendOnly(t *testing.T) {
	old := []float64{3, 0, 27.5, 9}
	s := seed(t, models.Player{Name: "A", Team: "Duke", League: models.LeagueNCAAM, Scores: old})
	r := New(s, canon.Default())

	for _, obs := range []string{"0", "14", " 7 ", "2.5"} {
		before, _, _ := s.MemoryStore.Find(context.Background(), models.Key{Name: "A", Team: "Duke", League: models.LeagueNCAAM})

		out := r.Reconcile(context.Background(), models.Row{Name: "A", Team: "duke", League: models.LeagueNCAAM, Observation: obs})
		if out.Status != StatusUpdated {
			t.Fatalf("observation %q: expected updated, got %s", obs, out.Status)
		}
		if len(out.Series) != len(before.Series)+1 {
			t.Fatalf("expected length %d, got %d", len(before.Series)+1, len(out.Series))
		}
		if diff := cmp.Diff(before.Series, out.Series[:len(out.Series)-1]); diff != "" {
			t.Errorf("prefix changed (-before +after):\n%s", diff)
		}
	}
}

func TestReconcile_NotIdempotent(t *testing.T) {
	s := seed(t, janeDoe)
	r := New(s, canon.Default())
	row := models.Row{Name: "Jane Doe", Team: "connecticut", League: models.LeagueNCAAM, Observation: "18"}

	r.Reconcile(context.Background(), row)
	out := r.Reconcile(context.Background(), row)

	// re-applying a row appends it again
	if diff := cmp.Diff([]float64{12, 18, 18}, out.Series); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
	if s.updates != 2 {
		t.Errorf("expected 2 updates, got %d", s.updates)
	}
}

func TestReconcile_IdentityExactness(t *testing.T) {
	s := seed(t, janeDoe)

	// without the alias the raw label goes through the generic transform only
	raw := New(s, canon.NewTable(nil))
	out := raw.Reconcile(context.Background(), models.Row{Name: "Jane Doe", Team: "connecticut", League: models.LeagueNCAAM, Observation: "18"})
	if out.Status != StatusMissed {
		t.Fatalf("expected missed without canonicalization, got %s", out.Status)
	}
	if out.Key.Team != "Connecticut" {
		t.Errorf("expected generic label Connecticut, got %q", out.Key.Team)
	}

	withAlias := New(s, canon.Default())
	out = withAlias.Reconcile(context.Background(), models.Row{Name: "Jane Doe", Team: "connecticut", League: models.LeagueNCAAM, Observation: "18"})
	if out.Status != StatusUpdated {
		t.Fatalf("expected updated after canonicalization, got %s", out.Status)
	}

	// store lookups themselves are exact
	if _, found, _ := s.Find(context.Background(), models.Key{Name: "Jane Doe", Team: "connecticut", League: models.LeagueNCAAM}); found {
		t.Error("raw label must not match the canonical entity")
	}
}

func TestReconcile_MissLeavesStoreUntouched(t *testing.T) {
	s := seed(t, janeDoe)
	r := New(s, canon.Default())

	out := r.Reconcile(context.Background(), models.Row{Name: "John Roe", Team: "connecticut", League: models.LeagueNCAAM, Observation: "4"})

	if out.Status != StatusMissed {
		t.Fatalf("expected missed, got %s", out.Status)
	}
	if s.finds != 1 {
		t.Errorf("expected 1 find, got %d", s.finds)
	}
	if s.updates != 0 {
		t.Errorf("expected no update, got %d", s.updates)
	}
	teams, _ := s.Teams(context.Background(), models.LeagueNCAAM)
	if len(teams) != 1 {
		t.Errorf("miss must not create records, teams=%v", teams)
	}
}

func TestReconcile_MissDiagnosis(t *testing.T) {
	s := seed(t,
		janeDoe,
		models.Player{Name: "Sam Poe", Team: "Saint Mary's", League: models.LeagueNCAAM},
	)
	r := New(s, canon.Default())

	out := r.Reconcile(context.Background(), models.Row{Name: "John Roe", Team: "UConn", League: models.LeagueNCAAM, Observation: "4"})
	if out.Miss != MissNotOnRoster {
		t.Errorf("expected not_on_roster, got %s", out.Miss)
	}

	out = r.Reconcile(context.Background(), models.Row{Name: "Sam Poe", Team: "saint-marys", League: models.LeagueNCAAM, Observation: "4"})
	if out.Miss != MissUnknownTeam {
		t.Errorf("expected unknown_team, got %s", out.Miss)
	}
	if out.Suggestion != "Saint Mary's" {
		t.Errorf("expected suggestion Saint Mary's, got %q", out.Suggestion)
	}

	bare := New(bareStore{s: s.MemoryStore}, canon.Default())
	out = bare.Reconcile(context.Background(), models.Row{Name: "X", Team: "UConn", League: models.LeagueNCAAM, Observation: "1"})
	if out.Status != StatusMissed || out.Miss != MissUndiagnosed {
		t.Errorf("expected undiagnosed miss, got %s/%s", out.Status, out.Miss)
	}
}

func TestReconcile_ParseErrors(t *testing.T) {
	s := seed(t, janeDoe)
	r := New(s, canon.Default())

	for _, obs := range []string{"", "DNP", "-3", "NaN", "+Inf", "1e400", "12pts"} {
		out := r.Reconcile(context.Background(), models.Row{Name: "Jane Doe", Team: "connecticut", League: models.LeagueNCAAM, Observation: obs})
		if out.Status != StatusParseError {
			t.Errorf("observation %q: expected parse error, got %s", obs, out.Status)
			continue
		}
		if CodeOf(out.Err) != ErrCodeParse {
			t.Errorf("observation %q: expected PARSE_ERROR code, got %q", obs, CodeOf(out.Err))
		}
	}
	if s.finds != 0 || s.updates != 0 {
		t.Errorf("parse errors must not touch the store (finds=%d updates=%d)", s.finds, s.updates)
	}
}

func TestReconcile_StoreErrors(t *testing.T) {
	boom := errors.New("connection refused")

	s := seed(t, janeDoe)
	s.findErr = boom
	out := New(s, canon.Default()).Reconcile(context.Background(), models.Row{Name: "Jane Doe", Team: "connecticut", League: models.LeagueNCAAM, Observation: "1"})
	if out.Status != StatusStoreError {
		t.Fatalf("expected store error on find, got %s", out.Status)
	}
	if !errors.Is(out.Err, boom) || !errors.Is(out.Err, &Error{Code: ErrCodeStore}) {
		t.Errorf("expected wrapped STORE_ERROR, got %v", out.Err)
	}

	s = seed(t, janeDoe)
	s.updateErr = boom
	out = New(s, canon.Default()).Reconcile(context.Background(), models.Row{Name: "Jane Doe", Team: "connecticut", League: models.LeagueNCAAM, Observation: "1"})
	if out.Status != StatusStoreError {
		t.Fatalf("expected store error on update, got %s", out.Status)
	}
	p, _ := s.Player(out.EntityID)
	if len(p.Scores) != 1 {
		t.Errorf("failed update must leave series alone, got %v", p.Scores)
	}
}

func TestParseObservation(t *testing.T) {
	good := map[string]float64{"0": 0, "18": 18, " 7.5 ": 7.5, "1e2": 100}
	for raw, want := range good {
		got, err := ParseObservation(raw)
		if err != nil || got != want {
			t.Errorf("ParseObservation(%q) = %v, %v; want %v", raw, got, err, want)
		}
	}
}

func TestReconcile_DisplayTeamLabel(t *testing.T) {
	embiid := models.Player{Name: "Joel Embiid", Team: "Philadelphia 76ers", League: models.LeagueNBA}
	s := seed(t, embiid)
	r := New(s, canon.Default())

	out := r.Reconcile(context.Background(), models.Row{Name: "Joel Embiid", Team: "Philadelphia 76ers", League: models.LeagueNBA, Observation: "30"})
	if out.Status != StatusUpdated {
		t.Fatalf("expected updated, got %s (team %q)", out.Status, out.Key.Team)
	}
	if diff := cmp.Diff([]float64{30}, out.Series); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
}
