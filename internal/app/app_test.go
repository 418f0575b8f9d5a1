package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/law-makers/boxscore/internal/config"
	"github.com/law-makers/boxscore/internal/runctx"
	"github.com/law-makers/boxscore/pkg/models"
)

func testConfig(t *testing.T) *config.Config {
	cfg := config.Default()
	cfg.StoreDriver = "memory"
	cfg.RequestDelay = 0
	cfg.MetricsFile = filepath.Join(t.TempDir(), "boxscore.prom")
	cfg.LabelAliases = map[string]string{"nc-state": "NC State"}
	return cfg
}

func TestNew_WiresDependencies(t *testing.T) {
	ctx := runctx.WithRun(context.Background(), "test")
	a, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer a.Close(ctx)

	require.NotNil(t, a.Fetcher)
	require.Equal(t, models.LeagueNCAAM, a.League())
	require.Equal(t, "NC State", a.Labels.Canonicalize("nc-state"))
	require.Equal(t, "UConn", a.Labels.Canonicalize("connecticut"))
	require.Same(t, a.Browser(), a.Browser())
}

func TestStore_DryRunDropsWrites(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, testConfig(t))
	require.NoError(t, err)
	defer a.Close(ctx)

	a.DryRun = true
	s, err := a.Store(ctx)
	require.NoError(t, err)

	again, err := a.Store(ctx)
	require.NoError(t, err)
	require.Equal(t, s, again)

	_, err = s.Insert(ctx, models.Player{Name: "Jane Doe", Team: "UConn", League: models.LeagueNCAAM})
	require.NoError(t, err)

	_, found, err := s.Find(ctx, models.Key{Name: "Jane Doe", Team: "UConn", League: models.LeagueNCAAM})
	require.NoError(t, err)
	require.False(t, found, "dry run must not persist inserts")
}

func TestClose_WritesMetrics(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	a, err := New(ctx, cfg)
	require.NoError(t, err)

	a.Metrics.RowOutcome("updated")
	require.NoError(t, a.Close(ctx))

	_, err = os.Stat(cfg.MetricsFile)
	require.NoError(t, err)
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil)
	require.Error(t, err)
}
