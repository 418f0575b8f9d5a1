package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func newCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test", RunE: func(*cobra.Command, []string) error { return nil }}
	RegisterFlags(cmd)
	cmd.PersistentFlags().String("league", DefaultLeague, "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(ConfigEnv, "")

	cfg, err := Load(newCmd(t))
	require.NoError(t, err)
	require.Equal(t, DefaultRequestDelay, cfg.RequestDelay)
	require.Equal(t, "sqlite", cfg.StoreDriver)
	require.Equal(t, "NCAAM", cfg.League)
	require.Equal(t, DefaultBaseURL, cfg.BaseURL)
}

func TestLoad_Precedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxscore.yaml")
	yaml := "request_delay: 2s\n" +
		"store_driver: memory\n" +
		"retry_attempts: 5\n" +
		"label_aliases:\n" +
		"  nc-state: NC State\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	t.Setenv(ConfigEnv, path)
	t.Setenv("BOXSCORE_RETRY_ATTEMPTS", "7")
	t.Setenv("BOXSCORE_USER_AGENT", "env-agent")

	cfg, err := Load(newCmd(t, "--user-agent", "flag-agent", "--league", "nba"))
	require.NoError(t, err)

	require.Equal(t, 2*time.Second, cfg.RequestDelay, "file overrides default")
	require.Equal(t, "memory", cfg.StoreDriver)
	require.Equal(t, 7, cfg.RetryAttempts, "env overrides file")
	require.Equal(t, "flag-agent", cfg.UserAgent, "flag overrides env")
	require.Equal(t, "NBA", cfg.League)
	require.Equal(t, map[string]string{"nc-state": "NC State"}, cfg.LabelAliases)
}

func TestLoad_UnsetFlagsDoNotOverride(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	t.Setenv("BOXSCORE_STORE_DRIVER", "memory")

	cfg, err := Load(newCmd(t))
	require.NoError(t, err)
	require.Equal(t, "memory", cfg.StoreDriver)
}

func TestLoad_Verbose(t *testing.T) {
	t.Setenv(ConfigEnv, "")
	cfg, err := Load(newCmd(t, "-v"))
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"negative delay", func(c *Config) { c.RequestDelay = -time.Second }},
		{"retries", func(c *Config) { c.RetryAttempts = 0 }},
		{"league", func(c *Config) { c.League = "WNBA" }},
		{"driver", func(c *Config) { c.StoreDriver = "postgres" }},
		{"rest without key", func(c *Config) { c.StoreDriver = "rest"; c.StoreURL = "https://x" }},
		{"sqlite without dsn", func(c *Config) { c.StoreDSN = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			require.Error(t, validate(cfg))
		})
	}

	require.NoError(t, validate(Default()))
}
