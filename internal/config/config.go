package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `koanf:"log_level"`
	JSONLog  bool   `koanf:"json_log"`

	// HTTP
	HTTPTimeout   time.Duration `koanf:"http_timeout"`
	UserAgent     string        `koanf:"user_agent"`
	RequestDelay  time.Duration `koanf:"request_delay"`
	RetryAttempts int           `koanf:"retry_attempts"`

	// Caching
	CacheTTL          time.Duration `koanf:"cache_ttl"`
	CacheMaxSizeBytes int64         `koanf:"cache_max_size_bytes"`

	// Browser
	BrowserHeadless bool   `koanf:"browser_headless"`
	ChromePath      string `koanf:"chrome_path"`

	// Sources
	BaseURL       string `koanf:"base_url"`
	NBAPlayersURL string `koanf:"nba_players_url"`
	League        string `koanf:"league"`
	Season        int    `koanf:"season"`

	// Store
	StoreDriver string `koanf:"store_driver"`
	StoreDSN    string `koanf:"store_dsn"`
	StoreURL    string `koanf:"store_url"`
	StoreKey    string `koanf:"store_key"`
	StoreTable  string `koanf:"store_table"`

	// Run bookkeeping
	JournalPath string `koanf:"journal_path"`
	MetricsFile string `koanf:"metrics_file"`

	// LabelAliases extends the built-in team slug table
	LabelAliases map[string]string `koanf:"label_aliases"`
}

// Default returns a Config populated with defaults only
func Default() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		HTTPTimeout:       DefaultHTTPTimeout,
		UserAgent:         DefaultUserAgent,
		RequestDelay:      DefaultRequestDelay,
		RetryAttempts:     DefaultRetryAttempts,
		CacheTTL:          DefaultCacheTTL,
		CacheMaxSizeBytes: DefaultCacheMaxSizeBytes,
		BrowserHeadless:   DefaultBrowserHeadless,
		BaseURL:           DefaultBaseURL,
		NBAPlayersURL:     DefaultNBAPlayersURL,
		League:            DefaultLeague,
		Season:            DefaultSeason,
		StoreDriver:       DefaultStoreDriver,
		StoreDSN:          DefaultStoreDSN,
		StoreTable:        DefaultStoreTable,
	}
}

// Load builds a Config by layering, low to high precedence:
//  1. defaults
//  2. YAML file from --config or BOXSCORE_CONFIG
//  3. BOXSCORE_* environment variables
//  4. flags explicitly set on cmd
//
// An empty store_key for the rest driver is then looked up in the OS keyring.
func Load(cmd *cobra.Command) (*Config, error) {
	k := koanf.New(".")

	path := os.Getenv(ConfigEnv)
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	// BOXSCORE_REQUEST_DELAY -> request_delay
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if cmd != nil {
		if err := applyFlags(cmd, cfg); err != nil {
			return nil, err
		}
	}

	resolveStoreKey(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// applyFlags copies flags the user actually set, so flag defaults never
// override the file or environment.
func applyFlags(cmd *cobra.Command, cfg *Config) error {
	flags := cmd.Flags()
	changed := func(name string) bool {
		f := flags.Lookup(name)
		return f != nil && f.Changed
	}

	if changed("verbose") {
		if v, _ := flags.GetBool("verbose"); v {
			cfg.LogLevel = "debug"
		}
	}
	if changed("quiet") {
		if v, _ := flags.GetBool("quiet"); v {
			cfg.LogLevel = "error"
		}
	}
	if changed("json") {
		cfg.JSONLog, _ = flags.GetBool("json")
	}
	if changed("timeout") {
		d, err := flags.GetDuration("timeout")
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if changed("delay") {
		d, err := flags.GetDuration("delay")
		if err != nil {
			return fmt.Errorf("invalid --delay: %w", err)
		}
		cfg.RequestDelay = d
	}
	if changed("user-agent") {
		cfg.UserAgent, _ = flags.GetString("user-agent")
	}
	if changed("store") {
		cfg.StoreDriver, _ = flags.GetString("store")
	}
	if changed("dsn") {
		cfg.StoreDSN, _ = flags.GetString("dsn")
	}
	if changed("league") {
		cfg.League, _ = flags.GetString("league")
	}
	if changed("season") {
		cfg.Season, _ = flags.GetInt("season")
	}
	if changed("journal") {
		cfg.JournalPath, _ = flags.GetString("journal")
	}
	if changed("metrics-file") {
		cfg.MetricsFile, _ = flags.GetString("metrics-file")
	}
	return nil
}
