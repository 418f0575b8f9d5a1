package config

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

var storeDrivers = map[string]bool{"sqlite": true, "libsql": true, "rest": true, "memory": true}

func validate(c *Config) error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.RequestDelay < 0 {
		return fmt.Errorf("request delay must be >= 0")
	}
	if c.RetryAttempts < 1 || c.RetryAttempts > MaxRetryAttempts {
		return fmt.Errorf("retry attempts must be between 1 and %d", MaxRetryAttempts)
	}
	if c.CacheMaxSizeBytes <= 0 {
		return fmt.Errorf("cache max size must be > 0")
	}

	c.League = strings.ToUpper(strings.TrimSpace(c.League))
	if c.League != "NCAAM" && c.League != "NBA" {
		return fmt.Errorf("league must be NCAAM or NBA, got %q", c.League)
	}
	if c.Season < 1900 {
		return fmt.Errorf("season %d out of range", c.Season)
	}

	c.StoreDriver = strings.ToLower(c.StoreDriver)
	if !storeDrivers[c.StoreDriver] {
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	switch c.StoreDriver {
	case "sqlite", "libsql":
		if c.StoreDSN == "" {
			return fmt.Errorf("store_dsn is required for the %s driver", c.StoreDriver)
		}
	case "rest":
		if c.StoreURL == "" || c.StoreKey == "" {
			return fmt.Errorf("store_url and store_key are required for the rest driver")
		}
	}
	return nil
}
