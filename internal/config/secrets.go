package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"
)

// KeyringService is the OS keyring service holding REST store keys. Entries
// are keyed by store URL.
const KeyringService = "boxscore"

// SaveStoreKey stores the API key for the REST store at storeURL
func SaveStoreKey(storeURL, key string) error {
	storeURL, key = strings.TrimSpace(storeURL), strings.TrimSpace(key)
	if storeURL == "" || key == "" {
		return fmt.Errorf("store url and key must not be empty")
	}
	if err := keyring.Set(KeyringService, storeURL, key); err != nil {
		return fmt.Errorf("saving key to keyring: %w", err)
	}
	return nil
}

// DeleteStoreKey removes the stored key for storeURL. A missing entry is not
// an error.
func DeleteStoreKey(storeURL string) error {
	err := keyring.Delete(KeyringService, strings.TrimSpace(storeURL))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting key from keyring: %w", err)
	}
	return nil
}

// resolveStoreKey fills an empty store_key of the rest driver from the keyring
func resolveStoreKey(cfg *Config) {
	if cfg.StoreDriver != "rest" || cfg.StoreKey != "" || cfg.StoreURL == "" {
		return
	}
	key, err := keyring.Get(KeyringService, cfg.StoreURL)
	switch {
	case err == nil:
		cfg.StoreKey = key
		log.Debug().Str("store_url", cfg.StoreURL).Msg("Store key loaded from keyring")
	case errors.Is(err, keyring.ErrNotFound):
	default:
		// headless hosts often have no keyring service
		log.Debug().Err(err).Msg("Keyring unavailable")
	}
}
