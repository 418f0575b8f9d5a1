package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultUserAgent         = "boxscore/1.0 (+https://github.com/law-makers/boxscore)"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultRequestDelay      = 5 * time.Second
	DefaultRetryAttempts     = 3
	DefaultCacheTTL          = 30 * time.Minute
	DefaultCacheMaxSizeBytes = 64 * 1024 * 1024 // 64MB
	DefaultBrowserHeadless   = true
	DefaultBaseURL           = "https://www.sports-reference.com/cbb"
	DefaultNBAPlayersURL     = "https://basketball.realgm.com/nba/players"
	DefaultLeague            = "NCAAM"
	DefaultSeason            = 2024
	DefaultStoreDriver       = "sqlite"
	DefaultStoreDSN          = "boxscore.db"
	DefaultStoreTable        = "players"
	MaxRetryAttempts         = 10
	EnvPrefix                = "BOXSCORE_"
	ConfigEnv                = "BOXSCORE_CONFIG"
)
