package config

import "github.com/spf13/cobra"

// RegisterFlags registers common CLI flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all output except errors")
	cmd.PersistentFlags().Bool("json", false, "Log in JSON format")
	cmd.PersistentFlags().String("config", "", "Path to YAML configuration file (or BOXSCORE_CONFIG)")
	cmd.PersistentFlags().Duration("timeout", DefaultHTTPTimeout, "HTTP request timeout")
	cmd.PersistentFlags().Duration("delay", DefaultRequestDelay, "Minimum delay between requests to the same host")
	cmd.PersistentFlags().String("user-agent", "", "Custom user agent string")
	cmd.PersistentFlags().String("store", DefaultStoreDriver, "Store driver: sqlite, libsql, rest, memory")
	cmd.PersistentFlags().String("dsn", DefaultStoreDSN, "SQLite file path or libSQL database URL")
	cmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics to this textfile on exit")
}
