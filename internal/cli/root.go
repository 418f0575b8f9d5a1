// internal/cli/root.go
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/law-makers/boxscore/internal/app"
	"github.com/law-makers/boxscore/internal/config"
	"github.com/law-makers/boxscore/internal/runctx"
	"github.com/law-makers/boxscore/internal/ui"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "boxscore",
	Short: "Scrape rosters and box scores and keep player score series current",
	Long: `boxscore collects player rosters into a flat file or table store and
appends each player's points from game box scores to their score series.

Documents are fetched one at a time with a fixed delay per host. A failing
document is reported and skipped; the rest of the run continues.`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// active is the application of the running command, closed by Execute
var active *app.Application

// Execute runs the CLI and returns the process exit code
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)

	if active != nil {
		closeCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if cerr := active.Close(closeCtx); cerr != nil && err == nil {
			err = cerr
		}
		cancel()
		active = nil
	}

	if err == nil {
		return 0
	}
	fmt.Fprintf(os.Stderr, "%s %v\n", ui.Error("Error:"), err)
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}

func init() {
	config.RegisterFlags(rootCmd)
	rootCmd.PersistentFlags().String("league", config.DefaultLeague, "League of the players: NCAAM or NBA")
	rootCmd.PersistentFlags().Int("season", config.DefaultSeason, "Season year used in roster URLs")

	rootCmd.Flags().BoolP("help", "h", false, "Help for boxscore")
	rootCmd.Flags().Bool("version", false, "Version for boxscore")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.SetHelpFunc(customHelpFunc)

	// the application is built only for commands that run, never for -h
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cmd)
		if err != nil {
			return err
		}
		setupLogging(cfg)

		ctx := runctx.WithRun(cmd.Context(), cmd.CommandPath())
		cmd.SetContext(ctx)

		a, err := app.New(ctx, cfg)
		if err != nil {
			return err
		}
		active = a
		SetApp(cmd, a)

		log.Debug().
			Str("store", cfg.StoreDriver).
			Str("league", cfg.League).
			Msg("Configuration loaded")
		return nil
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.JSONLog {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		ui.Enabled = false
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})
}

// quietOutput reports whether progress bars and colour should be suppressed
func quietOutput(a *app.Application) bool {
	return a.Config.JSONLog || a.Config.LogLevel == "error"
}

// customHelpFunc provides a colorized help output
func customHelpFunc(cmd *cobra.Command, args []string) {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorBold+ui.ColorCyan, strings.ToUpper(cmd.Name()), ui.ColorReset)
	if cmd.Short != "" {
		fmt.Fprintln(w, cmd.Short)
	}
	if cmd.Long != "" && cmd.Long != cmd.Short {
		fmt.Fprintf(w, "\n%s\n", cmd.Long)
	}

	section(w, "Usage")
	if cmd.Runnable() {
		fmt.Fprintf(w, "  %s%s%s\n", ui.ColorCyan, cmd.UseLine(), ui.ColorReset)
	}
	if cmd.HasAvailableSubCommands() {
		fmt.Fprintf(w, "  %s%s%s %s<command>%s %s[flags]%s\n",
			ui.ColorCyan, cmd.CommandPath(), ui.ColorReset,
			ui.ColorYellow, ui.ColorReset,
			ui.ColorDim, ui.ColorReset)
	}

	if cmd.HasExample() {
		section(w, "Examples")
		for _, line := range strings.Split(cmd.Example, "\n") {
			trimmed := strings.TrimSpace(line)
			switch {
			case trimmed == "":
			case strings.HasPrefix(trimmed, "#"):
				fmt.Fprintf(w, "  %s%s%s\n", ui.ColorDim, trimmed, ui.ColorReset)
			default:
				fmt.Fprintf(w, "  %s$ %s%s\n", ui.ColorGreen, trimmed, ui.ColorReset)
			}
		}
	}

	if cmd.HasAvailableSubCommands() {
		section(w, "Commands")
		width := 0
		for _, c := range cmd.Commands() {
			if c.IsAvailableCommand() && len(c.Name()) > width {
				width = len(c.Name())
			}
		}
		for _, c := range cmd.Commands() {
			if !c.IsAvailableCommand() || c.Name() == "help" {
				continue
			}
			fmt.Fprintf(w, "  %s%-*s%s  %s%s%s\n",
				ui.ColorCyan, width, c.Name(), ui.ColorReset,
				ui.ColorDim, c.Short, ui.ColorReset)
		}
	}

	if cmd.HasAvailableLocalFlags() {
		section(w, "Flags")
		printFlags(w, cmd.LocalFlags().FlagUsages())
	}
	if cmd.HasAvailableInheritedFlags() {
		section(w, "Global Flags")
		printFlags(w, cmd.InheritedFlags().FlagUsages())
	}
	fmt.Fprintln(w)
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s%s%s\n", ui.ColorBold+ui.ColorWhite, title, ui.ColorReset)
}

// printFlags colours the flag column of pflag's usage text
func printFlags(w io.Writer, usages string) {
	for _, line := range strings.Split(usages, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		trimmed := strings.TrimLeft(line, " ")
		parts := strings.SplitN(trimmed, "  ", 2)
		if strings.HasPrefix(trimmed, "-") && len(parts) == 2 {
			fmt.Fprintf(w, "  %s%-30s%s%s%s%s\n",
				ui.ColorGreen, strings.TrimSpace(parts[0]), ui.ColorReset,
				ui.ColorDim, strings.TrimSpace(parts[1]), ui.ColorReset)
			continue
		}
		fmt.Fprintf(w, "  %s\n", trimmed)
	}
}
