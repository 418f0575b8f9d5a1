package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/law-makers/boxscore/internal/output"
	"github.com/law-makers/boxscore/internal/store"
	"github.com/law-makers/boxscore/internal/ui"
)

var importCmd = &cobra.Command{
	Use:   "import <players.csv>",
	Short: "Create stored players from a roster CSV file",
	Long: `Inserts every player of a roster file into the configured store. Players
that already exist (same name, team and league) are left untouched.`,
	Example: `  boxscore import players.csv
  boxscore import players.csv --store rest`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := GetApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	players, err := output.ReadPlayers(f)
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	canonicalTeams(a, players)

	s, err := a.Store(ctx)
	if err != nil {
		return err
	}

	bar := newProgressBar(a, len(players), "importing")
	created, existing := 0, 0
	for _, p := range players {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		id, err := s.Insert(ctx, p)
		if bar != nil {
			bar.Add(1)
		}
		switch {
		case errors.Is(err, store.ErrDuplicate):
			existing++
			a.Logger.Debug().Str("name", p.Name).Str("team", p.Team).Msg("Player exists")
		case err != nil:
			return fmt.Errorf("inserting %s (%s): %w", p.Name, p.Team, err)
		default:
			created++
			a.Logger.Debug().Str("name", p.Name).Int64("player_id", id).Msg("Player created")
		}
	}
	if bar != nil {
		bar.Finish()
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %d created, %d already present\n",
		ui.Success("Imported"), created, existing)
	return nil
}
