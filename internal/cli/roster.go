// internal/cli/roster.go
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/law-makers/boxscore/internal/app"
	"github.com/law-makers/boxscore/internal/extract"
	"github.com/law-makers/boxscore/internal/output"
	"github.com/law-makers/boxscore/pkg/models"
)

var rosterOutput string

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Collect player rosters into a CSV file",
	Long: `Scrapes rosters into the flat player file consumed by "boxscore import".
Every player starts with an empty score series.`,
}

var rosterNCAACmd = &cobra.Command{
	Use:   "ncaa <school-slug>...",
	Short: "Collect men's college rosters by school slug",
	Example: `  boxscore roster ncaa connecticut purdue saint-marys-ca -o players.csv
  boxscore roster ncaa colorado --season 2025`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRosterNCAA,
}

var rosterNBACmd = &cobra.Command{
	Use:     "nba",
	Short:   "Collect the NBA player list",
	Example: `  boxscore roster nba -o nba.csv`,
	Args:    cobra.NoArgs,
	RunE:    runRosterNBA,
}

func init() {
	rootCmd.AddCommand(rosterCmd)
	rosterCmd.AddCommand(rosterNCAACmd, rosterNBACmd)
	rosterCmd.PersistentFlags().StringVarP(&rosterOutput, "output", "o", "", "CSV file to write (default stdout)")
}

func runRosterNCAA(cmd *cobra.Command, args []string) error {
	a, err := GetApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	bar := newProgressBar(a, len(args), "rosters")

	var players []models.Player
	failed := 0
	for _, slug := range args {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		team := a.Labels.Canonicalize(slug)
		got, err := fetchRoster(cmd, a, slug, team)
		if bar != nil {
			bar.Add(1)
		}
		if err != nil {
			failed++
			a.Logger.Error().Err(err).Str("school", slug).Msg("Roster failed")
			continue
		}
		a.Logger.Info().
			Str("school", slug).
			Str("team", team).
			Int("players", len(got)).
			Msg("Roster collected")
		players = append(players, got...)
	}
	if bar != nil {
		bar.Finish()
	}

	if err := writeRoster(cmd, players); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d rosters failed", failed, len(args))
	}
	return nil
}

func fetchRoster(cmd *cobra.Command, a *app.Application, slug, team string) ([]models.Player, error) {
	url, err := extract.RosterURL(a.Config.BaseURL, slug, a.Config.Season)
	if err != nil {
		return nil, err
	}
	doc, err := a.Fetcher.Fetch(cmd.Context(), url)
	if err != nil {
		return nil, err
	}
	return extract.Roster(doc, team, models.LeagueNCAAM)
}

func runRosterNBA(cmd *cobra.Command, args []string) error {
	a, err := GetApp(cmd)
	if err != nil {
		return err
	}

	doc, err := a.Fetcher.Fetch(cmd.Context(), a.Config.NBAPlayersURL)
	if err != nil {
		return err
	}
	players, err := extract.NBAPlayers(doc)
	if err != nil {
		return err
	}
	canonicalTeams(a, players)
	a.Logger.Info().Int("players", len(players)).Msg("NBA player list collected")

	return writeRoster(cmd, players)
}

// canonicalTeams runs every team label through the same table lookups use
func canonicalTeams(a *app.Application, players []models.Player) {
	for i := range players {
		players[i].Team = a.Labels.Canonicalize(players[i].Team)
	}
}

func writeRoster(cmd *cobra.Command, players []models.Player) error {
	if rosterOutput == "" {
		return output.WritePlayers(cmd.OutOrStdout(), players)
	}
	if err := output.SavePlayers(rosterOutput, players); err != nil {
		return fmt.Errorf("writing %s: %w", rosterOutput, err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d players to %s\n", len(players), rosterOutput)
	return nil
}
