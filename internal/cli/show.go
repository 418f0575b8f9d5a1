package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/law-makers/boxscore/pkg/models"
)

var showTeam string

var showCmd = &cobra.Command{
	Use:   "show <player name>",
	Short: "Print a stored player's score series",
	Example: `  boxscore show "Jane Doe" --team connecticut
  boxscore show "Jayson Tatum" --team "Boston Celtics" --league NBA --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showTeam, "team", "", "Team label or slug (required)")
	showCmd.MarkFlagRequired("team")
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := GetApp(cmd)
	if err != nil {
		return err
	}

	s, err := a.Store(cmd.Context())
	if err != nil {
		return err
	}

	key := models.Key{
		Name:   strings.TrimSpace(strings.Join(args, " ")),
		Team:   a.Labels.Canonicalize(showTeam),
		League: a.League(),
	}
	entity, found, err := s.Find(cmd.Context(), key)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no player %q on %q (%s)", key.Name, key.Team, key.League)
	}

	out := cmd.OutOrStdout()
	if a.Config.JSONLog {
		return json.NewEncoder(out).Encode(struct {
			ID     int64     `json:"player_id"`
			Name   string    `json:"name"`
			Team   string    `json:"team_name"`
			League string    `json:"league"`
			Scores []float64 `json:"scores"`
		}{entity.ID, entity.Key.Name, entity.Key.Team, string(entity.Key.League), entity.Series})
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.SetTitle(fmt.Sprintf("%s, %s (#%d)", entity.Key.Name, entity.Key.Team, entity.ID))
	t.AppendHeader(table.Row{"Game", "Points"})
	total := 0.0
	for i, pts := range entity.Series {
		t.AppendRow(table.Row{i + 1, pts})
		total += pts
	}
	footer := table.Row{"Games", len(entity.Series)}
	if len(entity.Series) > 0 {
		footer = table.Row{fmt.Sprintf("%d games, avg", len(entity.Series)), fmt.Sprintf("%.1f", total/float64(len(entity.Series)))}
	}
	t.AppendFooter(footer)
	t.Render()
	return nil
}
