package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexBrowser bool

var indexCmd = &cobra.Command{
	Use:   "index <YYYY-MM-DD>",
	Short: "List the men's box score URLs of a day",
	Example: `  boxscore index 2024-03-21
  boxscore index 2024-03-21 --browser > games.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVar(&indexBrowser, "browser", false, "Render the index with headless Chrome")
}

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := GetApp(cmd)
	if err != nil {
		return err
	}

	date, err := parseDate(args[0])
	if err != nil {
		return err
	}

	links, err := indexLinks(cmd.Context(), a, date, indexBrowser)
	if err != nil {
		return err
	}
	if len(links) == 0 {
		a.Logger.Warn().Str("date", args[0]).Msg("No men's games listed")
	}

	out := cmd.OutOrStdout()
	for _, link := range links {
		fmt.Fprintln(out, link)
	}
	return nil
}
