// internal/cli/update.go
package cli

import (
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/law-makers/boxscore/internal/extract"
	"github.com/law-makers/boxscore/internal/journal"
	"github.com/law-makers/boxscore/internal/reconcile"
	"github.com/law-makers/boxscore/internal/ui"
)

var (
	updateDate    string
	updateFile    string
	updateDryRun  bool
	updateBrowser bool
)

var updateCmd = &cobra.Command{
	Use:   "update [box-score-url...]",
	Short: "Append box score points to each player's score series",
	Long: `Fetches each box score, matches every player line to a stored player by
name, team and league, and appends the points scored to that player's series.

Re-running over the same box scores appends again. Use --journal to record
progress so an interrupted or partially failed run can be resumed safely.`,
	Example: `  # All men's games of a day
  boxscore update --date 2024-03-21 --journal march-21.jsonl

  # Explicit box scores
  boxscore update https://www.sports-reference.com/cbb/boxscores/2024-03-21-21-kansas.html

  # URLs from a file, without writing to the store
  boxscore update --file games.txt --dry-run`,
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVar(&updateDate, "date", "", "Reconcile every game on the scores index for this day (YYYY-MM-DD)")
	updateCmd.Flags().StringVarP(&updateFile, "file", "f", "", "Read box score URLs from a file, one per line (- for stdin)")
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "Match and report without writing to the store")
	updateCmd.Flags().BoolVar(&updateBrowser, "browser", false, "Read the scores index with headless Chrome")
	updateCmd.Flags().String("journal", "", "Resume journal path; applied rows are skipped on re-run")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	a, err := GetApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	urls := append([]string{}, args...)
	if updateFile != "" {
		fromFile, err := readURLFile(updateFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", updateFile, err)
		}
		urls = append(urls, fromFile...)
	}
	if updateDate != "" {
		date, err := parseDate(updateDate)
		if err != nil {
			return err
		}
		links, err := indexLinks(ctx, a, date, updateBrowser)
		if err != nil {
			return err
		}
		urls = append(urls, links...)
	}
	urls = dedupe(urls)
	if len(urls) == 0 {
		return fmt.Errorf("no box scores given: pass URLs, --file or --date")
	}

	a.DryRun = updateDryRun
	s, err := a.Store(ctx)
	if err != nil {
		return err
	}

	opts := []reconcile.BatchOption{reconcile.WithRecorder(a.Metrics)}

	if p := a.Config.JournalPath; p != "" {
		if updateDryRun {
			a.Logger.Warn().Str("journal", p).Msg("Dry run: journal not used")
		} else {
			j, err := journal.Open(p)
			if err != nil {
				return err
			}
			defer j.Close()
			opts = append(opts, reconcile.WithCheckpoint(j))
		}
	}

	if bar := newProgressBar(a, len(urls), "box scores"); bar != nil {
		defer bar.Finish()
		opts = append(opts, reconcile.WithDocumentHook(func(d reconcile.DocumentReport) {
			bar.Describe(path.Base(d.URL))
			bar.Add(1)
		}))
	}

	source := extract.BoxScoreSource{Fetcher: a.Fetcher, League: a.League()}
	batch := reconcile.NewBatch(source, reconcile.New(s, a.Labels), opts...)

	a.Logger.Info().
		Int("documents", len(urls)).
		Bool("dry_run", updateDryRun).
		Msg("Reconciling box scores")

	report := batch.Run(ctx, urls)

	out := cmd.OutOrStdout()
	printReport(out, report)
	printMisses(out, report)

	if report.Cancelled {
		return ctx.Err()
	}
	if report.Summary.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", report.Summary.Failed, report.Summary.Documents)
	}
	return nil
}

func printReport(w io.Writer, report reconcile.Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Document", "Status", "Rows", "Updated", "Missed", "Parse errors", "Store errors", "Skipped"})

	for _, d := range report.Documents {
		t.AppendRow(table.Row{
			path.Base(d.URL), ui.Status(string(d.Status)),
			d.Rows, d.Updated, d.Missed, d.ParseErrors, d.StoreErrors, d.SkippedRows,
		})
	}

	s := report.Summary
	status := fmt.Sprintf("%d ok / %d failed", s.Succeeded, s.Failed)
	if s.Skipped > 0 {
		status += fmt.Sprintf(" / %d skipped", s.Skipped)
	}
	t.AppendFooter(table.Row{
		strconv.Itoa(s.Documents) + " documents", status,
		"", s.Updated, s.Missed, s.ParseErrors, s.StoreErrors, s.SkippedRows,
	})
	t.Render()
}

func printMisses(w io.Writer, report reconcile.Report) {
	var misses []reconcile.Outcome
	for _, d := range report.Documents {
		misses = append(misses, d.Misses...)
	}
	if len(misses) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Unmatched players")
	t.AppendHeader(table.Row{"Name", "Team", "Reason", "Did you mean"})
	for _, m := range misses {
		t.AppendRow(table.Row{m.Key.Name, m.Key.Team, ui.Warn(m.Miss.String()), m.Suggestion})
	}
	t.SortBy([]table.SortBy{{Name: "Team", Mode: table.Asc}, {Name: "Name", Mode: table.Asc}})
	t.Render()
}
