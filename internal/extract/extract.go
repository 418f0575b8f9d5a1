// Package extract turns fetched box-score, roster and index pages into rows
// and player records. Every function is a pure read of a parsed document.
package extract

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	urlutil "github.com/law-makers/boxscore/internal/utils/url"
	"github.com/law-makers/boxscore/pkg/models"
)

var (
	// ErrNoBoxScore means the document has no team box-score table
	ErrNoBoxScore = errors.New("no box score tables in document")
	// ErrNoRoster means the document has no roster table
	ErrNoRoster = errors.New("no roster table in document")
	// ErrNoPlayerList means the document has no player list table
	ErrNoPlayerList = errors.New("no player list in document")
)

const boxScorePrefix = "div_box-score-basic-"

// BoxScore returns one row per player line across every team table in doc.
// Row.Team carries the raw team slug from the table id.
func BoxScore(doc *goquery.Document, league models.League) ([]models.Row, error) {
	tables := doc.Find(`div[id^="` + boxScorePrefix + `"]`)
	if tables.Length() == 0 {
		return nil, ErrNoBoxScore
	}

	var rows []models.Row
	tables.Each(func(_ int, table *goquery.Selection) {
		id, _ := table.Attr("id")
		slug := strings.TrimPrefix(id, boxScorePrefix)

		table.Find("tbody tr").Not(".thead").Each(func(_ int, tr *goquery.Selection) {
			name := text(tr.Find("a").First())
			if name == "" {
				name = text(tr.Find(`th[data-stat="player"]`))
			}
			pts := tr.Find(`td[data-stat="pts"]`)
			if name == "" || pts.Length() == 0 {
				// totals and spacer rows
				return
			}
			rows = append(rows, models.Row{
				Name:        name,
				Team:        slug,
				League:      league,
				Observation: text(pts),
			})
		})
	})

	log.Debug().
		Int("tables", tables.Length()).
		Int("rows", len(rows)).
		Msg("Extracted box score")

	return rows, nil
}

// Roster returns the players of a school roster page. team is the canonical
// label written to each record.
func Roster(doc *goquery.Document, team string, league models.League) ([]models.Player, error) {
	table := doc.Find("#div_roster")
	if table.Length() == 0 {
		return nil, ErrNoRoster
	}

	var players []models.Player
	table.Find("tbody tr").Not(".thead").Each(func(_ int, tr *goquery.Selection) {
		name := text(tr.Find(`th[data-stat="player"]`))
		if name == "" {
			return
		}
		stat := func(key string) string {
			return text(tr.Find(`td[data-stat="` + key + `"]`))
		}
		players = append(players, models.Player{
			Name:        name,
			Team:        team,
			Scores:      []float64{},
			Position:    stat("pos"),
			Height:      stat("height"),
			Weight:      stat("weight"),
			Year:        stat("class"),
			Nationality: stat("hometown"),
			League:      league,
			Number:      stat("number"),
		})
	})
	return players, nil
}

// BoxScoreLinks returns the men's game box-score URLs listed on a daily
// scores index page, resolved against base, in page order without repeats.
func BoxScoreLinks(doc *goquery.Document, base string) ([]string, error) {
	scores := doc.Find("#all_other_scores")
	if scores.Length() == 0 {
		return nil, fmt.Errorf("%w: missing #all_other_scores", ErrNoBoxScore)
	}

	seen := make(map[string]struct{})
	var links []string
	scores.Find(".game_summary.gender-m .gamelink a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link := urlutil.ResolveURL(base, strings.TrimSpace(href))
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})
	return links, nil
}

// nbaHeaderRows are the leading rows of the player list that carry no player
const nbaHeaderRows = 4

// NBAPlayers reads the league-wide player list. Cells are number, name,
// position, height, weight, age, team, years of service, and nationality
// last. Year is the season the player is in, one more than years served.
func NBAPlayers(doc *goquery.Document) ([]models.Player, error) {
	body := doc.Find("tbody").First()
	if body.Length() == 0 {
		return nil, ErrNoPlayerList
	}

	var players []models.Player
	body.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i < nbaHeaderRows {
			return
		}
		var cells []string
		tr.Find("td.nowrap").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, text(td))
		})
		if len(cells) <= 7 {
			return
		}

		year := cells[7]
		if served, err := strconv.Atoi(year); err == nil {
			year = strconv.Itoa(served + 1)
		} else {
			log.Debug().Str("player", cells[1]).Str("years", year).Msg("Unparsed years of service")
		}

		players = append(players, models.Player{
			Number:      cells[0],
			Name:        cells[1],
			Position:    cells[2],
			Height:      cells[3],
			Weight:      cells[4],
			Age:         cells[5],
			Team:        cells[6],
			Year:        year,
			Nationality: cells[len(cells)-1],
			League:      models.LeagueNBA,
			Scores:      []float64{},
		})
	})
	return players, nil
}

// BoxScoreIndexURL is the daily scores page for date
func BoxScoreIndexURL(base string, date time.Time) (string, error) {
	u, err := urlutil.JoinPath(base, "boxscores", "index.cgi")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s?month=%d&day=%d&year=%d", u, int(date.Month()), date.Day(), date.Year()), nil
}

// RosterURL is the men's roster page of school slug for season
func RosterURL(base, slug string, season int) (string, error) {
	return urlutil.JoinPath(base, "schools", slug, "men", strconv.Itoa(season)+".html")
}

func text(s *goquery.Selection) string {
	return strings.TrimSpace(s.Text())
}
