package models

import "fmt"

// League tags the competition a player record belongs to
type League string

const (
	LeagueNCAAM League = "NCAAM"
	LeagueNBA   League = "NBA"
)

// Row is one scoring line extracted from a box score document.
// Team holds the raw grouping label as scraped (e.g. a URL slug).
type Row struct {
	Name        string
	Team        string
	League      League
	Observation string
}

// Key identifies a player record. Matching is exact string equality on all
// three fields.
type Key struct {
	Name   string `json:"name"`
	Team   string `json:"team_name"`
	League League `json:"league"`
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%s", k.League, k.Team, k.Name)
}

// Entity is the persisted view of a player used by reconciliation
type Entity struct {
	ID     int64
	Key    Key
	Series []float64
}

// Player is a full roster record as produced by roster ingestion
type Player struct {
	ID          int64     `json:"player_id,omitempty"`
	Name        string    `json:"name"`
	Team        string    `json:"team_name"`
	Scores      []float64 `json:"scores"`
	Position    string    `json:"position"`
	Height      string    `json:"height"`
	Weight      string    `json:"weight"`
	Age         string    `json:"age"`
	Year        string    `json:"year"`
	Nationality string    `json:"nationality"`
	League      League    `json:"league"`
	Number      string    `json:"number"`
}

// Key returns the identity key of the player
func (p Player) Key() Key {
	return Key{Name: p.Name, Team: p.Team, League: p.League}
}
