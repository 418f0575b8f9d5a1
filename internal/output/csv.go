// Package output reads and writes the flat roster file.
package output

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/law-makers/boxscore/pkg/models"
)

// Header is the roster file column order
var Header = []string{"name", "team_name", "scores", "position", "height", "weight", "age", "year", "nationality", "league", "number"}

// ErrMissingColumn is returned when a roster file lacks a required column
var ErrMissingColumn = errors.New("roster file missing column")

// ErrEmptyField is returned when a record leaves a required column blank
var ErrEmptyField = errors.New("required field is empty")

var requiredColumns = []string{"name", "team_name", "league"}

// WritePlayers writes a header and one record per player
func WritePlayers(w io.Writer, players []models.Player) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header); err != nil {
		return err
	}
	for _, p := range players {
		scores := p.Scores
		if scores == nil {
			scores = []float64{}
		}
		encoded, err := json.Marshal(scores)
		if err != nil {
			return fmt.Errorf("encoding scores for %s: %w", p.Name, err)
		}
		record := []string{
			p.Name, p.Team, string(encoded), p.Position, p.Height, p.Weight,
			p.Age, p.Year, p.Nationality, string(p.League), p.Number,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// SavePlayers writes players to path, replacing any existing file
func SavePlayers(path string, players []models.Player) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WritePlayers(file, players); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ReadPlayers parses a roster file. Columns are located by header name so
// their order does not matter; name, team_name and league are required.
func ReadPlayers(r io.Reader) ([]models.Player, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range requiredColumns {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}

	var players []models.Player
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(col string) string {
			if i, ok := index[col]; ok && i < len(record) {
				return strings.TrimSpace(record[i])
			}
			return ""
		}

		for _, required := range requiredColumns {
			if get(required) == "" {
				return nil, fmt.Errorf("line %d: %w: %s", line, ErrEmptyField, required)
			}
		}

		scores, err := parseScores(get("scores"))
		if err != nil {
			return nil, fmt.Errorf("line %d: scores: %w", line, err)
		}

		players = append(players, models.Player{
			Name:        get("name"),
			Team:        get("team_name"),
			Scores:      scores,
			Position:    get("position"),
			Height:      get("height"),
			Weight:      get("weight"),
			Age:         get("age"),
			Year:        get("year"),
			Nationality: get("nationality"),
			League:      models.League(get("league")),
			Number:      get("number"),
		})
	}
	return players, nil
}

func parseScores(raw string) ([]float64, error) {
	if raw == "" {
		return []float64{}, nil
	}
	var scores []float64
	if err := json.Unmarshal([]byte(raw), &scores); err != nil {
		return nil, err
	}
	if scores == nil {
		scores = []float64{}
	}
	return scores, nil
}
