package output

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/law-makers/boxscore/pkg/models"
)

func TestWritePlayers(t *testing.T) {
	var buf bytes.Buffer
	players := []models.Player{{
		Name:        "Jane Doe",
		Team:        "Saint Mary's",
		Position:    "G",
		Height:      "6-1",
		Weight:      "180",
		Year:        "JR",
		Nationality: "Moraga, CA",
		League:      models.LeagueNCAAM,
		Number:      "11",
	}}
	if err := WritePlayers(&buf, players); err != nil {
		t.Fatalf("WritePlayers failed: %v", err)
	}

	want := "name,team_name,scores,position,height,weight,age,year,nationality,league,number\n" +
		"Jane Doe,Saint Mary's,[],G,6-1,180,,JR,\"Moraga, CA\",NCAAM,11\n"
	if got := buf.String(); got != want {
		t.Errorf("output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestReadPlayers_ColumnOrderAndScores(t *testing.T) {
	in := "league,name,team_name,scores,number\n" +
		"NCAAM,Jane Doe,UConn,\"[12,18]\",11\n" +
		"NBA,Jayson Tatum,Boston Celtics,,0\n"

	players, err := ReadPlayers(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadPlayers failed: %v", err)
	}

	want := []models.Player{
		{Name: "Jane Doe", Team: "UConn", League: models.LeagueNCAAM, Scores: []float64{12, 18}, Number: "11"},
		{Name: "Jayson Tatum", Team: "Boston Celtics", League: models.LeagueNBA, Scores: []float64{}, Number: "0"},
	}
	if diff := cmp.Diff(want, players); diff != "" {
		t.Errorf("players mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPlayers_MissingColumn(t *testing.T) {
	_, err := ReadPlayers(strings.NewReader("name,league\nJane,NCAAM\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("expected ErrMissingColumn, got %v", err)
	}
}

func TestReadPlayers_BadScores(t *testing.T) {
	_, err := ReadPlayers(strings.NewReader("name,team_name,league,scores\nJane,UConn,NCAAM,twelve\n"))
	if err == nil || !strings.Contains(err.Error(), "line 2") {
		t.Errorf("expected line-numbered error, got %v", err)
	}
}

func TestSavePlayers_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.csv")
	players := []models.Player{
		{Name: "Jane Doe", Team: "UConn", League: models.LeagueNCAAM, Scores: []float64{12.5}},
	}
	if err := SavePlayers(path, players); err != nil {
		t.Fatalf("SavePlayers failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	got, err := ReadPlayers(f)
	if err != nil {
		t.Fatalf("ReadPlayers failed: %v", err)
	}
	if diff := cmp.Diff(players, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReadPlayers_EmptyRequiredField(t *testing.T) {
	in := "name,team_name,league\nJane Doe,UConn,NCAAM\nJohn Roe,,NCAAM\n"
	_, err := ReadPlayers(strings.NewReader(in))
	if !errors.Is(err, ErrEmptyField) {
		t.Fatalf("expected ErrEmptyField, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 3") || !strings.Contains(err.Error(), "team_name") {
		t.Errorf("expected line and column in error, got %v", err)
	}
}
