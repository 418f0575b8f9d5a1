package journal

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/law-makers/boxscore/pkg/models"
)

func TestJournal_ReplayAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	key := models.Key{Name: "Jane Doe", Team: "UConn", League: models.LeagueNCAAM}

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if j.Done("u1") || j.Applied("u1", key) {
		t.Fatal("fresh journal must be empty")
	}
	if err := j.Record("u1", key); err != nil {
		t.Fatal(err)
	}
	if err := j.Complete("u2"); err != nil {
		t.Fatal(err)
	}
	if !j.Applied("u1", key) || !j.Done("u2") {
		t.Error("writes must be visible immediately")
	}
	if err := j.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	if !reopened.Applied("u1", key) {
		t.Error("expected applied row to survive reopen")
	}
	if reopened.Applied("u2", key) {
		t.Error("applied rows are per url")
	}
	if !reopened.Done("u2") || reopened.Done("u1") {
		t.Error("unexpected done state after reopen")
	}
}

func TestJournal_TornLineIgnored(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.jsonl")
	content := `{"url":"u1","done":true}` + "\n" + `{"url":"u2","key":{"name":"A"`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer j.Close()

	if !j.Done("u1") {
		t.Error("expected u1 done")
	}
	if j.Done("u2") {
		t.Error("torn line must not count")
	}
}
