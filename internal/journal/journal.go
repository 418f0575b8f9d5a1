// Package journal records reconciliation progress in a JSON-lines file so an
// interrupted or partially failed run can be resumed without appending the
// same observation twice.
package journal

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/law-makers/boxscore/pkg/models"
)

// entry is one line of the journal file
type entry struct {
	URL  string      `json:"url"`
	Key  *models.Key `json:"key,omitempty"`
	Done bool        `json:"done,omitempty"`
}

// Journal is an append-only progress log
type Journal struct {
	mu      sync.Mutex
	file    *os.File
	w       *bufio.Writer
	applied map[string]map[models.Key]struct{}
	done    map[string]struct{}
}

// Open replays path (if it exists) and opens it for appending
func Open(path string) (*Journal, error) {
	j := &Journal{
		applied: make(map[string]map[models.Key]struct{}),
		done:    make(map[string]struct{}),
	}

	if f, err := os.Open(path); err == nil {
		err = j.replay(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("replaying journal %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("opening journal: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening journal: %w", err)
	}
	j.file = f
	j.w = bufio.NewWriter(f)

	log.Debug().
		Str("path", path).
		Int("documents_done", len(j.done)).
		Msg("Journal opened")
	return j, nil
}

func (j *Journal) replay(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var e entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			// a torn last line from a killed process is expected
			log.Warn().Err(err).Int("line", line).Msg("Ignoring unreadable journal line")
			continue
		}
		j.apply(e)
	}
	return scanner.Err()
}

func (j *Journal) apply(e entry) {
	if e.Done {
		j.done[e.URL] = struct{}{}
		return
	}
	if e.Key == nil {
		return
	}
	if j.applied[e.URL] == nil {
		j.applied[e.URL] = make(map[models.Key]struct{})
	}
	j.applied[e.URL][*e.Key] = struct{}{}
}

// Done reports whether url was fully reconciled
func (j *Journal) Done(url string) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.done[url]
	return ok
}

// Applied reports whether the row with key was already applied for url
func (j *Journal) Applied(url string, key models.Key) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	_, ok := j.applied[url][key]
	return ok
}

// Record notes that the row with key was applied for url
func (j *Journal) Record(url string, key models.Key) error {
	return j.write(entry{URL: url, Key: &key})
}

// Complete notes that url was fully reconciled
func (j *Journal) Complete(url string) error {
	return j.write(entry{URL: url, Done: true})
}

func (j *Journal) write(e entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	if _, err := j.w.Write(append(b, '\n')); err != nil {
		return err
	}
	// flushed per entry so a crash loses at most the line being written
	if err := j.w.Flush(); err != nil {
		return err
	}
	j.apply(e)
	return nil
}

// Close flushes and closes the journal file
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.w.Flush(); err != nil {
		j.file.Close()
		return err
	}
	return j.file.Close()
}
