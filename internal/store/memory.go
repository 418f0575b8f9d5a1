package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/law-makers/boxscore/pkg/models"
)

// MemoryStore keeps player records in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	players map[int64]models.Player
	byKey   map[models.Key]int64
	nextID  int64
}

// NewMemory creates an empty MemoryStore
func NewMemory() *MemoryStore {
	return &MemoryStore{
		players: make(map[int64]models.Player),
		byKey:   make(map[models.Key]int64),
		nextID:  1,
	}
}

// Find looks up an entity by exact key
func (m *MemoryStore) Find(ctx context.Context, key models.Key) (models.Entity, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byKey[key]
	if !ok {
		return models.Entity{}, false, nil
	}
	p := m.players[id]
	return models.Entity{ID: id, Key: key, Series: cloneSeries(p.Scores)}, true, nil
}

// UpdateSeries replaces the series of entity id
func (m *MemoryStore) UpdateSeries(ctx context.Context, id int64, series []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[id]
	if !ok {
		return fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	p.Scores = cloneSeries(series)
	m.players[id] = p
	return nil
}

// Insert adds a new player and returns its id
func (m *MemoryStore) Insert(ctx context.Context, p models.Player) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := p.Key()
	if _, exists := m.byKey[key]; exists {
		return 0, fmt.Errorf("%w: %s", ErrDuplicate, key)
	}
	id := m.nextID
	m.nextID++

	p.ID = id
	p.Scores = cloneSeries(p.Scores)
	m.players[id] = p
	m.byKey[key] = id
	return id, nil
}

// Teams lists the distinct teams of a league, sorted
func (m *MemoryStore) Teams(ctx context.Context, league models.League) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for key := range m.byKey {
		if key.League == league {
			seen[key.Team] = struct{}{}
		}
	}
	teams := make([]string, 0, len(seen))
	for team := range seen {
		teams = append(teams, team)
	}
	sort.Strings(teams)
	return teams, nil
}

// Player returns a copy of the stored player
func (m *MemoryStore) Player(id int64) (models.Player, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.players[id]
	if ok {
		p.Scores = cloneSeries(p.Scores)
	}
	return p, ok
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}

func cloneSeries(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
