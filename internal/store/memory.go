// internal/store/memory.go
//
// In-memory implementation of Store.
// Used for ephemeral sessions in development/testing, or when durability is
// not required.
//
// Characteristics:
//   - Keeps private copies keyed by ID. Get hands out a clone, so a caller
//     mutating its game never touches what other readers see until Save
//     swaps the stored copy.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robalobadob/bowling/internal/game"
)

type entry struct {
	game       *game.Game
	owner      string
	finishedAt *time.Time
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu    sync.RWMutex      // guards games
	games map[string]*entry // keyed by Game.ID
	now   func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{games: make(map[string]*entry), now: time.Now}
}

func (m *memory) Create(ctx context.Context, g *game.Game, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.ID]; ok {
		return fmt.Errorf("game %s already exists", g.ID)
	}
	m.games[g.ID] = &entry{game: g.Clone(), owner: ownerID}
	return nil
}

func (m *memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.games[g.ID]
	if !ok {
		return ErrNotFound
	}
	e.game = g.Clone()
	if g.Finished() && e.finishedAt == nil {
		t := m.now().UTC()
		e.finishedAt = &t
	}
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok {
		return e.game.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *memory) Owner(ctx context.Context, id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.games[id]; ok {
		return e.owner, nil
	}
	return "", ErrNotFound
}

func (m *memory) ListByOwner(ctx context.Context, ownerID string, limit int) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Summary{}
	for _, e := range m.games {
		if ownerID != "" && e.owner == ownerID {
			out = append(out, summarize(e.game, e.finishedAt))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
