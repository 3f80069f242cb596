// internal/store/store.go
//
// Persistence interface for bowling games.
// Games are stored as their bowlers and raw throw sequences; loading a game
// replays those throws through the engine, so frame links and the turn index
// are always re-derived rather than trusted from storage.

package store

import (
	"context"
	"errors"
	"time"

	"github.com/robalobadob/bowling/internal/game"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = errors.New("not found")

// Summary is a listing row for a stored game.
type Summary struct {
	ID         string     `json:"id"`
	Status     string     `json:"status"`
	Bowlers    []string   `json:"bowlers"`
	Throws     int        `json:"throws"`
	CreatedAt  time.Time  `json:"createdAt"`
	FinishedAt *time.Time `json:"finishedAt,omitempty"`
}

// Store defines the persistence interface for games.
type Store interface {
	// Create persists a new game. ownerID is empty for guest games.
	Create(ctx context.Context, g *game.Game, ownerID string) error

	// Save persists the current throws and status of an existing game.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Owner returns the owning user ID ("" for guests), or ErrNotFound.
	Owner(ctx context.Context, id string) (string, error)

	// ListByOwner returns the owner's most recent games first.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]Summary, error)
}

func summarize(g *game.Game, finishedAt *time.Time) Summary {
	n := 0
	for _, seq := range g.Throws() {
		n += len(seq)
	}
	return Summary{
		ID:         g.ID,
		Status:     g.Status(),
		Bowlers:    g.Names(),
		Throws:     n,
		CreatedAt:  g.CreatedAt,
		FinishedAt: finishedAt,
	}
}
