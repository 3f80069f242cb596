// internal/game/types.go
//
// Core type definitions for the bowling game engine.
// Defines:
//   - Bowler: one player's raw throw sequence and the frame links over it.
//   - Game: the ordered bowlers of one game plus whose turn it is.
//   - Result: what a single Bowl call did.
//   - The closed set of errors the engine reports.

package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/bowling/internal/frame"
)

// DefaultMaxBowlers caps the number of bowlers sharing one game.
const DefaultMaxBowlers = 8

var (
	// ErrInvalidPinCount is returned for a pin count outside 0..10 or larger
	// than the number of pins still standing.
	ErrInvalidPinCount = errors.New("invalid pin count")

	// ErrGameAlreadyComplete is returned when a bowler with no unbowled
	// frame is asked to throw again.
	ErrGameAlreadyComplete = errors.New("game already complete")

	// ErrGameOver is the game-level form of ErrGameAlreadyComplete and
	// matches it under errors.Is.
	ErrGameOver = fmt.Errorf("game over: %w", ErrGameAlreadyComplete)

	ErrNoBowlers         = errors.New("at least one bowler is required")
	ErrTooManyBowlers    = errors.New("too many bowlers")
	ErrInvalidBowlerName = errors.New("invalid bowler name")

	// ErrReplayMismatch is returned when stored throws cannot be fed back
	// through the engine in turn order.
	ErrReplayMismatch = errors.New("replay mismatch")
)

// Bowler holds one player's game. The raw sequence is the only mutable
// state; frames are views rebuilt from it on every query.
type Bowler struct {
	Name string

	throws [frame.MaxThrows]frame.Throw
	links  [frame.Frames]frame.Links
	rule   frame.SpareRule
}

// Game holds the state of a single game of one or more bowlers.
type Game struct {
	ID        string          // Unique game identifier (UUID).
	Bowlers   []*Bowler       // In throwing order.
	Turn      int             // Index into Bowlers of the bowler at the line.
	Rule      frame.SpareRule // Spare policy shared by every bowler.
	CreatedAt time.Time
}

// Result describes one accepted throw.
type Result struct {
	Bowler      int  `json:"bowler"`      // index of the bowler who threw
	Frame       int  `json:"frame"`       // zero-based frame the throw landed in
	Pins        int  `json:"pins"`        // pins knocked down
	FrameBowled bool `json:"frameBowled"` // the throw finished the frame's own throws
	Next        int  `json:"next"`        // index of the bowler now at the line
	Finished    bool `json:"finished"`    // every bowler has finished
}
