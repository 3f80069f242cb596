// internal/game/engine.go
//
// Game engine for one game of ten-pin bowling shared by one or more bowlers.
// Responsibilities:
//   - Create games with validated bowler lists and a shared spare policy.
//   - Route each throw to the bowler at the line (Bowl).
//   - Pass the turn round-robin whenever a bowler finishes a frame.
//   - Rebuild games from stored throw sequences (Replay).
//
// Notes:
//   - A game is exactly ten frames per bowler; it never restarts.
//   - Bonus throws in the tenth belong to that frame, so they do not pass
//     the turn until the frame is bowled.
package game

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/robalobadob/bowling/internal/frame"
)

const maxNameLen = 32

type options struct {
	id         string
	rule       frame.SpareRule
	maxBowlers int
	now        func() time.Time
}

// Option configures New and Replay.
type Option func(*options)

// WithID fixes the game ID instead of generating one.
func WithID(id string) Option { return func(o *options) { o.id = id } }

// WithSpareRule sets the spare policy for every bowler.
func WithSpareRule(r frame.SpareRule) Option { return func(o *options) { o.rule = r } }

// WithMaxBowlers overrides DefaultMaxBowlers.
func WithMaxBowlers(n int) Option { return func(o *options) { o.maxBowlers = n } }

// WithClock sets the source of CreatedAt.
func WithClock(now func() time.Time) Option { return func(o *options) { o.now = now } }

// New constructs a game for the named bowlers, in throwing order.
func New(names []string, opts ...Option) (*Game, error) {
	o := options{rule: frame.SpareStandard, maxBowlers: DefaultMaxBowlers, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if len(names) == 0 {
		return nil, ErrNoBowlers
	}
	if len(names) > o.maxBowlers {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyBowlers, len(names), o.maxBowlers)
	}
	if _, err := frame.ParseSpareRule(string(o.rule)); err != nil {
		return nil, err
	}
	if o.id == "" {
		o.id = uuid.NewString()
	}

	g := &Game{
		ID:        o.id,
		Bowlers:   make([]*Bowler, 0, len(names)),
		Rule:      o.rule,
		CreatedAt: o.now().UTC(),
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || utf8.RuneCountInString(name) > maxNameLen {
			return nil, fmt.Errorf("%w: %q", ErrInvalidBowlerName, name)
		}
		g.Bowlers = append(g.Bowlers, NewBowler(name, o.rule))
	}
	return g, nil
}

// Current returns the bowler at the line.
func (g *Game) Current() *Bowler { return g.Bowlers[g.Turn] }

// Bowl records pins for the bowler at the line.
//
// Errors:
//   - ErrGameOver once the bowler at the line has finished (which, with
//     round-robin turns, means every bowler has).
//   - ErrInvalidPinCount for an illegal pin count; nothing changes.
func (g *Game) Bowl(pins int) (Result, error) {
	b := g.Current()
	i := b.CurrentFrame()
	if i < 0 {
		return Result{}, ErrGameOver
	}

	idx, err := b.RecordNextThrow(pins)
	if err != nil {
		return Result{}, err
	}

	res := Result{Bowler: g.Turn, Frame: idx, Pins: pins}
	if b.Frame(idx).Bowled() {
		res.FrameBowled = true
		g.Turn = (g.Turn + 1) % len(g.Bowlers)
	}
	res.Next = g.Turn
	res.Finished = g.Finished()
	return res, nil
}

// Finished reports whether every bowler has bowled all ten frames.
func (g *Game) Finished() bool {
	for _, b := range g.Bowlers {
		if !b.Finished() {
			return false
		}
	}
	return true
}

// Status is "playing" or "finished".
func (g *Game) Status() string {
	if g.Finished() {
		return "finished"
	}
	return "playing"
}

// Names returns the bowlers' names in throwing order.
func (g *Game) Names() []string {
	out := make([]string, len(g.Bowlers))
	for i, b := range g.Bowlers {
		out[i] = b.Name
	}
	return out
}

// Throws returns each bowler's recorded pin counts, indexed like Bowlers.
func (g *Game) Throws() [][]int {
	out := make([][]int, len(g.Bowlers))
	for i, b := range g.Bowlers {
		out[i] = b.Throws()
	}
	return out
}

// Clone returns a copy of the game that shares no mutable state with g.
func (g *Game) Clone() *Game {
	c := *g
	c.Bowlers = make([]*Bowler, len(g.Bowlers))
	for i, b := range g.Bowlers {
		nb := *b
		c.Bowlers[i] = &nb
	}
	return &c
}

// Replay rebuilds a game from per-bowler throw sequences. The throws are fed
// through Bowl in turn order, so the turn index is derived rather than
// trusted from storage.
func Replay(names []string, throws [][]int, opts ...Option) (*Game, error) {
	g, err := New(names, opts...)
	if err != nil {
		return nil, err
	}
	if len(throws) != len(g.Bowlers) {
		return nil, fmt.Errorf("%w: %d sequences for %d bowlers", ErrReplayMismatch, len(throws), len(g.Bowlers))
	}

	next := make([]int, len(throws))
	remaining := 0
	for _, seq := range throws {
		remaining += len(seq)
	}
	for remaining > 0 {
		t := g.Turn
		if next[t] >= len(throws[t]) {
			return nil, fmt.Errorf("%w: bowler %d has no throw for frame %d", ErrReplayMismatch, t, g.Current().CurrentFrame()+1)
		}
		if _, err := g.Bowl(throws[t][next[t]]); err != nil {
			return nil, fmt.Errorf("%w: bowler %d throw %d: %w", ErrReplayMismatch, t, next[t]+1, err)
		}
		next[t]++
		remaining--
	}
	return g, nil
}
