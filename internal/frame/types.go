// internal/frame/types.go
//
// Core type definitions for the frame model.
// Defines:
//   - Throw: one slot of a bowler's raw throw sequence (pin count or absent).
//   - Links: where a frame's own throws and bonus throws live in that sequence.
//   - Mark / Status / State: how a frame renders and where it is in its lifecycle.
//   - SpareRule: the policy deciding what counts as a spare.

package frame

import (
	"errors"
	"strings"
)

const (
	// Rack is the number of pins standing at the start of a frame.
	Rack = 10
	// Frames is the number of frames in one bowler's game.
	Frames = 10
	// Tenth is the index of the final frame.
	Tenth = Frames - 1
	// MaxThrows is the length of a bowler's raw sequence: two slots for each
	// of the first nine frames plus three for the tenth.
	MaxThrows = 2*Tenth + 3
)

// Throw is the pin count recorded in one slot. None marks a slot that has
// not been thrown yet.
type Throw int8

// None is the value of an empty slot.
const None Throw = -1

// Thrown reports whether the slot holds a recorded throw.
func (t Throw) Thrown() bool { return t >= 0 }

// Value is the pin count, or 0 for an empty slot.
func (t Throw) Value() int {
	if t < 0 {
		return 0
	}
	return int(t)
}

// Links locates a frame's throws in its bowler's raw sequence.
// Entries of -1 are unused.
type Links struct {
	Own   [3]int // the frame's own slots; only the tenth frame uses Own[2]
	Bonus [2]int // slots in later frames whose pins count toward this frame
}

// RegularLinks returns the own-slot layout for frame i with no bonus links.
func RegularLinks(i int) Links {
	l := Links{Own: [3]int{2 * i, 2*i + 1, -1}, Bonus: [2]int{-1, -1}}
	if i == Tenth {
		l.Own[2] = 2*i + 2
	}
	return l
}

// Mark is the scorecard symbol of a bowled frame.
type Mark string

const (
	MarkNone   Mark = ""
	MarkOpen   Mark = "open"
	MarkStrike Mark = "strike"
	MarkSpare  Mark = "spare"
)

// Status is the lifecycle position of a frame.
type Status string

const (
	StatusEmpty         Status = "empty"
	StatusInProgress    Status = "in_progress"
	StatusAwaitingBonus Status = "awaiting_bonus"
	StatusComplete      Status = "complete"
)

// State is the tagged view of a frame. Which fields carry meaning depends on
// Status:
//   - empty:          none.
//   - in_progress:    First, and Second once the tenth awaits its third throw.
//   - awaiting_bonus: First, Second (0 after a strike) and Mark.
//   - complete:       Total, plus First/Second/Mark for rendering.
type State struct {
	Status Status `json:"status"`
	First  int    `json:"first,omitempty"`
	Second int    `json:"second,omitempty"`
	Mark   Mark   `json:"mark,omitempty"`
	Total  int    `json:"total,omitempty"`
}

// SpareRule decides whether two throws that clear the rack count as a spare.
type SpareRule string

const (
	// SpareStandard counts any two throws that clear the rack.
	SpareStandard SpareRule = "standard"
	// SpareNonZeroSecond additionally requires the second throw to hit at
	// least one pin. Strikes are classified first and a second throw of 0
	// can only clear the rack after a strike, so in legal play this scores
	// every game exactly like SpareStandard. It stays accepted so configs,
	// requests and stored games that name it keep loading.
	SpareNonZeroSecond SpareRule = "nonzero-second"
)

// ErrUnknownSpareRule is returned by ParseSpareRule for unrecognised names.
var ErrUnknownSpareRule = errors.New("unknown spare rule")

// ParseSpareRule maps a config or request value to a SpareRule.
// The empty string selects SpareStandard.
func ParseSpareRule(s string) (SpareRule, error) {
	switch SpareRule(strings.ToLower(strings.TrimSpace(s))) {
	case "", SpareStandard:
		return SpareStandard, nil
	case SpareNonZeroSecond:
		return SpareNonZeroSecond, nil
	}
	return "", ErrUnknownSpareRule
}
