// internal/frame/frame.go
//
// Read-only frame views.
// A Frame never owns pins: it holds slot indices (Links) into the raw throw
// sequence of the bowler it belongs to and recomputes everything on demand.
// The bowler re-points Links.Bonus as throws arrive; the view only reads.

package frame

import "fmt"

// Frame is a view of one frame of a bowler's game.
type Frame struct {
	index  int
	throws []Throw
	links  Links
	rule   SpareRule
}

// New builds a view of frame index over throws. throws must be the owning
// bowler's full raw sequence; links must only name slots inside it.
func New(index int, throws []Throw, links Links, rule SpareRule) Frame {
	if index < 0 || index > Tenth {
		panic(fmt.Sprintf("frame: index %d out of range", index))
	}
	return Frame{index: index, throws: throws, links: links, rule: rule}
}

// Index is the zero-based frame number.
func (f Frame) Index() int { return f.index }

// IsTenth reports whether this is the final frame.
func (f Frame) IsTenth() bool { return f.index == Tenth }

// at reads a slot. A link outside the sequence is a bookkeeping defect in
// the owning bowler, not a user error.
func (f Frame) at(slot int) Throw {
	if slot < 0 {
		return None
	}
	if slot >= len(f.throws) {
		panic(fmt.Sprintf("frame %d: slot %d outside sequence of %d", f.index, slot, len(f.throws)))
	}
	return f.throws[slot]
}

func (f Frame) first() Throw  { return f.at(f.links.Own[0]) }
func (f Frame) second() Throw { return f.at(f.links.Own[1]) }
func (f Frame) third() Throw  { return f.at(f.links.Own[2]) }

// Strike reports whether the first throw knocked down every pin.
func (f Frame) Strike() bool {
	return f.first().Value() == Rack
}

// Spare reports whether the first two throws, not being a strike, cleared
// the rack.
func (f Frame) Spare() bool {
	b1, b2 := f.first(), f.second()
	if !b1.Thrown() || !b2.Thrown() || f.Strike() {
		return false
	}
	if b1.Value()+b2.Value() != Rack {
		return false
	}
	if f.rule == SpareNonZeroSecond && b2.Value() == 0 {
		return false
	}
	return true
}

// Open reports whether both regular throws are in and neither a strike nor
// a spare was made.
func (f Frame) Open() bool {
	b1, b2 := f.first(), f.second()
	if !b1.Thrown() || !b2.Thrown() {
		return false
	}
	return !f.Strike() && !f.Spare()
}

// Bowled reports whether the frame's own throws are finished. Bonus throws
// borrowed from later frames may still be outstanding.
//
// In the tenth frame a strike or spare earns a third throw in the same
// frame, so the frame is only bowled once that throw is in.
func (f Frame) Bowled() bool {
	if !f.IsTenth() {
		return f.Strike() || (f.first().Thrown() && f.second().Thrown())
	}
	if !f.first().Thrown() || !f.second().Thrown() {
		return false
	}
	if f.Strike() || f.Spare() {
		return f.third().Thrown()
	}
	return true
}

// bonusNeeded is how many throws from later frames feed this frame's score.
func (f Frame) bonusNeeded() int {
	switch {
	case f.IsTenth():
		return 0
	case f.Strike():
		return 2
	case f.Spare():
		return 1
	}
	return 0
}

// Complete reports whether the frame's score is final and safe to display.
func (f Frame) Complete() bool {
	if !f.Bowled() {
		return false
	}
	for k := 0; k < f.bonusNeeded(); k++ {
		if !f.at(f.links.Bonus[k]).Thrown() {
			return false
		}
	}
	return true
}

// Points sums the frame's own throws and whatever bonus throws have been
// recorded. Until Complete is true the result is only a running figure.
func (f Frame) Points() int {
	total := 0
	for _, slot := range f.links.Own {
		total += f.at(slot).Value()
	}
	for k := 0; k < f.bonusNeeded(); k++ {
		total += f.at(f.links.Bonus[k]).Value()
	}
	return total
}

// Throws returns the pin counts of the frame's own recorded throws.
func (f Frame) Throws() []int {
	out := make([]int, 0, 3)
	for _, slot := range f.links.Own {
		if t := f.at(slot); t.Thrown() {
			out = append(out, t.Value())
		}
	}
	return out
}

// Mark is the symbol the frame earns once its first two throws are known
// (or its first, for a strike).
func (f Frame) Mark() Mark {
	switch {
	case f.Strike():
		return MarkStrike
	case f.Spare():
		return MarkSpare
	case f.Open():
		return MarkOpen
	}
	return MarkNone
}

// State folds the predicates into a single tagged value.
func (f Frame) State() State {
	b1 := f.first()
	switch {
	case !b1.Thrown():
		return State{Status: StatusEmpty}
	case !f.Bowled():
		st := State{Status: StatusInProgress, First: b1.Value()}
		if b2 := f.second(); b2.Thrown() {
			st.Second = b2.Value()
		}
		return st
	case !f.Complete():
		return State{Status: StatusAwaitingBonus, First: b1.Value(), Second: f.second().Value(), Mark: f.Mark()}
	default:
		return State{Status: StatusComplete, First: b1.Value(), Second: f.second().Value(), Mark: f.Mark(), Total: f.Points()}
	}
}
