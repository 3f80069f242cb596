package game

import (
	"fmt"

	"github.com/robalobadob/bowling/internal/frame"
)

// NewBowler returns a bowler with an empty sequence.
func NewBowler(name string, rule frame.SpareRule) *Bowler {
	b := &Bowler{Name: name, rule: rule}
	for i := range b.throws {
		b.throws[i] = frame.None
	}
	for i := range b.links {
		b.links[i] = frame.RegularLinks(i)
	}
	return b
}

// Frame returns a view of frame i (zero-based).
func (b *Bowler) Frame(i int) frame.Frame {
	return frame.New(i, b.throws[:], b.links[i], b.rule)
}

// Frames returns views of all ten frames.
func (b *Bowler) Frames() []frame.Frame {
	out := make([]frame.Frame, frame.Frames)
	for i := range out {
		out[i] = b.Frame(i)
	}
	return out
}

// CurrentFrame is the first frame that is not yet bowled, or -1 once the
// bowler has finished.
func (b *Bowler) CurrentFrame() int {
	for i := 0; i < frame.Frames; i++ {
		if !b.Frame(i).Bowled() {
			return i
		}
	}
	return -1
}

// Finished reports whether all ten frames are bowled. In the tenth this
// includes any bonus throws earned there.
func (b *Bowler) Finished() bool { return b.CurrentFrame() < 0 }

// RecordNextThrow stores pins as the bowler's next throw and returns the
// frame it landed in.
//
// Validation happens before any write, so a rejected throw leaves the
// sequence and every frame link exactly as they were.
func (b *Bowler) RecordNextThrow(pins int) (int, error) {
	i := b.CurrentFrame()
	if i < 0 {
		return -1, ErrGameAlreadyComplete
	}
	if pins < 0 || pins > frame.Rack {
		return i, fmt.Errorf("%w: %d", ErrInvalidPinCount, pins)
	}
	slot, standing := b.nextSlot(i)
	if pins > standing {
		return i, fmt.Errorf("%w: %d with %d standing", ErrInvalidPinCount, pins, standing)
	}

	b.throws[slot] = frame.Throw(pins)
	if i > 0 {
		b.relink(i - 1)
	}
	b.relink(i)
	return i, nil
}

// nextSlot finds the first empty own slot of frame i and how many pins are
// standing for it. The rack is reset whenever it is cleared, which only
// matters in the tenth.
func (b *Bowler) nextSlot(i int) (slot, standing int) {
	down := 0
	for _, s := range b.links[i].Own {
		if s < 0 {
			continue
		}
		t := b.throws[s]
		if !t.Thrown() {
			return s, frame.Rack - down
		}
		down += t.Value()
		if down == frame.Rack {
			down = 0
		}
	}
	panic(fmt.Sprintf("game: frame %d has no free slot but is not bowled", i))
}

// relink re-points frame i's bonus slots at the throws that follow it.
func (b *Bowler) relink(i int) {
	if i >= frame.Tenth {
		return
	}
	f := b.Frame(i)
	need := 0
	switch {
	case f.Strike():
		need = 2
	case f.Spare():
		need = 1
	}
	b.links[i].Bonus = [2]int{-1, -1}
	copy(b.links[i].Bonus[:], b.following(i, need))
}

// following lists the slots of the next n throws after frame i, whether or
// not they have been thrown yet. A strike in frames 1-9 occupies only its
// first slot, so its unused second slot is skipped.
func (b *Bowler) following(i, n int) []int {
	out := make([]int, 0, n)
	for j := i + 1; j < frame.Frames && len(out) < n; j++ {
		for k, s := range b.links[j].Own {
			if s < 0 || len(out) == n {
				break
			}
			out = append(out, s)
			if j < frame.Tenth && k == 0 && b.throws[s].Value() == frame.Rack {
				break
			}
		}
	}
	return out
}

// Total sums the points of every complete frame.
func (b *Bowler) Total() int {
	total := 0
	for _, f := range b.Frames() {
		if f.Complete() {
			total += f.Points()
		}
	}
	return total
}

// RunningTotals returns the cumulative score through each frame, stopping at
// the first frame whose score is not final yet.
func (b *Bowler) RunningTotals() []int {
	out := make([]int, 0, frame.Frames)
	sum := 0
	for _, f := range b.Frames() {
		if !f.Complete() {
			break
		}
		sum += f.Points()
		out = append(out, sum)
	}
	return out
}

// Throws returns the recorded pin counts in the order they were thrown.
func (b *Bowler) Throws() []int {
	out := make([]int, 0, frame.MaxThrows)
	for _, t := range b.throws {
		if t.Thrown() {
			out = append(out, t.Value())
		}
	}
	return out
}

// ReplayBowler rebuilds a bowler by recording throws in order.
func ReplayBowler(name string, throws []int, rule frame.SpareRule) (*Bowler, error) {
	b := NewBowler(name, rule)
	for n, pins := range throws {
		if _, err := b.RecordNextThrow(pins); err != nil {
			return nil, fmt.Errorf("throw %d: %w", n+1, err)
		}
	}
	return b, nil
}
