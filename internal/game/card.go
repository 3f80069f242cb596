package game

import (
	"time"

	"github.com/robalobadob/bowling/internal/frame"
)

// FrameCard is the scorecard cell of one frame.
// Points and Running stay nil until the frame's score is final.
type FrameCard struct {
	Number   int         `json:"number"` // 1-based
	Throws   []int       `json:"throws"`
	Open     bool        `json:"open"`
	Strike   bool        `json:"strike"`
	Spare    bool        `json:"spare"`
	Complete bool        `json:"complete"`
	Points   *int        `json:"points,omitempty"`
	Running  *int        `json:"running,omitempty"`
	State    frame.State `json:"state"`
}

// BowlerCard is one bowler's row on the scorecard.
type BowlerCard struct {
	Name         string      `json:"name"`
	Frames       []FrameCard `json:"frames"`
	Total        int         `json:"total"`
	CurrentFrame int         `json:"currentFrame"` // 1-based, 0 once finished
	Finished     bool        `json:"finished"`
}

// Card is a snapshot of the whole game for rendering.
type Card struct {
	GameID    string       `json:"gameId"`
	Status    string       `json:"status"`
	Turn      int          `json:"turn"`
	SpareRule string       `json:"spareRule"`
	CreatedAt time.Time    `json:"createdAt"`
	Bowlers   []BowlerCard `json:"bowlers"`
}

// Card builds the bowler's scorecard row.
func (b *Bowler) Card() BowlerCard {
	running := b.RunningTotals()
	row := BowlerCard{
		Name:         b.Name,
		Frames:       make([]FrameCard, 0, frame.Frames),
		Total:        b.Total(),
		CurrentFrame: b.CurrentFrame() + 1,
		Finished:     b.Finished(),
	}
	for i, f := range b.Frames() {
		fc := FrameCard{
			Number:   i + 1,
			Throws:   f.Throws(),
			Open:     f.Open(),
			Strike:   f.Strike(),
			Spare:    f.Spare(),
			Complete: f.Complete(),
			State:    f.State(),
		}
		if fc.Complete {
			pts := f.Points()
			fc.Points = &pts
		}
		if i < len(running) {
			r := running[i]
			fc.Running = &r
		}
		row.Frames = append(row.Frames, fc)
	}
	return row
}

// Card builds a scorecard snapshot of the game.
func (g *Game) Card() Card {
	c := Card{
		GameID:    g.ID,
		Status:    g.Status(),
		Turn:      g.Turn,
		SpareRule: string(g.Rule),
		CreatedAt: g.CreatedAt,
		Bowlers:   make([]BowlerCard, 0, len(g.Bowlers)),
	}
	for _, b := range g.Bowlers {
		c.Bowlers = append(c.Bowlers, b.Card())
	}
	return c
}
