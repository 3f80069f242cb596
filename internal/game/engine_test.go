package game

import (
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/bowling/internal/frame"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		names   []string
		opts    []Option
		wantErr error
	}{
		{name: "no bowlers", names: nil, wantErr: ErrNoBowlers},
		{name: "blank name", names: []string{"Ann", "  "}, wantErr: ErrInvalidBowlerName},
		{name: "long name", names: []string{strings.Repeat("x", maxNameLen+1)}, wantErr: ErrInvalidBowlerName},
		{name: "too many", names: []string{"a", "b", "c"}, opts: []Option{WithMaxBowlers(2)}, wantErr: ErrTooManyBowlers},
		{name: "unknown rule", names: []string{"a"}, opts: []Option{WithSpareRule("candlepin")}, wantErr: frame.ErrUnknownSpareRule},
		{name: "ok", names: []string{"Ann", "Bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(tt.names, tt.opts...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, g.ID)
			assert.Equal(t, tt.names, g.Names())
			assert.Equal(t, "playing", g.Status())
		})
	}
}

func TestTurnsAlternateOnBowledFrames(t *testing.T) {
	g, err := New([]string{"Ann", "Bob"})
	require.NoError(t, err)

	res, err := g.Bowl(3)
	require.NoError(t, err)
	assert.Equal(t, Result{Bowler: 0, Frame: 0, Pins: 3, Next: 0}, res)

	res, err = g.Bowl(4)
	require.NoError(t, err)
	assert.True(t, res.FrameBowled)
	assert.Equal(t, 1, res.Next)

	res, err = g.Bowl(10)
	require.NoError(t, err)
	assert.Equal(t, Result{Bowler: 1, Frame: 0, Pins: 10, FrameBowled: true, Next: 0}, res)

	_, err = g.Bowl(8)
	require.NoError(t, err)
	_, err = g.Bowl(5)
	require.ErrorIs(t, err, ErrInvalidPinCount)
	assert.Equal(t, 0, g.Turn, "a rejected throw keeps the bowler at the line")
}

func TestTenthBonusThrowsKeepTheTurn(t *testing.T) {
	g, err := New([]string{"Ann", "Bob"})
	require.NoError(t, err)
	for i := 0; i < 9*2*2; i++ {
		_, err := g.Bowl(0)
		require.NoError(t, err)
	}
	require.Equal(t, 0, g.Turn)

	for _, pins := range []int{10, 10} {
		res, err := g.Bowl(pins)
		require.NoError(t, err)
		assert.False(t, res.FrameBowled)
		assert.Equal(t, 0, res.Next)
	}
	res, err := g.Bowl(10)
	require.NoError(t, err)
	assert.True(t, res.FrameBowled)
	assert.Equal(t, 1, res.Next)
	assert.False(t, res.Finished)

	_, err = g.Bowl(3)
	require.NoError(t, err)
	res, err = g.Bowl(4)
	require.NoError(t, err)
	assert.True(t, res.Finished)
	assert.Equal(t, "finished", g.Status())

	_, err = g.Bowl(0)
	require.ErrorIs(t, err, ErrGameOver)
	require.ErrorIs(t, err, ErrGameAlreadyComplete)

	assert.Equal(t, 30, g.Bowlers[0].Total())
	assert.Equal(t, 7, g.Bowlers[1].Total())
}

func TestCardGatesPoints(t *testing.T) {
	g, err := New([]string{"Ann"}, WithID("g-1"))
	require.NoError(t, err)
	for _, pins := range []int{10, 3} {
		_, err := g.Bowl(pins)
		require.NoError(t, err)
	}

	c := g.Card()
	require.Equal(t, "g-1", c.GameID)
	require.Len(t, c.Bowlers, 1)
	row := c.Bowlers[0]
	assert.Equal(t, 2, row.CurrentFrame)
	assert.Zero(t, row.Total)

	first := row.Frames[0]
	assert.True(t, first.Strike)
	assert.False(t, first.Complete)
	assert.Nil(t, first.Points)
	assert.Nil(t, first.Running)
	assert.Equal(t, frame.StatusAwaitingBonus, first.State.Status)
	assert.Equal(t, []int{3}, row.Frames[1].Throws)
	assert.Equal(t, frame.StatusInProgress, row.Frames[1].State.Status)

	_, err = g.Bowl(4)
	require.NoError(t, err)
	row = g.Card().Bowlers[0]
	require.NotNil(t, row.Frames[0].Points)
	assert.Equal(t, 17, *row.Frames[0].Points)
	require.NotNil(t, row.Frames[1].Running)
	assert.Equal(t, 24, *row.Frames[1].Running)
}

func TestReplayRebuildsCard(t *testing.T) {
	created := time.Date(2026, 10, 1, 19, 0, 0, 0, time.UTC)
	clock := func() time.Time { return created }

	for seed := uint64(1); seed <= 25; seed++ {
		faker := gofakeit.New(int64(seed))
		names := []string{faker.FirstName(), faker.FirstName(), faker.FirstName()}
		g, err := New(names, WithID("replay"), WithClock(clock))
		require.NoError(t, err)

		// Stop part-way through some games to cover unfinished replays.
		limit := faker.IntRange(1, 70)
		for n := 0; n < limit && !g.Finished(); n++ {
			_, err := g.Bowl(legalThrow(faker, g.Current()))
			require.NoError(t, err)
		}

		again, err := Replay(g.Names(), g.Throws(), WithID("replay"), WithClock(clock))
		require.NoError(t, err)
		assert.Equal(t, g.Turn, again.Turn)
		if diff := cmp.Diff(g.Card(), again.Card()); diff != "" {
			t.Fatalf("seed %d: replayed card mismatch (-want +got):\n%s", seed, diff)
		}
	}
}

func TestReplayMismatch(t *testing.T) {
	_, err := Replay([]string{"Ann", "Bob"}, [][]int{{3, 4, 5}, {}})
	require.ErrorIs(t, err, ErrReplayMismatch)

	_, err = Replay([]string{"Ann"}, [][]int{{3, 4}, {1}})
	require.ErrorIs(t, err, ErrReplayMismatch)

	_, err = Replay([]string{"Ann"}, [][]int{{3, 9}})
	require.ErrorIs(t, err, ErrReplayMismatch)
	require.ErrorIs(t, err, ErrInvalidPinCount)
}

func TestCloneIsIndependent(t *testing.T) {
	g, err := New([]string{"Ann", "Bob"}, WithID("orig"))
	require.NoError(t, err)
	_, err = g.Bowl(10)
	require.NoError(t, err)

	c := g.Clone()
	if diff := cmp.Diff(g.Card(), c.Card()); diff != "" {
		t.Fatalf("clone differs (-orig +clone):\n%s", diff)
	}

	_, err = c.Bowl(7)
	require.NoError(t, err)
	assert.Equal(t, 1, g.Turn)
	assert.Empty(t, g.Bowlers[1].Throws())
	assert.Equal(t, []int{7}, c.Bowlers[1].Throws())
	assert.Equal(t, "Ann", c.Bowlers[0].Name)
}
