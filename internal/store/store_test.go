package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/bowling/assets"
	"github.com/robalobadob/bowling/internal/frame"
	"github.com/robalobadob/bowling/internal/game"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "bowling.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db))
	_, err = db.Exec(`INSERT INTO users (id, username, password_hash, created_at) VALUES ('u-1','ann','x','2026-01-01T00:00:00Z')`)
	require.NoError(t, err)
	return db
}

func stores(t *testing.T) map[string]Store {
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": NewSQLiteStore(newTestDB(t)),
	}
}

func newGame(t *testing.T, id string, created time.Time, names ...string) *game.Game {
	t.Helper()
	g, err := game.New(names, game.WithID(id), game.WithClock(func() time.Time { return created }))
	require.NoError(t, err)
	return g
}

func bowl(t *testing.T, g *game.Game, throws ...int) {
	t.Helper()
	for _, pins := range throws {
		_, err := g.Bowl(pins)
		require.NoError(t, err)
	}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2026, 10, 2, 18, 30, 0, 0, time.UTC)

	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			g := newGame(t, "g-1", created, "Ann", "Bob")
			require.NoError(t, st.Create(ctx, g, "u-1"))

			bowl(t, g, 10, 7, 2, 9, 1)
			require.NoError(t, st.Save(ctx, g))

			got, err := st.Get(ctx, "g-1")
			require.NoError(t, err)
			if diff := cmp.Diff(g.Card(), got.Card()); diff != "" {
				t.Fatalf("card mismatch (-want +got):\n%s", diff)
			}
			assert.Equal(t, 1, got.Turn)

			owner, err := st.Owner(ctx, "g-1")
			require.NoError(t, err)
			assert.Equal(t, "u-1", owner)
		})
	}
}

func TestStoreGetReturnsPrivateCopy(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			g := newGame(t, "copy", time.Now(), "Ann")
			require.NoError(t, st.Create(ctx, g, ""))
			bowl(t, g, 3)

			first, err := st.Get(ctx, "copy")
			require.NoError(t, err)
			assert.Empty(t, first.Throws()[0], "unsaved throws stay with the caller")

			bowl(t, first, 10)
			second, err := st.Get(ctx, "copy")
			require.NoError(t, err)
			assert.Empty(t, second.Throws()[0])

			require.NoError(t, st.Save(ctx, first))
			bowl(t, first, 4)
			third, err := st.Get(ctx, "copy")
			require.NoError(t, err)
			assert.Equal(t, []int{10}, third.Throws()[0])
		})
	}
}

func TestStoreNotFound(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := st.Get(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)
			_, err = st.Owner(ctx, "missing")
			require.ErrorIs(t, err, ErrNotFound)

			g := newGame(t, "never-created", time.Now(), "Ann")
			require.ErrorIs(t, st.Save(ctx, g), ErrNotFound)
		})
	}
}

func TestStoreGuestGameHasNoOwner(t *testing.T) {
	ctx := context.Background()
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			g := newGame(t, "guest", time.Now(), "Ann")
			require.NoError(t, st.Create(ctx, g, ""))
			owner, err := st.Owner(ctx, "guest")
			require.NoError(t, err)
			assert.Empty(t, owner)

			list, err := st.ListByOwner(ctx, "", 10)
			require.NoError(t, err)
			assert.Empty(t, list)
		})
	}
}

func TestStoreListByOwner(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 10, 3, 12, 0, 0, 0, time.UTC)

	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			older := newGame(t, "older", base, "Ann")
			newer := newGame(t, "newer", base.Add(time.Hour), "Ann", "Cat")
			require.NoError(t, st.Create(ctx, older, "u-1"))
			require.NoError(t, st.Create(ctx, newer, "u-1"))

			bowl(t, older, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
			require.True(t, older.Finished())
			require.NoError(t, st.Save(ctx, older))

			list, err := st.ListByOwner(ctx, "u-1", 10)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "newer", list[0].ID)
			assert.Equal(t, []string{"Ann", "Cat"}, list[0].Bowlers)
			assert.Equal(t, "playing", list[0].Status)
			assert.Nil(t, list[0].FinishedAt)

			assert.Equal(t, "older", list[1].ID)
			assert.Equal(t, "finished", list[1].Status)
			assert.Equal(t, 20, list[1].Throws)
			assert.NotNil(t, list[1].FinishedAt)

			list, err = st.ListByOwner(ctx, "u-1", 1)
			require.NoError(t, err)
			assert.Len(t, list, 1)
		})
	}
}

func TestSQLiteKeepsSpareRule(t *testing.T) {
	ctx := context.Background()
	st := NewSQLiteStore(newTestDB(t))
	g, err := game.New([]string{"Ann"}, game.WithID("rule"), game.WithSpareRule(frame.SpareNonZeroSecond))
	require.NoError(t, err)
	require.NoError(t, st.Create(ctx, g, ""))

	got, err := st.Get(ctx, "rule")
	require.NoError(t, err)
	assert.Equal(t, frame.SpareNonZeroSecond, got.Rule)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Migrate(db))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM _migrations`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestFailedMigrationRollsBack(t *testing.T) {
	db := newTestDB(t)
	count := func(query string, args ...any) int {
		t.Helper()
		var n int
		require.NoError(t, db.QueryRow(query, args...).Scan(&n))
		return n
	}

	broken := assets.Migration{Name: "0002_extra.sql", SQL: `CREATE TABLE extra (id INTEGER); INSERT INTO missing VALUES (1);`}
	err := applyMigrations(db, []assets.Migration{broken})
	require.ErrorContains(t, err, "apply 0002_extra.sql")
	assert.Zero(t, count(`SELECT COUNT(*) FROM sqlite_master WHERE name = 'extra'`))
	assert.Zero(t, count(`SELECT COUNT(*) FROM _migrations WHERE name = ?`, broken.Name))

	fixed := assets.Migration{Name: broken.Name, SQL: `CREATE TABLE extra (id INTEGER);`}
	require.NoError(t, applyMigrations(db, []assets.Migration{fixed}))
	require.NoError(t, applyMigrations(db, []assets.Migration{fixed}))
	assert.Equal(t, 1, count(`SELECT COUNT(*) FROM sqlite_master WHERE name = 'extra'`))
	assert.Equal(t, 2, count(`SELECT COUNT(*) FROM _migrations`))
}
