// internal/store/sqlite.go
//
// SQLite implementation of Store.
// Expects the schema from assets/migrations to be applied.
//
// Save rewrites a game's throw rows inside one transaction; with at most 21
// throws per bowler that is cheaper to reason about than diffing.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalobadob/bowling/internal/frame"
	"github.com/robalobadob/bowling/internal/game"
)

type sqliteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStore wraps an open, migrated database.
func NewSQLiteStore(db *sql.DB) Store {
	return &sqliteStore{db: db, now: time.Now}
}

func (s *sqliteStore) Create(ctx context.Context, g *game.Game, ownerID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	owner := sql.NullString{String: ownerID, Valid: ownerID != ""}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO games (id, owner_id, spare_rule, status, created_at) VALUES (?,?,?,?,?)`,
		g.ID, owner, string(g.Rule), g.Status(), g.CreatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	for seat, name := range g.Names() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO game_bowlers (game_id, seat, name) VALUES (?,?,?)`, g.ID, seat, name,
		); err != nil {
			return fmt.Errorf("insert bowler %d: %w", seat, err)
		}
	}
	if err := writeThrows(ctx, tx, g); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *sqliteStore) Save(ctx context.Context, g *game.Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var finished sql.NullString
	if g.Finished() {
		finished = sql.NullString{String: s.now().UTC().Format(time.RFC3339Nano), Valid: true}
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE games SET status=?, finished_at=COALESCE(finished_at, ?) WHERE id=?`,
		g.Status(), finished, g.ID,
	)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM throws WHERE game_id=?`, g.ID); err != nil {
		return fmt.Errorf("clear throws: %w", err)
	}
	if err := writeThrows(ctx, tx, g); err != nil {
		return err
	}
	return tx.Commit()
}

func writeThrows(ctx context.Context, tx *sql.Tx, g *game.Game) error {
	for seat, seq := range g.Throws() {
		for n, pins := range seq {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO throws (game_id, seat, seq, pins) VALUES (?,?,?,?)`, g.ID, seat, n, pins,
			); err != nil {
				return fmt.Errorf("insert throw %d/%d: %w", seat, n, err)
			}
		}
	}
	return nil
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*game.Game, error) {
	var rule, created string
	err := s.db.QueryRowContext(ctx,
		`SELECT spare_rule, created_at FROM games WHERE id=?`, id,
	).Scan(&rule, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load game: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	names, err := s.bowlers(ctx, id)
	if err != nil {
		return nil, err
	}
	throws, err := s.throws(ctx, id, len(names))
	if err != nil {
		return nil, err
	}

	g, err := game.Replay(names, throws,
		game.WithID(id),
		game.WithSpareRule(frame.SpareRule(rule)),
		game.WithMaxBowlers(len(names)),
		game.WithClock(func() time.Time { return createdAt }),
	)
	if err != nil {
		return nil, fmt.Errorf("replay game %s: %w", id, err)
	}
	return g, nil
}

func (s *sqliteStore) bowlers(ctx context.Context, id string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM game_bowlers WHERE game_id=? ORDER BY seat`, id)
	if err != nil {
		return nil, fmt.Errorf("load bowlers: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *sqliteStore) throws(ctx context.Context, id string, seats int) ([][]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seat, pins FROM throws WHERE game_id=? ORDER BY seat, seq`, id)
	if err != nil {
		return nil, fmt.Errorf("load throws: %w", err)
	}
	defer rows.Close()

	out := make([][]int, seats)
	for rows.Next() {
		var seat, pins int
		if err := rows.Scan(&seat, &pins); err != nil {
			return nil, err
		}
		if seat < 0 || seat >= seats {
			return nil, fmt.Errorf("throw for unknown seat %d", seat)
		}
		out[seat] = append(out[seat], pins)
	}
	return out, rows.Err()
}

func (s *sqliteStore) Owner(ctx context.Context, id string) (string, error) {
	var owner sql.NullString
	err := s.db.QueryRowContext(ctx, `SELECT owner_id FROM games WHERE id=?`, id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return owner.String, nil
}

func (s *sqliteStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, finished_at FROM games WHERE owner_id=? ORDER BY created_at DESC LIMIT ?`,
		ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}

	type row struct {
		id       string
		finished sql.NullString
	}
	var found []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.finished); err != nil {
			rows.Close()
			return nil, err
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	out := make([]Summary, 0, len(found))
	for _, r := range found {
		g, err := s.Get(ctx, r.id)
		if err != nil {
			return nil, err
		}
		var finishedAt *time.Time
		if r.finished.Valid {
			if t, err := time.Parse(time.RFC3339Nano, r.finished.String); err == nil {
				finishedAt = &t
			}
		}
		out = append(out, summarize(g, finishedAt))
	}
	return out, nil
}
