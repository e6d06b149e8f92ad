package progress

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"negotiator-lite/apps/server/internal/storage"
)

var progressSchema = map[storage.Dialect][]string{
	storage.SQLite: {
		`CREATE TABLE IF NOT EXISTS player_progress (
    player_id INTEGER PRIMARY KEY,
    last_played_day TEXT NOT NULL DEFAULT '',
    current_streak INTEGER NOT NULL DEFAULT 0,
    highest_streak INTEGER NOT NULL DEFAULT 0,
    attempts INTEGER NOT NULL DEFAULT 0,
    wins INTEGER NOT NULL DEFAULT 0,
    updated_at_ms INTEGER NOT NULL
)`,
	},
	storage.Postgres: {
		`CREATE TABLE IF NOT EXISTS player_progress (
    player_id BIGINT PRIMARY KEY,
    last_played_day TEXT NOT NULL DEFAULT '',
    current_streak INTEGER NOT NULL DEFAULT 0,
    highest_streak INTEGER NOT NULL DEFAULT 0,
    attempts INTEGER NOT NULL DEFAULT 0,
    wins INTEGER NOT NULL DEFAULT 0,
    updated_at_ms BIGINT NOT NULL
)`,
	},
}

type sqlService struct {
	db *storage.DB
}

func NewSQLService(db *storage.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("progress: nil database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.EnsureSchema(ctx, progressSchema); err != nil {
		return nil, err
	}
	return &sqlService{db: db}, nil
}

func (s *sqlService) Close() error { return nil }

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *sqlService) read(ctx context.Context, q queryer, playerID uint64) (*Progress, error) {
	p := &Progress{PlayerID: playerID}
	var updatedAtMs int64
	err := q.QueryRowContext(ctx, s.db.Rebind(`
SELECT last_played_day, current_streak, highest_streak, attempts, wins, updated_at_ms
FROM player_progress
WHERE player_id = ?
`), playerID).Scan(&p.LastPlayedDay, &p.CurrentStreak, &p.HighestStreak, &p.Attempts, &p.Wins, &updatedAtMs)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return p, nil
		}
		return nil, err
	}
	p.UpdatedAt = time.UnixMilli(updatedAtMs).UTC()
	return p, nil
}

func (s *sqlService) Get(ctx context.Context, playerID uint64) (*Progress, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return s.read(ctx, s.db, playerID)
}

func (s *sqlService) RecordOutcome(ctx context.Context, playerID uint64, day string, success bool) (*Progress, error) {
	if playerID == 0 {
		return nil, fmt.Errorf("invalid player id")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := s.read(ctx, tx, playerID)
	if err != nil {
		return nil, err
	}
	p.apply(day, success, time.Now().UTC())

	if _, err := tx.ExecContext(ctx, s.db.Rebind(`
INSERT INTO player_progress (player_id, last_played_day, current_streak, highest_streak, attempts, wins, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (player_id) DO UPDATE SET
    last_played_day = excluded.last_played_day,
    current_streak = excluded.current_streak,
    highest_streak = excluded.highest_streak,
    attempts = excluded.attempts,
    wins = excluded.wins,
    updated_at_ms = excluded.updated_at_ms
`), playerID, p.LastPlayedDay, p.CurrentStreak, p.HighestStreak, p.Attempts, p.Wins, p.UpdatedAt.UnixMilli()); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return p, nil
}
