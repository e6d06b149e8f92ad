package attempt

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"negotiator-lite/apps/server/internal/storage"
)

var attemptSchema = map[storage.Dialect][]string{
	storage.SQLite: {
		`CREATE TABLE IF NOT EXISTS attempts (
    id TEXT PRIMARY KEY,
    player_id INTEGER NOT NULL,
    day TEXT NOT NULL,
    finished INTEGER NOT NULL DEFAULT 0,
    payload TEXT NOT NULL,
    created_at_ms INTEGER NOT NULL,
    updated_at_ms INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_player_day ON attempts(player_id, day, created_at_ms)`,
	},
	storage.Postgres: {
		`CREATE TABLE IF NOT EXISTS attempts (
    id TEXT PRIMARY KEY,
    player_id BIGINT NOT NULL,
    day TEXT NOT NULL,
    finished BOOLEAN NOT NULL DEFAULT FALSE,
    payload TEXT NOT NULL,
    created_at_ms BIGINT NOT NULL,
    updated_at_ms BIGINT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_player_day ON attempts(player_id, day, created_at_ms)`,
	},
}

type SQLStore struct {
	db *storage.DB
}

func NewSQLStore(db *storage.DB) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("attempt: nil database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.EnsureSchema(ctx, attemptSchema); err != nil {
		return nil, err
	}
	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Create(ctx context.Context, a *Attempt) error {
	data, err := encode(a)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err = s.db.ExecContext(ctx, s.db.Rebind(`
INSERT INTO attempts (id, player_id, day, finished, payload, created_at_ms, updated_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?)
`), a.ID, a.PlayerID, a.Day, a.Finished, string(data), a.CreatedAt.UnixMilli(), a.UpdatedAt.UnixMilli())
	if storage.IsUniqueViolation(err) {
		return fmt.Errorf("attempt %s already exists", a.ID)
	}
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (*Attempt, error) {
	return s.one(ctx, `SELECT payload FROM attempts WHERE id = ?`, id)
}

func (s *SQLStore) Latest(ctx context.Context, playerID uint64, day string) (*Attempt, error) {
	return s.one(ctx, `
SELECT payload FROM attempts
WHERE player_id = ? AND day = ?
ORDER BY created_at_ms DESC
LIMIT 1
`, playerID, day)
}

func (s *SQLStore) one(ctx context.Context, query string, args ...any) (*Attempt, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var payload string
	if err := s.db.QueryRowContext(ctx, s.db.Rebind(query), args...).Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return decode([]byte(payload))
}

func (s *SQLStore) Save(ctx context.Context, a *Attempt) error {
	data, err := encode(a)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`
UPDATE attempts SET finished = ?, payload = ?, updated_at_ms = ? WHERE id = ?
`), a.Finished, string(data), a.UpdatedAt.UnixMilli(), a.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Close leaves the shared database open.
func (s *SQLStore) Close() error { return nil }
