package ledger

import (
	"context"
	"fmt"
	"time"

	"negotiator-lite/apps/server/internal/storage"
)

var ledgerSchema = map[storage.Dialect][]string{
	storage.SQLite: {
		`CREATE TABLE IF NOT EXISTS scores (
    attempt_id TEXT PRIMARY KEY,
    player_id INTEGER NOT NULL,
    username TEXT NOT NULL,
    scenario_id TEXT NOT NULL,
    score REAL NOT NULL,
    success INTEGER NOT NULL,
    turns INTEGER NOT NULL,
    day TEXT NOT NULL,
    created_at_ms INTEGER NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_day ON scores(day, score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player_id, day)`,
	},
	storage.Postgres: {
		`CREATE TABLE IF NOT EXISTS scores (
    attempt_id TEXT PRIMARY KEY,
    player_id BIGINT NOT NULL,
    username TEXT NOT NULL,
    scenario_id TEXT NOT NULL,
    score DOUBLE PRECISION NOT NULL,
    success BOOLEAN NOT NULL,
    turns INTEGER NOT NULL,
    day TEXT NOT NULL,
    created_at_ms BIGINT NOT NULL
)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_day ON scores(day, score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_scores_player ON scores(player_id, day)`,
	},
}

const selectEntry = `SELECT attempt_id, player_id, username, scenario_id, score, success, turns, day, created_at_ms FROM scores`

type sqlService struct {
	db *storage.DB
}

// NewSQLService stores scores in db. Postgres deployments open db with the
// pgx driver.
func NewSQLService(db *storage.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("ledger: nil database")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.EnsureSchema(ctx, ledgerSchema); err != nil {
		return nil, err
	}
	return &sqlService{db: db}, nil
}

func (s *sqlService) Close() error { return nil }

func (s *sqlService) Record(ctx context.Context, e Entry) error {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(`
INSERT INTO scores (attempt_id, player_id, username, scenario_id, score, success, turns, day, created_at_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (attempt_id) DO NOTHING
`), e.AttemptID, e.PlayerID, e.Username, e.ScenarioID, e.Score, e.Success, e.Turns, e.Day, e.CreatedAt.UnixMilli())
	return err
}

func (s *sqlService) DailyTop(ctx context.Context, day string, limit int) ([]Entry, error) {
	return s.query(ctx, selectEntry+` WHERE day = ? ORDER BY score DESC, created_at_ms ASC LIMIT ?`, day, clampLimit(limit))
}

func (s *sqlService) AllTimeTop(ctx context.Context, limit int) ([]Entry, error) {
	return s.query(ctx, selectEntry+` ORDER BY score DESC, created_at_ms ASC LIMIT ?`, clampLimit(limit))
}

func (s *sqlService) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		var createdAtMs int64
		if err := rows.Scan(&e.AttemptID, &e.PlayerID, &e.Username, &e.ScenarioID,
			&e.Score, &e.Success, &e.Turns, &e.Day, &createdAtMs); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(createdAtMs).UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *sqlService) PlayerStats(ctx context.Context, playerID uint64, day string) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var st Stats
	var lifetimeAvg, best, dailyAvg float64
	if err := s.db.QueryRowContext(ctx, s.db.Rebind(`
SELECT COUNT(*), COALESCE(AVG(score), 0), COALESCE(MAX(score), 0)
FROM scores WHERE player_id = ?
`), playerID).Scan(&st.LifetimeCount, &lifetimeAvg, &best); err != nil {
		return Stats{}, err
	}
	if err := s.db.QueryRowContext(ctx, s.db.Rebind(`
SELECT COUNT(*), COALESCE(AVG(score), 0)
FROM scores WHERE player_id = ? AND day = ?
`), playerID, day).Scan(&st.DailyCount, &dailyAvg); err != nil {
		return Stats{}, err
	}
	st.LifetimeAverage = round2(lifetimeAvg)
	st.DailyAverage = round2(dailyAvg)
	st.Best = best
	return st, nil
}
