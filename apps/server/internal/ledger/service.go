// Package ledger records finished attempts and answers leaderboard and
// per-player score queries.
package ledger

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"
)

const (
	DefaultTopLimit = 10
	maxTopLimit     = 100
)

// Entry is one scored attempt. AttemptID is unique; recording it twice is a no-op.
type Entry struct {
	AttemptID  string    `json:"attempt_id"`
	PlayerID   uint64    `json:"player_id"`
	Username   string    `json:"username"`
	ScenarioID string    `json:"scenario_id"`
	Score      float64   `json:"score"`
	Success    bool      `json:"success"`
	Turns      int       `json:"turns"`
	Day        string    `json:"day"`
	CreatedAt  time.Time `json:"created_at"`
}

type Stats struct {
	DailyCount      int     `json:"daily_count"`
	DailyAverage    float64 `json:"daily_average"`
	LifetimeCount   int     `json:"lifetime_count"`
	LifetimeAverage float64 `json:"lifetime_average"`
	Best            float64 `json:"best"`
}

type Service interface {
	Record(ctx context.Context, e Entry) error
	// DailyTop ranks the day's entries by score, earliest first on ties.
	DailyTop(ctx context.Context, day string, limit int) ([]Entry, error)
	AllTimeTop(ctx context.Context, limit int) ([]Entry, error)
	PlayerStats(ctx context.Context, playerID uint64, day string) (Stats, error)
	Close() error
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultTopLimit
	}
	if limit > maxTopLimit {
		return maxTopLimit
	}
	return limit
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

type memoryService struct {
	mu      sync.RWMutex
	entries []Entry
	seen    map[string]struct{}
}

func NewMemoryService() Service {
	return &memoryService{seen: make(map[string]struct{})}
}

func (m *memoryService) Close() error { return nil }

func (m *memoryService) Record(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.seen[e.AttemptID]; ok {
		return nil
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	m.seen[e.AttemptID] = struct{}{}
	m.entries = append(m.entries, e)
	return nil
}

func (m *memoryService) DailyTop(_ context.Context, day string, limit int) ([]Entry, error) {
	return m.top(clampLimit(limit), func(e Entry) bool { return e.Day == day }), nil
}

func (m *memoryService) AllTimeTop(_ context.Context, limit int) ([]Entry, error) {
	return m.top(clampLimit(limit), func(Entry) bool { return true }), nil
}

func (m *memoryService) top(limit int, keep func(Entry) bool) []Entry {
	m.mu.RLock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (m *memoryService) PlayerStats(_ context.Context, playerID uint64, day string) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var st Stats
	var dailySum, lifetimeSum float64
	for _, e := range m.entries {
		if e.PlayerID != playerID {
			continue
		}
		st.LifetimeCount++
		lifetimeSum += e.Score
		st.Best = math.Max(st.Best, e.Score)
		if e.Day == day {
			st.DailyCount++
			dailySum += e.Score
		}
	}
	if st.DailyCount > 0 {
		st.DailyAverage = round2(dailySum / float64(st.DailyCount))
	}
	if st.LifetimeCount > 0 {
		st.LifetimeAverage = round2(lifetimeSum / float64(st.LifetimeCount))
	}
	return st, nil
}
