// Package progress tracks each player's daily play and win streaks.
package progress

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type Progress struct {
	PlayerID      uint64    `json:"player_id"`
	LastPlayedDay string    `json:"last_played_day,omitempty"`
	CurrentStreak int       `json:"current_streak"`
	HighestStreak int       `json:"highest_streak"`
	Attempts      int       `json:"attempts"`
	Wins          int       `json:"wins"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// HasPlayed reports whether an outcome was already recorded for day.
func (p *Progress) HasPlayed(day string) bool {
	return p != nil && p.LastPlayedDay == day
}

// apply folds one finished attempt into p. A win extends the streak; a
// loss resets it. The highest streak never decreases.
func (p *Progress) apply(day string, success bool, now time.Time) {
	p.LastPlayedDay = day
	p.Attempts++
	if success {
		p.Wins++
		p.CurrentStreak++
		if p.CurrentStreak > p.HighestStreak {
			p.HighestStreak = p.CurrentStreak
		}
	} else {
		p.CurrentStreak = 0
	}
	p.UpdatedAt = now
}

type Service interface {
	Get(ctx context.Context, playerID uint64) (*Progress, error)
	RecordOutcome(ctx context.Context, playerID uint64, day string, success bool) (*Progress, error)
	Close() error
}

type memoryService struct {
	mu    sync.Mutex
	store map[uint64]Progress
}

func NewMemoryService() Service {
	return &memoryService{store: make(map[uint64]Progress)}
}

func (s *memoryService) Close() error { return nil }

func (s *memoryService) Get(_ context.Context, playerID uint64) (*Progress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.store[playerID]
	if !ok {
		p = Progress{PlayerID: playerID}
	}
	return &p, nil
}

func (s *memoryService) RecordOutcome(_ context.Context, playerID uint64, day string, success bool) (*Progress, error) {
	if playerID == 0 {
		return nil, fmt.Errorf("invalid player id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.store[playerID]
	if !ok {
		p = Progress{PlayerID: playerID}
	}
	p.apply(day, success, time.Now().UTC())
	s.store[playerID] = p
	return &p, nil
}
