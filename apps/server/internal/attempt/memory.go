package attempt

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore keeps encoded attempts in process memory so callers never
// share mutable records.
type MemoryStore struct {
	mu       sync.RWMutex
	attempts map[string][]byte
	latest   map[string]string // player/day -> attempt id
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		attempts: make(map[string][]byte),
		latest:   make(map[string]string),
	}
}

func playerDayKey(playerID uint64, day string) string {
	return fmt.Sprintf("%d:%s", playerID, day)
}

func (m *MemoryStore) Create(_ context.Context, a *Attempt) error {
	data, err := encode(a)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.attempts[a.ID]; exists {
		return fmt.Errorf("attempt %s already exists", a.ID)
	}
	m.attempts[a.ID] = data
	m.latest[playerDayKey(a.PlayerID, a.Day)] = a.ID
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Attempt, error) {
	m.mu.RLock()
	data, ok := m.attempts[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(data)
}

func (m *MemoryStore) Latest(ctx context.Context, playerID uint64, day string) (*Attempt, error) {
	m.mu.RLock()
	id, ok := m.latest[playerDayKey(playerID, day)]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return m.Get(ctx, id)
}

func (m *MemoryStore) Save(_ context.Context, a *Attempt) error {
	data, err := encode(a)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attempts[a.ID]; !ok {
		return ErrNotFound
	}
	m.attempts[a.ID] = data
	return nil
}

func (m *MemoryStore) Close() error { return nil }
