package auth

import (
	"time"

	"negotiator-lite/apps/server/internal/storage"
)

const (
	ModeMemory = "memory"
	ModeSQL    = "sql"
)

// NewService picks the SQL manager when db is set, the in-memory one otherwise.
func NewService(db *storage.DB, sessionTTL time.Duration) (Service, string, error) {
	if db == nil {
		m := NewManager()
		if sessionTTL > 0 {
			m.sessionTTL = sessionTTL
		}
		return m, ModeMemory, nil
	}
	m, err := NewSQLManager(db, sessionTTL)
	if err != nil {
		return nil, ModeSQL, err
	}
	return m, ModeSQL + ":" + string(db.Dialect), nil
}
