package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"negotiator-lite/apps/server/internal/storage"
)

var authSchema = map[storage.Dialect][]string{
	storage.SQLite: {
		`CREATE TABLE IF NOT EXISTS players (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL DEFAULT '',
    guest INTEGER NOT NULL DEFAULT 0,
    created_at_ms INTEGER NOT NULL,
    last_login_at_ms INTEGER NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS player_sessions (
    token TEXT PRIMARY KEY,
    player_id INTEGER NOT NULL REFERENCES players(id) ON DELETE CASCADE,
    expires_at_ms INTEGER NOT NULL,
    revoked_at_ms INTEGER
)`,
		`CREATE INDEX IF NOT EXISTS idx_player_sessions_player ON player_sessions(player_id)`,
	},
	storage.Postgres: {
		`CREATE TABLE IF NOT EXISTS players (
    id BIGSERIAL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL DEFAULT '',
    guest BOOLEAN NOT NULL DEFAULT FALSE,
    created_at_ms BIGINT NOT NULL,
    last_login_at_ms BIGINT NOT NULL
)`,
		`CREATE TABLE IF NOT EXISTS player_sessions (
    token TEXT PRIMARY KEY,
    player_id BIGINT NOT NULL REFERENCES players(id) ON DELETE CASCADE,
    expires_at_ms BIGINT NOT NULL,
    revoked_at_ms BIGINT
)`,
		`CREATE INDEX IF NOT EXISTS idx_player_sessions_player ON player_sessions(player_id)`,
	},
}

// SQLManager stores accounts and sessions in sqlite or postgres.
type SQLManager struct {
	db         *storage.DB
	sessionTTL time.Duration
}

func NewSQLManager(db *storage.DB, sessionTTL time.Duration) (*SQLManager, error) {
	if db == nil {
		return nil, fmt.Errorf("auth: nil database")
	}
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.EnsureSchema(ctx, authSchema); err != nil {
		return nil, err
	}
	return &SQLManager{db: db, sessionTTL: sessionTTL}, nil
}

// Close is a no-op: the database handle is shared and closed by its owner.
func (m *SQLManager) Close() error { return nil }

func (m *SQLManager) Register(ctx context.Context, username, password string) (Account, string, error) {
	if err := validateUsername(username); err != nil {
		return Account{}, "", err
	}
	if err := validatePassword(password); err != nil {
		return Account{}, "", err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, "", err
	}
	acct := Account{Username: normalizeUsername(username)}
	token, err := m.createAccount(ctx, &acct, string(passwordHash))
	if err != nil {
		if storage.IsUniqueViolation(err) {
			return Account{}, "", ErrUsernameTaken
		}
		return Account{}, "", err
	}
	return acct, token, nil
}

func (m *SQLManager) Guest(ctx context.Context) (Account, string, error) {
	for i := 0; i < 5; i++ {
		acct := Account{Username: guestUsername(), Guest: true}
		token, err := m.createAccount(ctx, &acct, "")
		if err != nil {
			if storage.IsUniqueViolation(err) {
				continue
			}
			return Account{}, "", err
		}
		return acct, token, nil
	}
	return Account{}, "", fmt.Errorf("failed to allocate guest account")
}

func (m *SQLManager) createAccount(ctx context.Context, acct *Account, passwordHash string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	nowMs := time.Now().UTC().UnixMilli()
	if err := tx.QueryRowContext(ctx, m.db.Rebind(`
INSERT INTO players (username, password_hash, guest, created_at_ms, last_login_at_ms)
VALUES (?, ?, ?, ?, ?)
RETURNING id
`), acct.Username, passwordHash, acct.Guest, nowMs, nowMs).Scan(&acct.ID); err != nil {
		return "", err
	}

	token, err := m.issueSessionTx(ctx, tx, acct.ID)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return token, nil
}

func (m *SQLManager) Login(ctx context.Context, username, password string) (Account, string, error) {
	normalized := normalizeUsername(username)
	if normalized == "" || password == "" {
		return Account{}, "", ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	acct := Account{Username: normalized}
	var passwordHash string
	if err := m.db.QueryRowContext(ctx, m.db.Rebind(`
SELECT id, password_hash, guest
FROM players
WHERE username = ?
`), normalized).Scan(&acct.ID, &passwordHash, &acct.Guest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, "", ErrInvalidCredentials
		}
		return Account{}, "", err
	}
	if acct.Guest || passwordHash == "" {
		return Account{}, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)) != nil {
		return Account{}, "", ErrInvalidCredentials
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return Account{}, "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.db.Rebind(`
UPDATE players SET last_login_at_ms = ? WHERE id = ?
`), time.Now().UTC().UnixMilli(), acct.ID); err != nil {
		return Account{}, "", err
	}
	token, err := m.issueSessionTx(ctx, tx, acct.ID)
	if err != nil {
		return Account{}, "", err
	}
	if err := tx.Commit(); err != nil {
		return Account{}, "", err
	}
	return acct, token, nil
}

func (m *SQLManager) ResolveSession(ctx context.Context, token string) (Account, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Account{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now().UTC()
	var acct Account
	err := m.db.QueryRowContext(ctx, m.db.Rebind(`
SELECT p.id, p.username, p.guest
FROM player_sessions AS s
JOIN players AS p ON p.id = s.player_id
WHERE s.token = ?
  AND s.revoked_at_ms IS NULL
  AND s.expires_at_ms > ?
`), token, now.UnixMilli()).Scan(&acct.ID, &acct.Username, &acct.Guest)
	if err != nil {
		return Account{}, false
	}

	if _, err := m.db.ExecContext(ctx, m.db.Rebind(`
UPDATE player_sessions SET expires_at_ms = ? WHERE token = ?
`), now.Add(m.sessionTTL).UnixMilli(), token); err != nil {
		return Account{}, false
	}
	return acct, true
}

func (m *SQLManager) Logout(ctx context.Context, token string) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, _ = m.db.ExecContext(ctx, m.db.Rebind(`
UPDATE player_sessions
SET revoked_at_ms = ?
WHERE token = ?
  AND revoked_at_ms IS NULL
`), time.Now().UTC().UnixMilli(), token)
}

func (m *SQLManager) issueSessionTx(ctx context.Context, tx *sql.Tx, accountID uint64) (string, error) {
	expiresAtMs := time.Now().UTC().Add(m.sessionTTL).UnixMilli()
	for i := 0; i < 5; i++ {
		token := mustToken()
		if _, err := tx.ExecContext(ctx, m.db.Rebind(`
INSERT INTO player_sessions (token, player_id, expires_at_ms)
VALUES (?, ?, ?)
`), token, accountID, expiresAtMs); err != nil {
			if storage.IsUniqueViolation(err) {
				continue
			}
			return "", err
		}
		return token, nil
	}
	return "", fmt.Errorf("failed to generate unique session token")
}
