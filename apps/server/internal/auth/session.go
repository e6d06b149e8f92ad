package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultSessionTTL = 30 * 24 * time.Hour
	tokenBytes        = 32
	guestPrefix       = "guest_"
)

var (
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]{2,31}$`)

// Manager keeps accounts and sessions in memory. Used for tests and
// STORAGE_MODE=memory.
type Manager struct {
	mu sync.Mutex

	nextAccountID uint64
	sessionTTL    time.Duration
	sessions      map[string]sessionRecord // token -> account
	accountsByID  map[uint64]accountRecord
	accountsByKey map[string]uint64 // normalized username -> account
}

type sessionRecord struct {
	AccountID uint64
	ExpiresAt time.Time
}

type accountRecord struct {
	Account
	PasswordHash  []byte
	LastLoginTime time.Time
}

func NewManager() *Manager {
	return &Manager{
		nextAccountID: 100000,
		sessionTTL:    defaultSessionTTL,
		sessions:      make(map[string]sessionRecord),
		accountsByID:  make(map[uint64]accountRecord),
		accountsByKey: make(map[string]uint64),
	}
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

// Usernames starting with the guest prefix are reserved.
func validateUsername(username string) error {
	trimmed := strings.TrimSpace(username)
	if !usernamePattern.MatchString(trimmed) || strings.HasPrefix(normalizeUsername(trimmed), guestPrefix) {
		return ErrInvalidUsername
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 || len(password) > 72 {
		return ErrInvalidPassword
	}
	return nil
}

func guestUsername() string {
	return guestPrefix + strings.ToLower(mustToken()[:12])
}

func (m *Manager) issueSessionLocked(accountID uint64, now time.Time) string {
	token := mustToken()
	m.sessions[token] = sessionRecord{
		AccountID: accountID,
		ExpiresAt: now.Add(m.sessionTTL),
	}
	return token
}

func (m *Manager) resolveSessionLocked(token string, now time.Time) (Account, bool) {
	if token == "" {
		return Account{}, false
	}
	rec, exists := m.sessions[token]
	if !exists {
		return Account{}, false
	}
	if !now.Before(rec.ExpiresAt) {
		delete(m.sessions, token)
		return Account{}, false
	}
	rec.ExpiresAt = now.Add(m.sessionTTL)
	m.sessions[token] = rec
	return m.accountsByID[rec.AccountID].Account, true
}

func (m *Manager) Register(_ context.Context, username, password string) (Account, string, error) {
	if err := validateUsername(username); err != nil {
		return Account{}, "", err
	}
	if err := validatePassword(password); err != nil {
		return Account{}, "", err
	}

	normalized := normalizeUsername(username)
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Account{}, "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.accountsByKey[normalized]; exists {
		return Account{}, "", ErrUsernameTaken
	}

	now := time.Now()
	m.nextAccountID++
	acct := Account{ID: m.nextAccountID, Username: normalized}
	m.accountsByID[acct.ID] = accountRecord{
		Account:       acct,
		PasswordHash:  passwordHash,
		LastLoginTime: now,
	}
	m.accountsByKey[normalized] = acct.ID
	return acct, m.issueSessionLocked(acct.ID, now), nil
}

func (m *Manager) Login(_ context.Context, username, password string) (Account, string, error) {
	normalized := normalizeUsername(username)
	if normalized == "" || password == "" {
		return Account{}, "", ErrInvalidCredentials
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	accountID, exists := m.accountsByKey[normalized]
	if !exists {
		return Account{}, "", ErrInvalidCredentials
	}
	profile := m.accountsByID[accountID]
	if profile.Guest || len(profile.PasswordHash) == 0 {
		return Account{}, "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(profile.PasswordHash, []byte(password)) != nil {
		return Account{}, "", ErrInvalidCredentials
	}

	now := time.Now()
	profile.LastLoginTime = now
	m.accountsByID[accountID] = profile
	return profile.Account, m.issueSessionLocked(accountID, now), nil
}

func (m *Manager) Guest(_ context.Context) (Account, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.nextAccountID++
	acct := Account{ID: m.nextAccountID, Username: guestUsername(), Guest: true}
	m.accountsByID[acct.ID] = accountRecord{Account: acct, LastLoginTime: now}
	m.accountsByKey[acct.Username] = acct.ID
	return acct, m.issueSessionLocked(acct.ID, now), nil
}

// ResolveSession validates and refreshes a session token.
func (m *Manager) ResolveSession(_ context.Context, token string) (Account, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.resolveSessionLocked(token, time.Now())
}

func (m *Manager) Logout(_ context.Context, token string) {
	if token == "" {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

func (m *Manager) Close() error { return nil }

func mustToken() string {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
