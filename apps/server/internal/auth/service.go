package auth

import "context"

// Account is the player identity attached to a session.
type Account struct {
	ID       uint64 `json:"user_id"`
	Username string `json:"username"`
	Guest    bool   `json:"guest"`
}

// Service is the auth/session contract consumed by the game service, the
// gateway and the HTTP handlers.
type Service interface {
	Register(ctx context.Context, username, password string) (Account, string, error)
	Login(ctx context.Context, username, password string) (Account, string, error)
	// Guest creates an anonymous account so a player can negotiate without
	// registering. The daily limit still applies to the guest session.
	Guest(ctx context.Context) (Account, string, error)
	ResolveSession(ctx context.Context, token string) (Account, bool)
	Logout(ctx context.Context, token string)
	Close() error
}
