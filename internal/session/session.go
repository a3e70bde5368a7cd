// Package session implements the session identity model.
//
// A session token is an opaque 128-bit random value (a UUID v4 string).
// It is not an entity of its own: it exists only as a column on user and
// meal rows, and owning a token means owning every row stamped with it.
// Tokens are minted when an anonymous visitor first creates a record, and
// replaced wholesale on login (see Reassign).
package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sakif/daily-diet/internal/apperror"
	"github.com/sakif/daily-diet/internal/repository"
)

// Manager issues, validates, and reassigns session tokens.
type Manager struct {
	sessions repository.SessionRepository
	logger   *slog.Logger
}

// NewManager creates a Manager backed by the given session repository.
func NewManager(sessions repository.SessionRepository, logger *slog.Logger) *Manager {
	return &Manager{
		sessions: sessions,
		logger:   logger,
	}
}

// Mint returns a fresh token. 128 bits of randomness make a collision with
// an existing token practically impossible, so no storage check is done.
func Mint() string {
	return uuid.NewString()
}

// EnsureToken returns the presented token unchanged, or mints a new one
// when none was presented. isNew tells the transport layer whether it has
// a cookie to set.
//
// Used by operations that may create identity as a side effect (creating
// a meal or registering as an anonymous visitor).
func (m *Manager) EnsureToken(presented string) (token string, isNew bool) {
	if presented != "" {
		return presented, false
	}
	return Mint(), true
}

// RequireToken returns the presented token or fails with Unauthenticated.
//
// Used by reads and deletes, which must never silently create identity.
// Whether the token actually owns any records is the caller's concern; a
// valid-looking token that owns nothing simply sees empty results.
func (m *Manager) RequireToken(presented string) (string, error) {
	if presented == "" {
		return "", apperror.Unauthenticated("a session is required")
	}
	return presented, nil
}

// Reassign mints a new token and re-stamps every record owned by oldToken
// (the user row and all meals) with it, as a single atomic unit. On error
// nothing has moved and oldToken remains fully valid.
//
// After a successful reassign the old token denotes nothing; the caller
// must hand the new token back to the client.
func (m *Manager) Reassign(ctx context.Context, oldToken string) (string, error) {
	newToken := Mint()

	if err := m.sessions.ReassignSession(ctx, oldToken, newToken); err != nil {
		return "", fmt.Errorf("session: reassigning token: %w", err)
	}

	m.logger.Info("session token reassigned")

	return newToken, nil
}
