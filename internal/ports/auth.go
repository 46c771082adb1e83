package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters and internal/data; orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
)

// ErrSessionNotFound is returned by SessionStore implementations when no record exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// ErrUserNotFound is returned by SessionAdminStore implementations when the user does not exist.
var ErrUserNotFound = errors.New("user not found")

// TokenVerifier checks a bearer token's signature and standard expiry and returns its payload.
// Implementations fail closed: any error means the token must not be trusted.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (domainauth.RawClaims, error)
}

// SessionStore is the durable source of truth for session state.
type SessionStore interface {
	// FindByID returns the session with its embedded user snapshot, or ErrSessionNotFound.
	FindByID(ctx context.Context, sessionID string) (domainauth.SessionRecord, error)
	// Touch records the last-used time. Callers treat it as best-effort.
	Touch(ctx context.Context, sessionID string, at time.Time) error
}

// SessionAdminStore mutates session and user state for revocation flows.
type SessionAdminStore interface {
	RevokeSession(ctx context.Context, sessionID string) error
	// RevokeAllForUser revokes every unrevoked session of the user and returns how many changed.
	// An unknown user yields ErrUserNotFound.
	RevokeAllForUser(ctx context.Context, userID string) (int64, error)
	SetUserDisabled(ctx context.Context, userID string, disabled bool) error
}

// ExpiredSessionPurger deletes sessions that expired before a cutoff.
type ExpiredSessionPurger interface {
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
