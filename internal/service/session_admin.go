package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/artisanhub/marketplace-api/internal/core"
	apperrors "github.com/artisanhub/marketplace-api/internal/errors"
	"github.com/artisanhub/marketplace-api/internal/ports"
)

// SessionAdminServiceOptions groups dependencies for SessionAdminService.
type SessionAdminServiceOptions struct {
	Store  ports.SessionAdminStore // Required
	Cache  *core.SessionCache      // Required
	Logger *slog.Logger            // Optional
}

// SessionAdminService revokes sessions and disables users.
//
// The store is written first and the local cache is invalidated afterwards, so this process
// stops honouring the session immediately. Other processes converge within the cache TTL.
type SessionAdminService struct {
	store  ports.SessionAdminStore
	cache  *core.SessionCache
	logger *slog.Logger
}

// NewSessionAdminService constructs a SessionAdminService.
func NewSessionAdminService(opts SessionAdminServiceOptions) (*SessionAdminService, error) {
	if opts.Store == nil {
		return nil, errors.New("SessionAdminStore is required")
	}
	if opts.Cache == nil {
		return nil, errors.New("SessionCache is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionAdminService{
		store:  opts.Store,
		cache:  opts.Cache,
		logger: logger.With("component", "session_admin"),
	}, nil
}

// RevokeSession marks the session revoked. Revoking an already revoked session succeeds.
func (s *SessionAdminService) RevokeSession(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperrors.ValidationField("session_id", "session id is required")
	}
	if err := s.store.RevokeSession(ctx, sessionID); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.cache.Invalidate(sessionID)

	s.logger.InfoContext(ctx, "session revoked", "session_id", sessionID)
	return nil
}

// RevokeUserSessions revokes every session of the user, e.g. after a credential compromise,
// and returns how many were revoked. The account itself stays enabled.
func (s *SessionAdminService) RevokeUserSessions(ctx context.Context, userID string) (int64, error) {
	if userID == "" {
		return 0, apperrors.ValidationField("user_id", "user id is required")
	}
	revoked, err := s.store.RevokeAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", err)
	}
	dropped := s.cache.InvalidateUser(userID)

	s.logger.InfoContext(ctx, "user sessions revoked",
		"user_id", userID,
		"revoked", revoked,
		"cached_sessions_dropped", dropped,
	)
	return revoked, nil
}

// DisableUser disables the account and drops every cached session belonging to it.
func (s *SessionAdminService) DisableUser(ctx context.Context, userID string) error {
	return s.setDisabled(ctx, userID, true)
}

// EnableUser clears the disabled flag. Sessions that were not revoked become usable again.
func (s *SessionAdminService) EnableUser(ctx context.Context, userID string) error {
	return s.setDisabled(ctx, userID, false)
}

func (s *SessionAdminService) setDisabled(ctx context.Context, userID string, disabled bool) error {
	if userID == "" {
		return apperrors.ValidationField("user_id", "user id is required")
	}
	if err := s.store.SetUserDisabled(ctx, userID, disabled); err != nil {
		return fmt.Errorf("set user disabled: %w", err)
	}
	dropped := s.cache.InvalidateUser(userID)

	s.logger.InfoContext(ctx, "user disabled flag updated",
		"user_id", userID,
		"disabled", disabled,
		"cached_sessions_dropped", dropped,
	)
	return nil
}
