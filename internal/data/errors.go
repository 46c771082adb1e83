package data

import (
	"errors"

	"github.com/artisanhub/marketplace-api/internal/ports"
)

// Shared sentinel errors for data-layer repositories.
var (
	// ErrSessionNotFound aliases the port sentinel so callers can match either.
	ErrSessionNotFound = ports.ErrSessionNotFound
	ErrUserNotFound    = ports.ErrUserNotFound

	ErrUserIDRequired = errors.New("user id is required")
	ErrEmailRequired  = errors.New("email is required")
)
