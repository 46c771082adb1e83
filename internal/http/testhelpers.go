package httpx

import (
	"context"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
)

// ValidatorFunc adapts a function to SessionValidator. Handy in tests.
type ValidatorFunc func(ctx context.Context, rawToken string) (*domainauth.Principal, error)

// Validate implements SessionValidator.
func (f ValidatorFunc) Validate(ctx context.Context, rawToken string) (*domainauth.Principal, error) {
	return f(ctx, rawToken)
}
