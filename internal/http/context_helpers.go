package httpx

import (
	"context"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
)

// principalKey is an unexported context key type to avoid collisions across packages.
type principalKey struct{}

// SetPrincipalInContext returns a child context that carries the authenticated principal.
// If p is nil, the original ctx is returned unchanged.
func SetPrincipalInContext(ctx context.Context, p *domainauth.Principal) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached by Authenticate and whether one is present.
func PrincipalFromContext(ctx context.Context) (*domainauth.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*domainauth.Principal)
	return p, ok && p != nil
}
