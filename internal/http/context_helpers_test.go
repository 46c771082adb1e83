package httpx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
)

func TestPrincipalFromContext(t *testing.T) {
	// No principal
	if p, ok := PrincipalFromContext(context.Background()); assert.False(t, ok) {
		assert.Nil(t, p)
	}

	// nil is not attached
	ctx := SetPrincipalInContext(context.Background(), nil)
	_, ok := PrincipalFromContext(ctx)
	assert.False(t, ok)

	want := principalWith(domainauth.RoleArtisan)
	got, ok := PrincipalFromContext(SetPrincipalInContext(context.Background(), want))
	assert.True(t, ok)
	assert.Same(t, want, got)
}
