package ports_test

import (
	"testing"

	"github.com/artisanhub/marketplace-api/internal/mocks"
	authmocks "github.com/artisanhub/marketplace-api/internal/mocks/auth"
	"github.com/artisanhub/marketplace-api/internal/ports"
)

// This test only verifies that our mocks conform to the ports at compile time.
func TestMocksImplementPorts(t *testing.T) {
	t.Helper()

	var _ ports.TokenVerifier = (*authmocks.StaticVerifier)(nil)
	var _ ports.SessionStore = (*authmocks.MemorySessionStore)(nil)
	var _ ports.SessionAdminStore = (*authmocks.MemorySessionStore)(nil)

	var _ ports.TokenVerifier = (*mocks.MockTokenVerifier)(nil)
	var _ ports.SessionStore = (*mocks.MockSessionStore)(nil)
	var _ ports.SessionAdminStore = (*mocks.MockSessionAdminStore)(nil)
	var _ ports.ExpiredSessionPurger = (*mocks.MockExpiredSessionPurger)(nil)
}
