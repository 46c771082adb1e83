// Package mocks provides gomock implementations of the auth ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	store := mocks.NewMockSessionStore(ctrl)
//	store.EXPECT().FindByID(gomock.Any(), sessionID).Return(rec, nil)
package mocks

// FindByID, Touch
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_store_mock.go github.com/artisanhub/marketplace-api/internal/ports SessionStore

// Verify
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=token_verifier_mock.go github.com/artisanhub/marketplace-api/internal/ports TokenVerifier

// RevokeSession, SetUserDisabled
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=session_admin_store_mock.go github.com/artisanhub/marketplace-api/internal/ports SessionAdminStore

// DeleteExpired
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=expired_session_purger_mock.go github.com/artisanhub/marketplace-api/internal/ports ExpiredSessionPurger
