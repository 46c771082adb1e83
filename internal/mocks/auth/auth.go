package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
	"github.com/artisanhub/marketplace-api/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.TokenVerifier     = (*StaticVerifier)(nil)
	_ ports.SessionStore      = (*MemorySessionStore)(nil)
	_ ports.SessionAdminStore = (*MemorySessionStore)(nil)
)

// StaticVerifier accepts exactly the tokens registered in Tokens.
type StaticVerifier struct {
	mu     sync.RWMutex
	tokens map[string]domainauth.RawClaims
	// Err, when set, is returned for unknown tokens instead of a malformed BadToken.
	Err error
}

// NewStaticVerifier creates an empty StaticVerifier.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{tokens: make(map[string]domainauth.RawClaims)}
}

// Register makes token verify to claims.
func (v *StaticVerifier) Register(token string, claims domainauth.RawClaims) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.tokens[token] = claims
}

func (v *StaticVerifier) Verify(_ context.Context, rawToken string) (domainauth.RawClaims, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	claims, ok := v.tokens[rawToken]
	if !ok {
		if v.Err != nil {
			return domainauth.RawClaims{}, v.Err
		}
		return domainauth.RawClaims{}, domainauth.BadToken(domainauth.VerifyMalformed, nil)
	}
	return claims, nil
}

// MemorySessionStore is an in-memory session store for unit tests. It is safe for concurrent use.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.SessionRecord
	users    map[string]domainauth.UserSnapshot

	findCalls  int
	touchCalls int
	// TouchErr, when set, is returned by Touch.
	TouchErr error
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]domainauth.SessionRecord),
		users:    make(map[string]domainauth.UserSnapshot),
	}
}

// Save stores rec and its user snapshot. The user snapshot is shared by every session of that user.
func (m *MemorySessionStore) Save(rec domainauth.SessionRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := rec.User
	user.UserID = rec.UserID
	user.Roles = user.Roles.Clone()
	m.users[rec.UserID] = user
	rec.User = domainauth.UserSnapshot{}
	m.sessions[rec.SessionID] = rec
}

func (m *MemorySessionStore) FindByID(_ context.Context, sessionID string) (domainauth.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findCalls++
	rec, ok := m.sessions[sessionID]
	if !ok {
		return domainauth.SessionRecord{}, ports.ErrSessionNotFound
	}
	user := m.users[rec.UserID]
	user.Roles = user.Roles.Clone()
	rec.User = user
	return rec, nil
}

func (m *MemorySessionStore) Touch(_ context.Context, sessionID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touchCalls++
	if m.TouchErr != nil {
		return m.TouchErr
	}
	rec, ok := m.sessions[sessionID]
	if !ok {
		return nil
	}
	rec.LastUsedAt = at
	m.sessions[sessionID] = rec
	return nil
}

func (m *MemorySessionStore) RevokeSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[sessionID]
	if !ok {
		return ports.ErrSessionNotFound
	}
	rec.IsRevoked = true
	m.sessions[sessionID] = rec
	return nil
}

func (m *MemorySessionStore) RevokeAllForUser(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return 0, ports.ErrUserNotFound
	}
	var n int64
	for id, rec := range m.sessions {
		if rec.UserID == userID && !rec.IsRevoked {
			rec.IsRevoked = true
			m.sessions[id] = rec
			n++
		}
	}
	return n, nil
}

func (m *MemorySessionStore) SetUserDisabled(_ context.Context, userID string, disabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return ports.ErrUserNotFound
	}
	user.IsDisabled = disabled
	m.users[userID] = user
	return nil
}

// SetUserRoles replaces a user's roles.
func (m *MemorySessionStore) SetUserRoles(userID string, roles domainauth.RoleSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user := m.users[userID]
	user.Roles = roles.Clone()
	m.users[userID] = user
}

// FindCalls returns how many times FindByID was called.
func (m *MemorySessionStore) FindCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findCalls
}

// TouchCalls returns how many times Touch was called.
func (m *MemorySessionStore) TouchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.touchCalls
}

// LastUsedAt returns the recorded last-used time for sessionID.
func (m *MemorySessionStore) LastUsedAt(sessionID string) time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[sessionID].LastUsedAt
}

// FakeSession builds a valid session for a fresh random user, expiring a day after now.
func FakeSession(now time.Time, roles ...domainauth.Role) domainauth.SessionRecord {
	userID := uuid.NewString()
	return domainauth.SessionRecord{
		SessionID:  uuid.NewString(),
		UserID:     userID,
		ExpiresAt:  now.Add(24 * time.Hour),
		LastUsedAt: now.Add(-time.Hour),
		User: domainauth.UserSnapshot{
			UserID:      userID,
			Roles:       domainauth.NewRoleSet(roles...),
			Email:       gofakeit.Email(),
			DisplayName: gofakeit.Name(),
		},
	}
}

// ClaimsFor returns well-formed raw claims matching rec as they would have been issued.
func ClaimsFor(rec domainauth.SessionRecord) domainauth.RawClaims {
	return domainauth.RawClaims{
		Subject:     rec.UserID,
		SessionID:   rec.SessionID,
		Email:       rec.User.Email,
		DisplayName: rec.User.DisplayName,
		Roles:       rec.User.Roles.Strings(),
	}
}
