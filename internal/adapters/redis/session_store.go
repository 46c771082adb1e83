package redis

// Package redis provides a Redis-backed session store.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
	"github.com/artisanhub/marketplace-api/internal/ports"
)

var (
	_ ports.SessionStore      = (*SessionStore)(nil)
	_ ports.SessionAdminStore = (*SessionStore)(nil)
)

// DefaultRetention keeps session keys around after expiry so late requests see
// "expired" rather than "not found".
const DefaultRetention = 24 * time.Hour

// Hash fields of a session key.
const (
	fieldUserID     = "user_id"
	fieldIsRevoked  = "is_revoked"
	fieldExpiresAt  = "expires_at"
	fieldLastUsedAt = "last_used_at"
)

// touchScript and revokeScript only update sessions that still exist, so a racing
// delete is never resurrected as a partial hash.
var (
	touchScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 1 then
  redis.call("HSET", KEYS[1], "last_used_at", ARGV[1])
  return 1
end
return 0
`)
	// revokeScript returns 0 for a missing session, 1 when it revoked it, 2 when it already was.
	revokeScript = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
if redis.call("HGET", KEYS[1], "is_revoked") == "1" then
  return 2
end
redis.call("HSET", KEYS[1], "is_revoked", "1")
return 1
`)
)

// userDoc is the JSON stored under the user key.
type userDoc struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
	IsDisabled  bool     `json:"is_disabled"`
}

// SessionStoreOptions configures SessionStore.
type SessionStoreOptions struct {
	SessionPrefix string        // Optional: defaults to "session:"
	UserPrefix    string        // Optional: defaults to "user:"
	Retention     time.Duration // Optional: defaults to DefaultRetention
}

// SessionStore keeps sessions as hashes and users as JSON documents.
// Session and user live under separate keys so disabling a user affects every session at once.
type SessionStore struct {
	client        redis.UniversalClient
	sessionPrefix string
	userPrefix    string
	retention     time.Duration
}

// NewSessionStore creates a new Redis-based session store.
func NewSessionStore(client redis.UniversalClient, opts SessionStoreOptions) *SessionStore {
	s := &SessionStore{
		client:        client,
		sessionPrefix: opts.SessionPrefix,
		userPrefix:    opts.UserPrefix,
		retention:     opts.Retention,
	}
	if s.sessionPrefix == "" {
		s.sessionPrefix = "session:"
	}
	if s.userPrefix == "" {
		s.userPrefix = "user:"
	}
	if s.retention <= 0 {
		s.retention = DefaultRetention
	}
	return s
}

func (s *SessionStore) sessionKey(id string) string { return s.sessionPrefix + id }
func (s *SessionStore) userKey(id string) string    { return s.userPrefix + id }

// userSessionsKey indexes a user's session ids. Members whose hash has expired are pruned lazily.
func (s *SessionStore) userSessionsKey(id string) string { return s.userPrefix + id + ":sessions" }

// Save writes a session and its user document. Token issuance is out of scope for this
// service, so only seeding and tests call it; the login service owns these keys in production.
func (s *SessionStore) Save(ctx context.Context, rec domainauth.SessionRecord) error {
	if rec.SessionID == "" {
		return errors.New("session ID cannot be empty")
	}
	if rec.UserID == "" {
		return errors.New("user ID cannot be empty")
	}
	if rec.ExpiresAt.IsZero() {
		return errors.New("session expiry is required")
	}

	user := rec.User
	user.UserID = rec.UserID
	doc, err := json.Marshal(toUserDoc(user))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	key := s.sessionKey(rec.SessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			fieldUserID:     rec.UserID,
			fieldIsRevoked:  formatBool(rec.IsRevoked),
			fieldExpiresAt:  formatTime(rec.ExpiresAt),
			fieldLastUsedAt: formatTime(rec.LastUsedAt),
		})
		pipe.ExpireAt(ctx, key, rec.ExpiresAt.Add(s.retention))
		pipe.Set(ctx, s.userKey(rec.UserID), doc, 0)
		pipe.SAdd(ctx, s.userSessionsKey(rec.UserID), rec.SessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save session: %w", err)
	}
	return nil
}

// SaveUser writes or replaces a user document. Like Save, it serves seeding and tests.
func (s *SessionStore) SaveUser(ctx context.Context, user domainauth.UserSnapshot) error {
	if user.UserID == "" {
		return errors.New("user ID cannot be empty")
	}
	doc, err := json.Marshal(toUserDoc(user))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	return s.client.Set(ctx, s.userKey(user.UserID), doc, 0).Err()
}

// FindByID implements ports.SessionStore.
func (s *SessionStore) FindByID(ctx context.Context, sessionID string) (domainauth.SessionRecord, error) {
	if sessionID == "" {
		return domainauth.SessionRecord{}, ports.ErrSessionNotFound
	}

	fields, err := s.client.HGetAll(ctx, s.sessionKey(sessionID)).Result()
	if err != nil {
		return domainauth.SessionRecord{}, fmt.Errorf("redis hgetall: %w", err)
	}
	if len(fields) == 0 {
		return domainauth.SessionRecord{}, ports.ErrSessionNotFound
	}

	rec, err := parseSession(sessionID, fields)
	if err != nil {
		return domainauth.SessionRecord{}, err
	}

	user, err := s.getUser(ctx, rec.UserID)
	if err != nil {
		return domainauth.SessionRecord{}, fmt.Errorf("session %s: %w", sessionID, err)
	}
	rec.User = user
	return rec, nil
}

// Touch implements ports.SessionStore. Touching a missing session is a no-op.
func (s *SessionStore) Touch(ctx context.Context, sessionID string, at time.Time) error {
	err := touchScript.Run(ctx, s.client, []string{s.sessionKey(sessionID)}, formatTime(at)).Err()
	if err != nil {
		return fmt.Errorf("redis touch: %w", err)
	}
	return nil
}

// RevokeSession implements ports.SessionAdminStore. Revoking twice succeeds.
func (s *SessionStore) RevokeSession(ctx context.Context, sessionID string) error {
	n, err := revokeScript.Run(ctx, s.client, []string{s.sessionKey(sessionID)}).Int()
	if err != nil {
		return fmt.Errorf("redis revoke: %w", err)
	}
	if n == 0 {
		return ports.ErrSessionNotFound
	}
	return nil
}

// RevokeAllForUser implements ports.SessionAdminStore. Each session is revoked with its own
// script call so the keys may live in different cluster slots.
func (s *SessionStore) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	exists, err := s.client.Exists(ctx, s.userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis exists user: %w", err)
	}
	if exists == 0 {
		return 0, ports.ErrUserNotFound
	}

	indexKey := s.userSessionsKey(userID)
	ids, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis smembers: %w", err)
	}

	var revoked int64
	var gone []any
	for _, id := range ids {
		n, err := revokeScript.Run(ctx, s.client, []string{s.sessionKey(id)}).Int()
		if err != nil {
			return revoked, fmt.Errorf("redis revoke %s: %w", id, err)
		}
		switch n {
		case 0:
			gone = append(gone, id)
		case 1:
			revoked++
		}
	}
	if len(gone) > 0 {
		if err := s.client.SRem(ctx, indexKey, gone...).Err(); err != nil {
			return revoked, fmt.Errorf("redis prune session index: %w", err)
		}
	}
	return revoked, nil
}

// SetUserDisabled implements ports.SessionAdminStore using optimistic locking on the user key.
func (s *SessionStore) SetUserDisabled(ctx context.Context, userID string, disabled bool) error {
	key := s.userKey(userID)
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ports.ErrUserNotFound
		}
		if err != nil {
			return err
		}
		var doc userDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return fmt.Errorf("unmarshal user: %w", err)
		}
		doc.IsDisabled = disabled
		updated, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("marshal user: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, redis.KeepTTL)
			return nil
		})
		return err
	}

	const maxRetries = 3
	for range maxRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("set user disabled: too much contention on %s", key)
}

func (s *SessionStore) getUser(ctx context.Context, userID string) (domainauth.UserSnapshot, error) {
	raw, err := s.client.Get(ctx, s.userKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domainauth.UserSnapshot{}, ports.ErrUserNotFound
	}
	if err != nil {
		return domainauth.UserSnapshot{}, fmt.Errorf("redis get user: %w", err)
	}

	var doc userDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return domainauth.UserSnapshot{}, fmt.Errorf("unmarshal user: %w", err)
	}
	roles, err := domainauth.ParseRoleSet(doc.Roles)
	if err != nil {
		return domainauth.UserSnapshot{}, fmt.Errorf("user %s roles: %w", userID, err)
	}
	return domainauth.UserSnapshot{
		UserID:      doc.ID,
		IsDisabled:  doc.IsDisabled,
		Roles:       roles,
		Email:       doc.Email,
		DisplayName: doc.DisplayName,
	}, nil
}

func parseSession(sessionID string, fields map[string]string) (domainauth.SessionRecord, error) {
	rec := domainauth.SessionRecord{SessionID: sessionID, UserID: fields[fieldUserID]}
	if rec.UserID == "" {
		return rec, fmt.Errorf("session %s: missing %s", sessionID, fieldUserID)
	}

	var err error
	if rec.IsRevoked, err = strconv.ParseBool(fields[fieldIsRevoked]); err != nil {
		return rec, fmt.Errorf("session %s %s: %w", sessionID, fieldIsRevoked, err)
	}
	if rec.ExpiresAt, err = time.Parse(time.RFC3339Nano, fields[fieldExpiresAt]); err != nil {
		return rec, fmt.Errorf("session %s %s: %w", sessionID, fieldExpiresAt, err)
	}
	if v := fields[fieldLastUsedAt]; v != "" {
		if rec.LastUsedAt, err = time.Parse(time.RFC3339Nano, v); err != nil {
			return rec, fmt.Errorf("session %s %s: %w", sessionID, fieldLastUsedAt, err)
		}
	}
	return rec, nil
}

func toUserDoc(u domainauth.UserSnapshot) userDoc {
	return userDoc{
		ID:          u.UserID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Roles:       u.Roles.Strings(),
		IsDisabled:  u.IsDisabled,
	}
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
