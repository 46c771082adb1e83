package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/artisanhub/marketplace-api/internal/core"
	"github.com/artisanhub/marketplace-api/internal/data/pgxutil"
	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
	apperrors "github.com/artisanhub/marketplace-api/internal/errors"
	"github.com/artisanhub/marketplace-api/internal/ports"
)

var (
	_ ports.SessionStore      = (*SessionRepo)(nil)
	_ ports.SessionAdminStore = (*SessionRepo)(nil)
)

const sessionSelectQuery = `
	SELECT s.id::text AS session_id, s.user_id::text AS user_id, s.is_revoked, s.expires_at, s.last_used_at,
		u.email, u.display_name, u.roles, u.is_disabled
	FROM sessions s
	JOIN users u ON u.id = s.user_id
	WHERE s.id = $1`

// sessionRow is the joined sessions/users row.
type sessionRow struct {
	SessionID   string     `db:"session_id"`
	UserID      string     `db:"user_id"`
	IsRevoked   bool       `db:"is_revoked"`
	ExpiresAt   time.Time  `db:"expires_at"`
	LastUsedAt  *time.Time `db:"last_used_at"`
	Email       string     `db:"email"`
	DisplayName string     `db:"display_name"`
	Roles       []string   `db:"roles"`
	IsDisabled  bool       `db:"is_disabled"`
}

func (r sessionRow) toRecord() (domainauth.SessionRecord, error) {
	roles, err := domainauth.ParseRoleSet(r.Roles)
	if err != nil {
		return domainauth.SessionRecord{}, fmt.Errorf("user %s roles: %w", r.UserID, err)
	}
	rec := domainauth.SessionRecord{
		SessionID: r.SessionID,
		UserID:    r.UserID,
		IsRevoked: r.IsRevoked,
		ExpiresAt: r.ExpiresAt,
		User: domainauth.UserSnapshot{
			UserID:      r.UserID,
			IsDisabled:  r.IsDisabled,
			Roles:       roles,
			Email:       r.Email,
			DisplayName: r.DisplayName,
		},
	}
	if r.LastUsedAt != nil {
		rec.LastUsedAt = *r.LastUsedAt
	}
	return rec, nil
}

// CreateSessionParams describes a new session row.
type CreateSessionParams struct {
	ID        string // Optional: generated when empty
	UserID    string // Required
	ExpiresAt time.Time
}

// SessionRepo is the Postgres session store.
type SessionRepo struct {
	DB           *sql.DB
	timeProvider core.TimeProvider
}

// NewSessionRepo creates a new SessionRepo with the system clock.
func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{DB: db, timeProvider: core.RealTimeProvider{}}
}

// NewSessionRepoWithTimeProvider creates a SessionRepo with a custom clock (useful for tests).
func NewSessionRepoWithTimeProvider(db *sql.DB, tp core.TimeProvider) *SessionRepo {
	return &SessionRepo{DB: db, timeProvider: tp}
}

// Create inserts a session for an existing user and returns the stored record.
func (r *SessionRepo) Create(ctx context.Context, p CreateSessionParams) (domainauth.SessionRecord, error) {
	if p.UserID == "" {
		return domainauth.SessionRecord{}, ErrUserIDRequired
	}
	if p.ExpiresAt.IsZero() {
		return domainauth.SessionRecord{}, apperrors.ValidationField("expires_at", "expiry is required")
	}
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}

	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at, created_at) VALUES ($1, $2, $3, $4)`,
		id, p.UserID, p.ExpiresAt.UTC(), r.timeProvider.Now().UTC(),
	)
	if err != nil {
		return domainauth.SessionRecord{}, fmt.Errorf("create session: %w", apperrors.MapDBError(err))
	}
	return r.FindByID(ctx, id)
}

// FindByID implements ports.SessionStore. Ids that are not UUIDs cannot exist and report not found.
func (r *SessionRepo) FindByID(ctx context.Context, sessionID string) (domainauth.SessionRecord, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return domainauth.SessionRecord{}, ErrSessionNotFound
	}

	var row sessionRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, sessionSelectQuery, sessionID)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[sessionRow])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domainauth.SessionRecord{}, ErrSessionNotFound
	}
	if err != nil {
		return domainauth.SessionRecord{}, fmt.Errorf("find session: %w", apperrors.MapDBError(err))
	}
	return row.toRecord()
}

// Touch implements ports.SessionStore. Touching a missing session is a no-op.
func (r *SessionRepo) Touch(ctx context.Context, sessionID string, at time.Time) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil
	}
	if _, err := r.DB.ExecContext(ctx,
		`UPDATE sessions SET last_used_at = $2 WHERE id = $1`, sessionID, at.UTC(),
	); err != nil {
		return fmt.Errorf("touch session: %w", apperrors.MapDBError(err))
	}
	return nil
}

// RevokeSession implements ports.SessionAdminStore. Revoking twice succeeds.
func (r *SessionRepo) RevokeSession(ctx context.Context, sessionID string) error {
	if _, err := uuid.Parse(sessionID); err != nil {
		return ErrSessionNotFound
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE sessions SET is_revoked = TRUE WHERE id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("revoke session: %w", apperrors.MapDBError(err))
	}
	return requireAffected(res, ErrSessionNotFound)
}

// RevokeAllForUser implements ports.SessionAdminStore. The user check and the update share a
// transaction so a user deleted concurrently is reported as not found.
func (r *SessionRepo) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, ErrUserNotFound
	}

	var revoked int64
	err := pgxutil.WithPgxTx(ctx, r.DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrUserNotFound
		}
		tag, err := tx.Exec(ctx,
			`UPDATE sessions SET is_revoked = TRUE WHERE user_id = $1 AND NOT is_revoked`, userID)
		if err != nil {
			return err
		}
		revoked = tag.RowsAffected()
		return nil
	})
	if errors.Is(err, ErrUserNotFound) {
		return 0, err
	}
	if err != nil {
		return 0, fmt.Errorf("revoke user sessions: %w", apperrors.MapDBError(err))
	}
	return revoked, nil
}

// SetUserDisabled implements ports.SessionAdminStore.
func (r *SessionRepo) SetUserDisabled(ctx context.Context, userID string, disabled bool) error {
	return setUserDisabled(ctx, r.DB, r.timeProvider, userID, disabled)
}

// DeleteExpired removes sessions that expired before cutoff and returns the count.
func (r *SessionRepo) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", apperrors.MapDBError(err))
	}
	return res.RowsAffected()
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
