package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/artisanhub/marketplace-api/internal/core"
	"github.com/artisanhub/marketplace-api/internal/data/pgxutil"
	domainauth "github.com/artisanhub/marketplace-api/internal/domain/auth"
	apperrors "github.com/artisanhub/marketplace-api/internal/errors"
)

const userSelectQuery = `
	SELECT id::text AS id, email, display_name, roles, is_disabled
	FROM users
	WHERE id = $1`

type userRow struct {
	ID          string   `db:"id"`
	Email       string   `db:"email"`
	DisplayName string   `db:"display_name"`
	Roles       []string `db:"roles"`
	IsDisabled  bool     `db:"is_disabled"`
}

// CreateUserParams describes a new user.
type CreateUserParams struct {
	ID          string // Optional: generated when empty
	Email       string // Required
	DisplayName string
	Roles       domainauth.RoleSet
}

// Validate checks the fields a user row cannot be stored without.
func (p CreateUserParams) Validate() error {
	if strings.TrimSpace(p.Email) == "" {
		return ErrEmailRequired
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return apperrors.ValidationField("email", "invalid email address")
	}
	if p.ID != "" {
		if _, err := uuid.Parse(p.ID); err != nil {
			return apperrors.ValidationField("id", "must be a UUID")
		}
	}
	return nil
}

// UserRepo provides database operations for users.
type UserRepo struct {
	DB           *sql.DB
	timeProvider core.TimeProvider
}

// NewUserRepo creates a new UserRepo with the system clock.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db, timeProvider: core.RealTimeProvider{}}
}

// Create inserts a user. Sign-up lives in another service; this serves seeding and tests.
func (r *UserRepo) Create(ctx context.Context, p CreateUserParams) (domainauth.UserSnapshot, error) {
	if err := p.Validate(); err != nil {
		return domainauth.UserSnapshot{}, err
	}
	id := p.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := r.timeProvider.Now().UTC()
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)`,
		id, strings.TrimSpace(p.Email), p.DisplayName, p.Roles.Strings(), now,
	)
	if err != nil {
		return domainauth.UserSnapshot{}, fmt.Errorf("create user: %w", apperrors.MapDBError(err))
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id string) (domainauth.UserSnapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domainauth.UserSnapshot{}, ErrUserNotFound
	}
	var row userRow
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, userSelectQuery, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		row, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[userRow])
		return err
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return domainauth.UserSnapshot{}, ErrUserNotFound
	}
	if err != nil {
		return domainauth.UserSnapshot{}, fmt.Errorf("get user: %w", apperrors.MapDBError(err))
	}

	roles, err := domainauth.ParseRoleSet(row.Roles)
	if err != nil {
		return domainauth.UserSnapshot{}, fmt.Errorf("user %s roles: %w", id, err)
	}
	return domainauth.UserSnapshot{
		UserID:      row.ID,
		IsDisabled:  row.IsDisabled,
		Roles:       roles,
		Email:       row.Email,
		DisplayName: row.DisplayName,
	}, nil
}

// SetRoles replaces the user's roles. An empty set is allowed and yields NoRoleAssigned at the gate.
// Role management is owned by the user service; this serves seeding and tests.
func (r *UserRepo) SetRoles(ctx context.Context, id string, roles domainauth.RoleSet) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}
	res, err := r.DB.ExecContext(ctx,
		`UPDATE users SET roles = $2, updated_at = $3 WHERE id = $1`,
		id, roles.Strings(), r.timeProvider.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set roles: %w", apperrors.MapDBError(err))
	}
	return requireAffected(res, ErrUserNotFound)
}

// SetDisabled flips the user's disabled flag. Admin flows go through SessionRepo.SetUserDisabled;
// this is the same write for callers that only hold a UserRepo, such as seeding and tests.
func (r *UserRepo) SetDisabled(ctx context.Context, id string, disabled bool) error {
	return setUserDisabled(ctx, r.DB, r.timeProvider, id, disabled)
}

func setUserDisabled(ctx context.Context, db *sql.DB, tp core.TimeProvider, id string, disabled bool) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}
	res, err := db.ExecContext(ctx,
		`UPDATE users SET is_disabled = $2, updated_at = $3 WHERE id = $1`, id, disabled, tp.Now().UTC())
	if err != nil {
		return fmt.Errorf("set user disabled: %w", apperrors.MapDBError(err))
	}
	return requireAffected(res, ErrUserNotFound)
}
