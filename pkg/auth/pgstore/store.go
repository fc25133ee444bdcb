// Package pgstore implements the auth storage contracts on PostgreSQL.
//
// Run Migrations through pg.Migrate before using the Store. The first
// migration creates users, roles, user_roles and refresh_tokens and seeds the
// USER and ADMIN roles.
package pgstore

import (
	"context"
	"embed"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gestortareas/gestor/pkg/auth"
	"github.com/gestortareas/gestor/pkg/pg"
)

// Migrations holds the goose migrations under the "migrations" directory.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Store implements auth.Storage.
type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const selectUser = `
SELECT u.id, u.email, u.password_hash, u.name, u.timezone, u.enabled, u.created_at, u.updated_at,
       COALESCE(array_agg(r.name ORDER BY r.name) FILTER (WHERE r.name IS NOT NULL), '{}')::text[]
FROM users u
LEFT JOIN user_roles ur ON ur.user_id = u.id
LEFT JOIN roles r ON r.id = ur.role_id
`

func scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Name, &u.Timezone, &u.Enabled,
		&u.CreatedAt, &u.UpdatedAt, &u.Roles)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return scanUser(s.db.QueryRow(ctx, selectUser+`WHERE u.email = $1 GROUP BY u.id`, email))
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*auth.User, error) {
	return scanUser(s.db.QueryRow(ctx, selectUser+`WHERE u.id = $1 GROUP BY u.id`, id))
}

// CreateUser inserts the user and its role links in one transaction. user is
// only updated when the transaction commits.
func (s *Store) CreateUser(ctx context.Context, user *auth.User) error {
	roles := slices.Compact(slices.Sorted(slices.Values(user.Roles)))

	var (
		id                   int64
		createdAt, updatedAt time.Time
	)
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (email, password_hash, name, timezone, enabled)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at, updated_at`,
			user.Email, user.PasswordHash, user.Name, user.Timezone, user.Enabled,
		).Scan(&id, &createdAt, &updatedAt)
		if err != nil {
			if pg.IsDuplicateKeyError(err) {
				return auth.ErrEmailAlreadyExists
			}
			return fmt.Errorf("insert user: %w", err)
		}

		if len(roles) == 0 {
			return nil
		}
		tag, err := tx.Exec(ctx, `
			INSERT INTO user_roles (user_id, role_id)
			SELECT $1, id FROM roles WHERE name = ANY($2)`,
			id, roles,
		)
		if err != nil {
			return fmt.Errorf("insert user roles: %w", err)
		}
		if tag.RowsAffected() != int64(len(roles)) {
			return auth.ErrRoleNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	user.ID, user.CreatedAt, user.UpdatedAt = id, createdAt, updatedAt
	return nil
}

func (s *Store) UpdatePasswordHash(ctx context.Context, userID int64, hash string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`, userID, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// SetUserEnabled toggles the enabled flag.
func (s *Store) SetUserEnabled(ctx context.Context, userID int64, enabled bool) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE users SET enabled = $2, updated_at = now() WHERE id = $1`, userID, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// GrantRole links the role to the user. Granting a held role is a no-op.
func (s *Store) GrantRole(ctx context.Context, userID int64, role string) error {
	r, err := s.GetRoleByName(ctx, role)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, userID, r.ID)
	if pg.IsForeignKeyViolationError(err) {
		return auth.ErrUserNotFound
	}
	return err
}

func (s *Store) GetRoleByName(ctx context.Context, name string) (*auth.Role, error) {
	var r auth.Role
	err := s.db.QueryRow(ctx, `SELECT id, name FROM roles WHERE name = $1`, name).Scan(&r.ID, &r.Name)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrRoleNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *Store) CreateRefreshToken(ctx context.Context, token *auth.RefreshToken) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO refresh_tokens (token, user_id, expires_at, revoked)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		token.Token, token.UserID, token.ExpiresAt, token.Revoked,
	).Scan(&token.ID, &token.CreatedAt)
	if err != nil {
		if pg.IsForeignKeyViolationError(err) {
			return auth.ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *Store) GetRefreshToken(ctx context.Context, token string) (*auth.RefreshToken, error) {
	var rt auth.RefreshToken
	err := s.db.QueryRow(ctx, `
		SELECT id, token, user_id, expires_at, revoked, created_at
		FROM refresh_tokens WHERE token = $1`, token,
	).Scan(&rt.ID, &rt.Token, &rt.UserID, &rt.ExpiresAt, &rt.Revoked, &rt.CreatedAt)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, auth.ErrRefreshTokenNotFound
		}
		return nil, err
	}
	return &rt, nil
}

func (s *Store) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := s.db.Exec(ctx, `UPDATE refresh_tokens SET revoked = TRUE WHERE token = $1`, token)
	return err
}

func (s *Store) DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE expires_at < $1`, before)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (s *Store) DeleteRefreshTokensByUser(ctx context.Context, userID int64) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Healthcheck pings the database.
func (s *Store) Healthcheck(ctx context.Context) error {
	return pg.Healthcheck(s.db)(ctx)
}

var _ auth.Storage = (*Store)(nil)
