package auth

import (
	"context"
	"time"
)

// UserStorage persists accounts. Email lookups are exact matches; callers
// normalize before calling.
type UserStorage interface {
	// GetUserByEmail returns ErrUserNotFound when no account has the email.
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	// GetUserByID returns ErrUserNotFound when the id is unknown.
	GetUserByID(ctx context.Context, id int64) (*User, error)
	// CreateUser persists the user with its roles and sets ID, CreatedAt and
	// UpdatedAt. Returns ErrEmailAlreadyExists on a duplicate email.
	CreateUser(ctx context.Context, user *User) error
	UpdatePasswordHash(ctx context.Context, userID int64, hash string) error
}

// RoleStorage resolves roles by name.
type RoleStorage interface {
	// GetRoleByName returns ErrRoleNotFound when the role does not exist.
	GetRoleByName(ctx context.Context, name string) (*Role, error)
}

// RefreshTokenStorage persists refresh tokens.
type RefreshTokenStorage interface {
	// CreateRefreshToken persists the token and sets ID and CreatedAt.
	CreateRefreshToken(ctx context.Context, token *RefreshToken) error
	// GetRefreshToken returns the record regardless of its state, or
	// ErrRefreshTokenNotFound.
	GetRefreshToken(ctx context.Context, token string) (*RefreshToken, error)
	// RevokeRefreshToken flags the token revoked. Unknown tokens are a no-op.
	RevokeRefreshToken(ctx context.Context, token string) error
	// DeleteExpiredRefreshTokens hard-deletes records with expires_at < before.
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
	DeleteRefreshTokensByUser(ctx context.Context, userID int64) (int64, error)
}

// Storage is the full persistence contract of the package.
type Storage interface {
	UserStorage
	RoleStorage
	RefreshTokenStorage
}
