package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gestortareas/gestor/pkg/logger"
)

// RefreshTokenStore manages the refresh token lifecycle on top of a
// RefreshTokenStorage. Token values are random UUIDv4 strings.
type RefreshTokenStore struct {
	storage  RefreshTokenStorage
	logger   *slog.Logger
	now      func() time.Time
	newToken func() string
}

type RefreshStoreOption func(*RefreshTokenStore)

// WithRefreshStoreLogger sets a custom logger for the store
func WithRefreshStoreLogger(l *slog.Logger) RefreshStoreOption {
	return func(s *RefreshTokenStore) {
		s.logger = l
	}
}

// WithRefreshStoreClock replaces time.Now, mostly for tests.
func WithRefreshStoreClock(now func() time.Time) RefreshStoreOption {
	return func(s *RefreshTokenStore) {
		s.now = now
	}
}

func NewRefreshTokenStore(storage RefreshTokenStorage, opts ...RefreshStoreOption) *RefreshTokenStore {
	s := &RefreshTokenStore{
		storage:  storage,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:      time.Now,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the store's current time.
func (s *RefreshTokenStore) Now() time.Time {
	return s.now()
}

// Create issues and persists a new refresh token for user.
func (s *RefreshTokenStore) Create(ctx context.Context, user *User, ttl time.Duration) (*RefreshToken, error) {
	token := &RefreshToken{
		Token:     s.newToken(),
		UserID:    user.ID,
		ExpiresAt: s.now().Add(ttl),
	}
	if err := s.storage.CreateRefreshToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return token, nil
}

// FindByToken returns the record regardless of revocation or expiry.
func (s *RefreshTokenStore) FindByToken(ctx context.Context, token string) (*RefreshToken, error) {
	if token == "" {
		return nil, ErrRefreshTokenNotFound
	}
	rt, err := s.storage.GetRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrRefreshTokenNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("failed to load refresh token: %w", err)
	}
	return rt, nil
}

// FindValid returns the record only while it is neither revoked nor expired.
// Otherwise it returns ErrRefreshTokenNotFound.
func (s *RefreshTokenStore) FindValid(ctx context.Context, token string) (*RefreshToken, error) {
	rt, err := s.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !rt.ValidAt(s.now()) {
		return nil, ErrRefreshTokenNotFound
	}
	return rt, nil
}

// Revoke flags the token revoked. Unknown tokens are ignored.
func (s *RefreshTokenStore) Revoke(ctx context.Context, token string) error {
	if err := s.storage.RevokeRefreshToken(ctx, token); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// PurgeExpired deletes every token with expiresAt before now and returns how
// many were removed.
func (s *RefreshTokenStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	n, err := s.storage.DeleteExpiredRefreshTokens(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired refresh tokens: %w", err)
	}
	if n > 0 {
		s.logger.InfoContext(ctx, "expired refresh tokens purged",
			logger.Count(n),
			logger.Component("auth.refresh_store"),
		)
	}
	return n, nil
}

// PurgeAllForUser deletes every token owned by userID.
func (s *RefreshTokenStore) PurgeAllForUser(ctx context.Context, userID int64) (int64, error) {
	n, err := s.storage.DeleteRefreshTokensByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete refresh tokens: %w", err)
	}
	return n, nil
}
