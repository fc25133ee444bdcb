package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gestortareas/gestor/pkg/logger"
)

// SessionRefresher handles refresh, logout and access token checks.
type SessionRefresher struct {
	tokens *RefreshTokenStore
	users  UserStorage
	codec  AccessTokenCodec
	issuer *TokenIssuer
	logger *slog.Logger
}

type SessionOption func(*SessionRefresher)

// WithSessionLogger sets a custom logger for the service
func WithSessionLogger(l *slog.Logger) SessionOption {
	return func(s *SessionRefresher) {
		s.logger = l
	}
}

func NewSessionRefresher(tokens *RefreshTokenStore, users UserStorage, codec AccessTokenCodec, issuer *TokenIssuer, opts ...SessionOption) *SessionRefresher {
	s := &SessionRefresher{
		tokens: tokens,
		users:  users,
		codec:  codec,
		issuer: issuer,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh mints a new access token from the owner's current roles. The
// response carries the same refresh token; refresh tokens are not rotated.
func (s *SessionRefresher) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	rt, err := s.tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	if !rt.ValidAt(s.tokens.Now()) {
		s.logger.WarnContext(ctx, "refresh rejected",
			logger.UserID(rt.UserID),
			slog.Bool("revoked", rt.Revoked),
			logger.Component("auth.session"),
		)
		return nil, ErrRefreshTokenRevokedOrExpired
	}

	user, err := s.users.GetUserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	return s.issuer.Reissue(user, rt.Token)
}

// Logout revokes the refresh token. Tokens that are already revoked or expired
// are revoked again without error; unknown tokens return ErrRefreshTokenNotFound.
func (s *SessionRefresher) Logout(ctx context.Context, refreshToken string) error {
	rt, err := s.tokens.FindByToken(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := s.tokens.Revoke(ctx, rt.Token); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "session closed",
		logger.UserID(rt.UserID),
		logger.Component("auth.session"),
	)
	return nil
}

// ValidateAccessToken checks the token against the subject it carries, so in
// effect it verifies signature, claim format and expiry. Every failure is
// reported as ErrInvalidToken joined with the cause.
func (s *SessionRefresher) ValidateAccessToken(ctx context.Context, token string) error {
	subject, err := s.codec.Subject(token)
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	ok, err := s.codec.Validate(token, subject)
	if err != nil {
		return errors.Join(ErrInvalidToken, err)
	}
	if !ok {
		return ErrInvalidToken
	}
	return nil
}

// RevokeAllSessions deletes every refresh token of userID and returns how
// many were removed.
func (s *SessionRefresher) RevokeAllSessions(ctx context.Context, userID int64) (int64, error) {
	n, err := s.tokens.PurgeAllForUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.logger.InfoContext(ctx, "all sessions revoked",
		logger.UserID(userID),
		logger.Count(n),
		logger.Component("auth.session"),
	)
	return n, nil
}
