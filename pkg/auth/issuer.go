package auth

import (
	"context"
	"fmt"
	"slices"
	"time"
)

// AccessTokenCodec mints and checks access tokens. *jwt.Codec implements it.
type AccessTokenCodec interface {
	Issue(subject string, userID int64, roles []string, ttl time.Duration) (string, error)
	Subject(token string) (string, error)
	Validate(token, expectedSubject string) (bool, error)
}

// TokenIssuer is the single place token pairs are built. Password login,
// refresh and social login all go through it.
type TokenIssuer struct {
	codec      AccessTokenCodec
	tokens     *RefreshTokenStore
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenIssuer panics on a non-positive TTL.
func NewTokenIssuer(codec AccessTokenCodec, tokens *RefreshTokenStore, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	if accessTTL <= 0 || refreshTTL <= 0 {
		panic(fmt.Sprintf("auth: token TTLs must be positive, got access=%s refresh=%s", accessTTL, refreshTTL))
	}
	return &TokenIssuer{
		codec:      codec,
		tokens:     tokens,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssueFor mints an access token and a new refresh token for user.
func (i *TokenIssuer) IssueFor(ctx context.Context, user *User) (*TokenPair, error) {
	rt, err := i.tokens.Create(ctx, user, i.refreshTTL)
	if err != nil {
		return nil, err
	}
	return i.Reissue(user, rt.Token)
}

// Reissue mints a fresh access token from the user's current roles and pairs
// it with an existing refresh token.
func (i *TokenIssuer) Reissue(user *User, refreshToken string) (*TokenPair, error) {
	access, err := i.codec.Issue(user.Email, user.ID, slices.Clone(user.Roles), i.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	return &TokenPair{
		JWTToken:     access,
		Type:         TokenTypeBearer,
		ExpiresIn:    i.accessTTL.Milliseconds(),
		RefreshToken: refreshToken,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (i *TokenIssuer) AccessTTL() time.Duration { return i.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (i *TokenIssuer) RefreshTTL() time.Duration { return i.refreshTTL }
