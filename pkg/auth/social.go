package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gestortareas/gestor/pkg/logger"
)

// SocialExchanger logs users in through an external identity provider and
// links them to local accounts by email.
type SocialExchanger struct {
	users           UserStorage
	roles           RoleStorage
	hasher          PasswordHasher
	issuer          *TokenIssuer
	adapters        map[Provider]ProviderAdapter
	logger          *slog.Logger
	defaultRole     string
	defaultTimezone string
}

type SocialOption func(*SocialExchanger)

// WithSocialLogger sets a custom logger for the service
func WithSocialLogger(l *slog.Logger) SocialOption {
	return func(s *SocialExchanger) {
		s.logger = l
	}
}

// WithSocialDefaultRole sets the role granted to accounts created on first
// social login (RoleUser by default).
func WithSocialDefaultRole(name string) SocialOption {
	return func(s *SocialExchanger) {
		if name != "" {
			s.defaultRole = name
		}
	}
}

func WithSocialDefaultTimezone(tz string) SocialOption {
	return func(s *SocialExchanger) {
		if tz != "" {
			s.defaultTimezone = tz
		}
	}
}

// WithProviders registers adapters. A later adapter for the same provider
// replaces an earlier one.
func WithProviders(adapters ...ProviderAdapter) SocialOption {
	return func(s *SocialExchanger) {
		for _, a := range adapters {
			if a != nil {
				s.adapters[a.Provider()] = a
			}
		}
	}
}

func NewSocialExchanger(users UserStorage, roles RoleStorage, hasher PasswordHasher, issuer *TokenIssuer, opts ...SocialOption) *SocialExchanger {
	s := &SocialExchanger{
		users:           users,
		roles:           roles,
		hasher:          hasher,
		issuer:          issuer,
		adapters:        make(map[Provider]ProviderAdapter, 2),
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaultRole:     RoleUser,
		defaultTimezone: "UTC",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login exchanges req for a local token pair. The caller's access token is
// used as-is when present; otherwise the authorization code is exchanged
// using req.RedirectURI or the provider's configured default.
func (s *SocialExchanger) Login(ctx context.Context, req SocialLoginRequest) (*TokenPair, error) {
	if req.Code == "" && req.AccessToken == "" {
		return nil, ErrInvalidSocialRequest
	}
	adapter, err := s.adapter(req.Provider)
	if err != nil {
		return nil, err
	}
	if err := adapter.CheckConfig(); err != nil {
		s.logger.ErrorContext(ctx, "social login against misconfigured provider",
			logger.Provider(string(req.Provider)),
			logger.Error(err),
			logger.Component("auth.social"),
		)
		return nil, err
	}

	accessToken := req.AccessToken
	if accessToken == "" {
		redirectURI := req.RedirectURI
		if redirectURI == "" {
			redirectURI = adapter.DefaultRedirectURI()
		}
		if redirectURI == "" {
			return nil, ErrMissingRedirectURI
		}
		if accessToken, err = adapter.ExchangeCode(ctx, req.Code, redirectURI); err != nil {
			s.logUpstreamFailure(ctx, req.Provider, "code exchange failed", err)
			return nil, err
		}
	}

	info, err := adapter.FetchProfile(ctx, accessToken)
	if err != nil {
		s.logUpstreamFailure(ctx, req.Provider, "profile fetch failed", err)
		return nil, err
	}
	email := normalizeEmail(info.Email)
	if email == "" {
		return nil, ErrNoEmailFromProvider
	}

	user, err := s.findOrCreateUser(ctx, req.Provider, email, displayName(info.Name, email))
	if err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, ErrAccountDisabled
	}

	return s.issuer.IssueFor(ctx, user)
}

// AuthCodeURL returns the provider consent page URL that starts the code flow.
func (s *SocialExchanger) AuthCodeURL(provider Provider, state, redirectURI string) (string, error) {
	adapter, err := s.adapter(provider)
	if err != nil {
		return "", err
	}
	if err := adapter.CheckConfig(); err != nil {
		return "", err
	}
	if redirectURI == "" {
		redirectURI = adapter.DefaultRedirectURI()
	}
	if redirectURI == "" {
		return "", ErrMissingRedirectURI
	}
	return adapter.AuthCodeURL(state, redirectURI), nil
}

func (s *SocialExchanger) adapter(p Provider) (ProviderAdapter, error) {
	a, ok := s.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, p)
	}
	return a, nil
}

func (s *SocialExchanger) findOrCreateUser(ctx context.Context, provider Provider, email, name string) (*User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	role, err := lookupDefaultRole(ctx, s.roles, s.defaultRole)
	if err != nil {
		return nil, err
	}
	hash, err := s.randomPasswordHash()
	if err != nil {
		return nil, err
	}

	user = &User{
		Email:        email,
		PasswordHash: hash,
		Name:         name,
		Timezone:     s.defaultTimezone,
		Enabled:      true,
		Roles:        []string{role.Name},
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			// concurrent first login created it
			return s.users.GetUserByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.InfoContext(ctx, "user created from social login",
		logger.UserID(user.ID),
		logger.Provider(string(provider)),
		logger.Component("auth.social"),
	)
	return user, nil
}

// randomPasswordHash hashes 32 random bytes. The plaintext is discarded, so
// the account is reachable only through the provider.
func (s *SocialExchanger) randomPasswordHash() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := s.hasher.Hash(base64.RawURLEncoding.EncodeToString(buf))
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return hash, nil
}

func (s *SocialExchanger) logUpstreamFailure(ctx context.Context, p Provider, msg string, err error) {
	s.logger.WarnContext(ctx, msg,
		logger.Provider(string(p)),
		logger.Error(err),
		logger.Component("auth.social"),
	)
}
