package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"unicode/utf8"

	"github.com/gestortareas/gestor/pkg/logger"
)

// PasswordHasher hashes and checks passwords. *password.Hasher implements it.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// Authenticator handles registration and email+password login.
type Authenticator struct {
	users           UserStorage
	roles           RoleStorage
	hasher          PasswordHasher
	issuer          *TokenIssuer
	logger          *slog.Logger
	defaultRole     string
	defaultTimezone string

	// decoyOnce guards decoyHash, a hash checked for unknown emails so both
	// failure paths pay the same bcrypt cost.
	decoyOnce sync.Once
	decoyHash string
}

type AuthenticatorOption func(*Authenticator)

// WithAuthenticatorLogger sets a custom logger for the service
func WithAuthenticatorLogger(l *slog.Logger) AuthenticatorOption {
	return func(a *Authenticator) {
		a.logger = l
	}
}

// WithDefaultRole sets the role granted to new accounts (RoleUser by default).
func WithDefaultRole(name string) AuthenticatorOption {
	return func(a *Authenticator) {
		if name != "" {
			a.defaultRole = name
		}
	}
}

// WithDefaultTimezone sets the timezone of accounts registered without one.
func WithDefaultTimezone(tz string) AuthenticatorOption {
	return func(a *Authenticator) {
		if tz != "" {
			a.defaultTimezone = tz
		}
	}
}

func NewAuthenticator(users UserStorage, roles RoleStorage, hasher PasswordHasher, issuer *TokenIssuer, opts ...AuthenticatorOption) *Authenticator {
	a := &Authenticator{
		users:           users,
		roles:           roles,
		hasher:          hasher,
		issuer:          issuer,
		logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		defaultRole:     RoleUser,
		defaultTimezone: "UTC",
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate checks email and password and issues a token pair.
// Unknown email and wrong password both return ErrInvalidCredentials.
// A disabled account is reported only after the password matched.
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*TokenPair, error) {
	email = normalizeEmail(email)

	user, err := a.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			a.hasher.Verify(password, a.decoy())
			a.logger.WarnContext(ctx, "login rejected",
				logger.Email(email),
				slog.String("reason", "unknown email"),
				logger.Component("auth.authenticator"),
			)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !a.hasher.Verify(password, user.PasswordHash) {
		a.logger.WarnContext(ctx, "login rejected",
			logger.UserID(user.ID),
			slog.String("reason", "password mismatch"),
			logger.Component("auth.authenticator"),
		)
		return nil, ErrInvalidCredentials
	}

	if !user.Enabled {
		return nil, ErrAccountDisabled
	}

	return a.issuer.IssueFor(ctx, user)
}

// Register creates an enabled account holding the default role.
func (a *Authenticator) Register(ctx context.Context, in RegisterInput) (*User, error) {
	email := normalizeEmail(in.Email)
	if !validEmail(email) {
		return nil, ErrInvalidEmail
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	role, err := a.defaultRoleRecord(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := a.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	tz := in.Timezone
	if tz == "" {
		tz = a.defaultTimezone
	}

	user := &User{
		Email:        email,
		PasswordHash: hash,
		Name:         displayName(in.Name),
		Timezone:     tz,
		Enabled:      true,
		Roles:        []string{role.Name},
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	a.logger.InfoContext(ctx, "user registered",
		logger.UserID(user.ID),
		logger.Component("auth.authenticator"),
	)
	return user, nil
}

// ChangePassword replaces the password of userID after checking the current one.
func (a *Authenticator) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := a.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !a.hasher.Verify(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}
	if utf8.RuneCountInString(next) < MinPasswordLength {
		return ErrWeakPassword
	}

	hash, err := a.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := a.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (a *Authenticator) decoy() string {
	a.decoyOnce.Do(func() {
		hash, err := a.hasher.Hash("gestor-unknown-account")
		if err != nil {
			a.logger.Error("failed to build decoy password hash",
				logger.Error(err),
				logger.Component("auth.authenticator"),
			)
			return
		}
		a.decoyHash = hash
	})
	return a.decoyHash
}

func (a *Authenticator) defaultRoleRecord(ctx context.Context) (*Role, error) {
	return lookupDefaultRole(ctx, a.roles, a.defaultRole)
}

func lookupDefaultRole(ctx context.Context, roles RoleStorage, name string) (*Role, error) {
	role, err := roles.GetRoleByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrRoleNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrMissingDefaultRole, name)
		}
		return nil, fmt.Errorf("failed to load role %s: %w", name, err)
	}
	return role, nil
}
