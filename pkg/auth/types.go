package auth

import (
	"slices"
	"time"
)

// Built-in role names. RoleUser is granted to every new account.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// TokenTypeBearer is the token type reported in every TokenPair.
const TokenTypeBearer = "Bearer"

// User is a local account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         string
	Timezone     string
	Enabled      bool
	Roles        []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	return slices.Contains(u.Roles, name)
}

// Role is a named permission tag.
type Role struct {
	ID   int64
	Name string
}

// RefreshToken is a long-lived opaque session credential.
type RefreshToken struct {
	ID        int64
	Token     string
	UserID    int64
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// ValidAt reports whether the token can still be exchanged at now.
func (t *RefreshToken) ValidAt(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}

// TokenPair is returned by every login, refresh and social login.
type TokenPair struct {
	JWTToken     string `json:"jwtToken"`
	Type         string `json:"type"`
	ExpiresIn    int64  `json:"expiresIn"` // access token TTL in milliseconds
	RefreshToken string `json:"refreshToken"`
}

// RegisterInput carries the fields accepted on sign-up.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
	Timezone string `json:"timezone,omitempty"`
}

// SocialLoginRequest asks for a social login. Either Code or AccessToken must be set.
type SocialLoginRequest struct {
	Provider    Provider `json:"provider"`
	Code        string   `json:"code,omitempty"`
	AccessToken string   `json:"accessToken,omitempty"`
	RedirectURI string   `json:"redirectUri,omitempty"`
}
