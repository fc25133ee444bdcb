package auth

import "errors"

// Credential and account errors
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrAccountDisabled    = errors.New("auth: account disabled")
	ErrEmailAlreadyExists = errors.New("auth: email already registered")
	ErrInvalidEmail       = errors.New("auth: invalid email")
	ErrWeakPassword       = errors.New("auth: password must be at least 8 characters")
)

// Lookup errors returned by storage implementations
var (
	ErrUserNotFound         = errors.New("auth: user not found")
	ErrRoleNotFound         = errors.New("auth: role not found")
	ErrRefreshTokenNotFound = errors.New("auth: refresh token not found")
)

// Session errors
var (
	ErrRefreshTokenRevokedOrExpired = errors.New("auth: refresh token revoked or expired")
	ErrInvalidToken                 = errors.New("auth: invalid access token")
	ErrMissingDefaultRole           = errors.New("auth: default role is missing")
)

// Social login errors
var (
	ErrUnsupportedProvider   = errors.New("auth: unsupported identity provider")
	ErrInvalidSocialRequest  = errors.New("auth: code or access token is required")
	ErrMisconfiguredProvider = errors.New("auth: identity provider is not configured")
	ErrMissingRedirectURI    = errors.New("auth: redirect uri is required")
	ErrTokenExchangeFailed   = errors.New("auth: identity provider token exchange failed")
	ErrNoEmailFromProvider   = errors.New("auth: identity provider returned no email")
)
