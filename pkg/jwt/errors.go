package jwt

import "errors"

var (
	ErrSecretTooShort     = errors.New("jwt: signing secret must be at least 32 bytes")
	ErrMissingSubject     = errors.New("jwt: missing subject")
	ErrMalformed          = errors.New("jwt: malformed token")
	ErrInvalidSignature   = errors.New("jwt: invalid signature")
	ErrInvalidClaimFormat = errors.New("jwt: invalid claim format")
)
