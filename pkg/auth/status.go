package auth

import (
	"errors"
	"net/http"

	"github.com/gestortareas/gestor/pkg/jwt"
)

var statusCodes = []struct {
	err  error
	code int
}{
	{ErrInvalidCredentials, http.StatusUnauthorized},
	{ErrAccountDisabled, http.StatusUnauthorized},
	{ErrRefreshTokenRevokedOrExpired, http.StatusUnauthorized},
	{ErrInvalidToken, http.StatusUnauthorized},
	{ErrNoEmailFromProvider, http.StatusUnauthorized},
	{jwt.ErrInvalidSignature, http.StatusUnauthorized},
	{jwt.ErrInvalidClaimFormat, http.StatusUnauthorized},
	{jwt.ErrMalformed, http.StatusBadRequest},
	{ErrUserNotFound, http.StatusNotFound},
	{ErrRoleNotFound, http.StatusNotFound},
	{ErrRefreshTokenNotFound, http.StatusNotFound},
	{ErrEmailAlreadyExists, http.StatusConflict},
	{ErrInvalidEmail, http.StatusBadRequest},
	{ErrWeakPassword, http.StatusBadRequest},
	{ErrUnsupportedProvider, http.StatusBadRequest},
	{ErrInvalidSocialRequest, http.StatusBadRequest},
	{ErrMissingRedirectURI, http.StatusBadRequest},
	{ErrMisconfiguredProvider, http.StatusInternalServerError},
	{ErrMissingDefaultRole, http.StatusInternalServerError},
	{ErrTokenExchangeFailed, http.StatusBadGateway},
}

// StatusCode maps an error returned by this package (or by pkg/jwt) to an
// HTTP status. Unknown errors map to 500.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	for _, sc := range statusCodes {
		if errors.Is(err, sc.err) {
			return sc.code
		}
	}
	return http.StatusInternalServerError
}
