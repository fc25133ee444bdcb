package captcha

import (
	"errors"
	"net/http"
)

var (
	ErrMissingToken       = errors.New("captcha: token is required")
	ErrVerificationFailed = errors.New("captcha: verification failed")
)

// StatusCode maps verifier errors to HTTP 400. Nil maps to 200, anything else
// to 500.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingToken), errors.Is(err, ErrVerificationFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
