// Package captcha verifies client captcha tokens against a
// reCAPTCHA-compatible siteverify endpoint.
//
// A Verifier without a secret is disabled: every call succeeds and a warning
// is logged, so development environments work without captcha keys. With a
// secret, a missing token fails with ErrMissingToken and every other failure
// (transport error, non-2xx, undecodable body, success=false) collapses into
// ErrVerificationFailed. Upstream detail goes to the log only.
package captcha
