// Package jwt issues and verifies the signed access tokens handed to API clients.
//
// Tokens are HS256 JWTs built with github.com/golang-jwt/jwt/v5 and carry:
//
//	{ "sub": <email>, "usuarioId": <int>, "roles": [<string>...], "iat": <unix>, "exp": <unix> }
//
// A Codec refuses to start with a secret shorter than 32 bytes. Parse verifies
// the signature and the algorithm but never rejects a token for being expired;
// expiry is a separate question answered by IsExpired and Validate, so callers
// can tell a forged token (error) from a stale one (false).
//
// Claim decoding is lenient where older clients and other issuers disagree on
// types: usuarioId may be an integer, a decimal or a numeric string, and a roles
// claim that is not a list decodes as no roles. Anything else in usuarioId is
// ErrInvalidClaimFormat.
//
// # Usage
//
//	codec, err := jwt.New([]byte(cfg.JWTSecret))
//	if err != nil {
//		return err // secret too short
//	}
//	token, err := codec.Issue("a@x.com", 42, []string{"USER"}, time.Hour)
//	claims, err := codec.Parse(token)
//	ok, err := codec.Validate(token, "a@x.com")
package jwt
