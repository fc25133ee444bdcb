package jwt

import (
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest HMAC secret accepted, in bytes (256 bits).
const MinSecretLength = 32

// Codec signs and verifies access tokens with HMAC-SHA256.
type Codec struct {
	secret []byte
	parser *gojwt.Parser
	now    func() time.Time
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Codec. It fails with ErrSecretTooShort when the secret is
// shorter than MinSecretLength so a misconfigured service never starts.
func New(secret []byte, opts ...Option) (*Codec, error) {
	if len(secret) < MinSecretLength {
		return nil, ErrSecretTooShort
	}

	c := &Codec{
		secret: append([]byte(nil), secret...),
		parser: gojwt.NewParser(
			gojwt.WithValidMethods([]string{gojwt.SigningMethodHS256.Alg()}),
			gojwt.WithoutClaimsValidation(),
		),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromString is New for string secrets from configuration.
func NewFromString(secret string, opts ...Option) (*Codec, error) {
	return New([]byte(secret), opts...)
}

// Issue signs a token for subject with exp = now + ttl.
func (c *Codec) Issue(subject string, userID int64, roles []string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", ErrMissingSubject
	}
	if roles == nil {
		roles = []string{}
	}

	now := c.now()
	claims := issuedClaims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  gojwt.NewNumericDate(now),
			ExpiresAt: gojwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Roles:  roles,
	}

	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", errors.Join(ErrMalformed, err)
	}
	return token, nil
}

// Parse verifies the signature and decodes the claims.
// Expired tokens parse successfully.
func (c *Codec) Parse(token string) (*Claims, error) {
	var pc parsedClaims
	if _, err := c.parser.ParseWithClaims(token, &pc, c.key); err != nil {
		return nil, classify(err)
	}
	return pc.resolve()
}

// Subject returns the sub claim of a correctly signed token.
func (c *Codec) Subject(token string) (string, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// IsExpired reports whether the token exp claim is in the past.
func (c *Codec) IsExpired(token string) (bool, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return false, err
	}
	return claims.ExpiredAt(c.now()), nil
}

// Validate reports whether the token belongs to expectedSubject and is not
// expired. Parse failures are returned as errors, never as false.
func (c *Codec) Validate(token, expectedSubject string) (bool, error) {
	claims, err := c.Parse(token)
	if err != nil {
		return false, err
	}
	return claims.Subject == expectedSubject && !claims.ExpiredAt(c.now()), nil
}

func (c *Codec) key(*gojwt.Token) (any, error) {
	return c.secret, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, ErrInvalidClaimFormat):
		return err
	case errors.Is(err, gojwt.ErrTokenSignatureInvalid), errors.Is(err, gojwt.ErrTokenUnverifiable):
		return errors.Join(ErrInvalidSignature, err)
	default:
		return errors.Join(ErrMalformed, err)
	}
}
