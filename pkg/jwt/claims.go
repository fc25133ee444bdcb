package jwt

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the decoded content of an access token.
type Claims struct {
	Subject   string
	UserID    int64
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ExpiredAt reports whether the token is past its expiry at now.
// A token without an exp claim counts as expired.
func (c *Claims) ExpiredAt(now time.Time) bool {
	if c.ExpiresAt.IsZero() {
		return true
	}
	return c.ExpiresAt.Before(now)
}

// HasRole reports whether role is among the token roles.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// issuedClaims is the shape written into new tokens.
type issuedClaims struct {
	gojwt.RegisteredClaims
	UserID int64    `json:"usuarioId"`
	Roles  []string `json:"roles"`
}

// parsedClaims is the shape read back from any token, including ones minted
// by other issuers sharing the secret.
type parsedClaims struct {
	gojwt.RegisteredClaims
	UserID userIDClaim `json:"usuarioId"`
	Roles  rolesClaim  `json:"roles"`
}

func (p *parsedClaims) resolve() (*Claims, error) {
	id, err := p.UserID.value()
	if err != nil {
		return nil, err
	}

	c := &Claims{
		Subject: p.Subject,
		UserID:  id,
		Roles:   []string(p.Roles),
	}
	if c.Roles == nil {
		c.Roles = []string{}
	}
	if p.IssuedAt != nil {
		c.IssuedAt = p.IssuedAt.Time
	}
	if p.ExpiresAt != nil {
		c.ExpiresAt = p.ExpiresAt.Time
	}
	return c, nil
}

type claimKind uint8

const (
	claimMissing claimKind = iota
	claimNumber
	claimString
	claimInvalid
)

// userIDClaim keeps the raw usuarioId value together with its JSON kind until
// the claims are resolved. Decoding never fails here: a bad value must surface
// as ErrInvalidClaimFormat, not as a malformed token.
type userIDClaim struct {
	kind claimKind
	raw  string
}

func (u *userIDClaim) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		u.kind = claimMissing
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			u.kind = claimInvalid
			return nil
		}
		u.kind, u.raw = claimString, s
	case b[0] == '-' || (b[0] >= '0' && b[0] <= '9'):
		u.kind, u.raw = claimNumber, string(b)
	default:
		u.kind = claimInvalid
	}
	return nil
}

func (u userIDClaim) value() (int64, error) {
	switch u.kind {
	case claimMissing:
		return 0, nil
	case claimNumber, claimString:
		return parseNumeric(strings.TrimSpace(u.raw))
	default:
		return 0, ErrInvalidClaimFormat
	}
}

// parseNumeric accepts integers and decimals; decimals are truncated toward zero.
func parseNumeric(s string) (int64, error) {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f >= 1<<63 || f < math.MinInt64 {
		return 0, ErrInvalidClaimFormat
	}
	return int64(f), nil
}

// rolesClaim decodes a JSON array of strings. Any other JSON value yields no
// roles; non-string array elements are skipped.
type rolesClaim []string

func (r *rolesClaim) UnmarshalJSON(b []byte) error {
	var items []any
	if err := json.Unmarshal(b, &items); err != nil {
		*r = rolesClaim{}
		return nil
	}
	out := make(rolesClaim, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	*r = out
	return nil
}
