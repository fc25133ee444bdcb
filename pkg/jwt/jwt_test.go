package jwt_test

import (
	"math"
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestortareas/gestor/pkg/jwt"
)

const (
	testSecret  = "0123456789abcdef0123456789abcdef"
	otherSecret = "fedcba9876543210fedcba9876543210"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}
}

func newCodec(t *testing.T, secret string, clock *fakeClock) *jwt.Codec {
	t.Helper()
	codec, err := jwt.NewFromString(secret, jwt.WithClock(clock.Now))
	require.NoError(t, err)
	return codec
}

// signMap signs arbitrary claims with HS256, bypassing the Codec.
func signMap(t *testing.T, secret string, claims gojwt.MapClaims) string {
	t.Helper()
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("accepts a 32 byte secret", func(t *testing.T) {
		t.Parallel()
		codec, err := jwt.New([]byte(testSecret))
		require.NoError(t, err)
		require.NotNil(t, codec)
	})

	t.Run("rejects short secrets", func(t *testing.T) {
		t.Parallel()
		for _, secret := range []string{"", "secret", strings.Repeat("x", jwt.MinSecretLength-1)} {
			codec, err := jwt.NewFromString(secret)
			require.ErrorIs(t, err, jwt.ErrSecretTooShort)
			require.Nil(t, codec)
		}
	})
}

func TestCodec_IssueParseRoundTrip(t *testing.T) {
	t.Parallel()

	clock := newClock()
	codec := newCodec(t, testSecret, clock)

	roles := []string{"USER", "ADMIN"}
	ttl := 15 * time.Minute

	token, err := codec.Issue("a@x.com", 42, roles, ttl)
	require.NoError(t, err)
	require.Len(t, strings.Split(token, "."), 3)

	claims, err := codec.Parse(token)
	require.NoError(t, err)

	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, int64(42), claims.UserID)
	assert.ElementsMatch(t, roles, claims.Roles)
	assert.Equal(t, clock.Now().Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, ttl, claims.ExpiresAt.Sub(claims.IssuedAt))
	assert.True(t, claims.HasRole("ADMIN"))
	assert.False(t, claims.HasRole("OWNER"))
}

func TestCodec_IssueWithoutRoles(t *testing.T) {
	t.Parallel()

	codec := newCodec(t, testSecret, newClock())

	token, err := codec.Issue("a@x.com", 1, nil, time.Hour)
	require.NoError(t, err)

	claims, err := codec.Parse(token)
	require.NoError(t, err)
	assert.NotNil(t, claims.Roles)
	assert.Empty(t, claims.Roles)
}

func TestCodec_IssueRequiresSubject(t *testing.T) {
	t.Parallel()

	codec := newCodec(t, testSecret, newClock())

	_, err := codec.Issue("", 1, nil, time.Hour)
	require.ErrorIs(t, err, jwt.ErrMissingSubject)
}

func TestCodec_SignatureIntegrity(t *testing.T) {
	t.Parallel()

	clock := newClock()
	issuer := newCodec(t, testSecret, clock)
	verifier := newCodec(t, otherSecret, clock)

	token, err := issuer.Issue("a@x.com", 1, []string{"USER"}, time.Hour)
	require.NoError(t, err)

	t.Run("parse fails under another secret", func(t *testing.T) {
		t.Parallel()
		_, err := verifier.Parse(token)
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})

	t.Run("validate fails under another secret", func(t *testing.T) {
		t.Parallel()
		ok, err := verifier.Validate(token, "a@x.com")
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
		assert.False(t, ok)
	})

	t.Run("tampered payload is rejected", func(t *testing.T) {
		t.Parallel()
		forged := signMap(t, otherSecret, gojwt.MapClaims{"sub": "admin@x.com", "usuarioId": 1, "exp": clock.Now().Add(time.Hour).Unix()})
		parts := strings.Split(token, ".")
		forgedParts := strings.Split(forged, ".")
		spliced := parts[0] + "." + forgedParts[1] + "." + parts[2]

		_, err := issuer.Parse(spliced)
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})

	t.Run("other algorithms are rejected", func(t *testing.T) {
		t.Parallel()
		unsigned, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{"sub": "a@x.com"}).
			SignedString(gojwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = issuer.Parse(unsigned)
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)

		hs512, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, gojwt.MapClaims{"sub": "a@x.com"}).
			SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = issuer.Parse(hs512)
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})
}

func TestCodec_Malformed(t *testing.T) {
	t.Parallel()

	codec := newCodec(t, testSecret, newClock())

	for _, token := range []string{"", "not-a-token", "a.b", "a.b.c", "!!!.???.***"} {
		_, err := codec.Parse(token)
		require.ErrorIs(t, err, jwt.ErrMalformed, "token %q", token)

		_, err = codec.Validate(token, "a@x.com")
		require.Error(t, err, "validate must raise for %q", token)
	}
}

func TestCodec_Expiry(t *testing.T) {
	t.Parallel()

	clock := newClock()
	codec := newCodec(t, testSecret, clock)

	token, err := codec.Issue("a@x.com", 7, []string{"USER"}, time.Millisecond)
	require.NoError(t, err)

	clock.Advance(2 * time.Second)

	expired, err := codec.IsExpired(token)
	require.NoError(t, err)
	assert.True(t, expired)

	ok, err := codec.Validate(token, "a@x.com")
	require.NoError(t, err, "expired but correctly signed tokens are not errors")
	assert.False(t, ok)

	claims, err := codec.Parse(token)
	require.NoError(t, err, "parse does not reject expired tokens")
	assert.Equal(t, int64(7), claims.UserID)
}

func TestCodec_ExpiryRealClock(t *testing.T) {
	t.Parallel()

	codec, err := jwt.NewFromString(testSecret)
	require.NoError(t, err)

	token, err := codec.Issue("a@x.com", 7, nil, time.Millisecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	expired, err := codec.IsExpired(token)
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestCodec_Validate(t *testing.T) {
	t.Parallel()

	clock := newClock()
	codec := newCodec(t, testSecret, clock)

	token, err := codec.Issue("a@x.com", 1, nil, time.Hour)
	require.NoError(t, err)

	ok, err := codec.Validate(token, "a@x.com")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = codec.Validate(token, "b@x.com")
	require.NoError(t, err)
	assert.False(t, ok)

	sub, err := codec.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", sub)
}

func TestCodec_MissingExpiryCountsAsExpired(t *testing.T) {
	t.Parallel()

	codec := newCodec(t, testSecret, newClock())
	token := signMap(t, testSecret, gojwt.MapClaims{"sub": "a@x.com", "usuarioId": 1})

	expired, err := codec.IsExpired(token)
	require.NoError(t, err)
	assert.True(t, expired)
}

func TestCodec_UserIDCoercion(t *testing.T) {
	t.Parallel()

	clock := newClock()
	codec := newCodec(t, testSecret, clock)
	exp := clock.Now().Add(time.Hour).Unix()

	tests := []struct {
		name    string
		value   any
		want    int64
		wantErr error
	}{
		{name: "int64", value: int64(9007199254740993), want: 9007199254740993},
		{name: "int32", value: int32(42), want: 42},
		{name: "decimal", value: 42.0, want: 42},
		{name: "fractional decimal truncates", value: 42.9, want: 42},
		{name: "numeric string", value: "42", want: 42},
		{name: "numeric string with spaces", value: " 42 ", want: 42},
		{name: "decimal string", value: "42.5", want: 42},
		{name: "negative", value: -3, want: -3},
		{name: "missing", value: nil, want: 0},
		{name: "non-numeric string", value: "abc", wantErr: jwt.ErrInvalidClaimFormat},
		{name: "empty string", value: "", wantErr: jwt.ErrInvalidClaimFormat},
		{name: "boolean", value: true, wantErr: jwt.ErrInvalidClaimFormat},
		{name: "object", value: map[string]any{"id": 1}, wantErr: jwt.ErrInvalidClaimFormat},
		{name: "list", value: []int{1}, wantErr: jwt.ErrInvalidClaimFormat},
		{name: "decimal at 2^63", value: 9223372036854775808.0, wantErr: jwt.ErrInvalidClaimFormat},
		{name: "string at 2^63", value: "9223372036854775808", wantErr: jwt.ErrInvalidClaimFormat},
		{name: "decimal above range", value: 1e19, wantErr: jwt.ErrInvalidClaimFormat},
		{name: "min int64 string", value: "-9223372036854775808", want: math.MinInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims := gojwt.MapClaims{"sub": "a@x.com", "exp": exp}
			if tt.value != nil {
				claims["usuarioId"] = tt.value
			}

			got, err := codec.Parse(signMap(t, testSecret, claims))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.UserID)
		})
	}
}

func TestCodec_RolesClaim(t *testing.T) {
	t.Parallel()

	clock := newClock()
	codec := newCodec(t, testSecret, clock)
	exp := clock.Now().Add(time.Hour).Unix()

	tests := []struct {
		name  string
		value any
		want  []string
	}{
		{name: "list of strings", value: []string{"USER", "ADMIN"}, want: []string{"USER", "ADMIN"}},
		{name: "string is not a list", value: "ADMIN", want: []string{}},
		{name: "number is not a list", value: 5, want: []string{}},
		{name: "object is not a list", value: map[string]any{"role": "ADMIN"}, want: []string{}},
		{name: "non-string elements are skipped", value: []any{"USER", 3, nil}, want: []string{"USER"}},
		{name: "missing", value: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			claims := gojwt.MapClaims{"sub": "a@x.com", "usuarioId": 1, "exp": exp}
			if tt.value != nil {
				claims["roles"] = tt.value
			}

			got, err := codec.Parse(signMap(t, testSecret, claims))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Roles)
		})
	}
}
