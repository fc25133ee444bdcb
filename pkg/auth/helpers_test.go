package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gestortareas/gestor/pkg/jwt"
	"github.com/gestortareas/gestor/pkg/password"
)

const (
	testSecret     = "0123456789abcdef0123456789abcdef"
	testPassword   = "Password123!"
	testAccessTTL  = time.Hour
	testRefreshTTL = 30 * 24 * time.Hour
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testEnv wires every service against a MemoryStore and a shared fake clock.
type testEnv struct {
	clock    *testClock
	store    *MemoryStore
	codec    *jwt.Codec
	hasher   *password.Hasher
	tokens   *RefreshTokenStore
	issuer   *TokenIssuer
	authn    *Authenticator
	sessions *SessionRefresher
}

func newTestEnv(t *testing.T, storeOpts ...MemoryStoreOption) *testEnv {
	t.Helper()

	clock := newTestClock()
	store := NewMemoryStore(append([]MemoryStoreOption{WithMemoryStoreClock(clock.Now)}, storeOpts...)...)
	codec, err := jwt.NewFromString(testSecret, jwt.WithClock(clock.Now))
	require.NoError(t, err)
	hasher := password.NewHasher(password.WithCost(bcrypt.MinCost))
	tokens := NewRefreshTokenStore(store, WithRefreshStoreClock(clock.Now))
	issuer := NewTokenIssuer(codec, tokens, testAccessTTL, testRefreshTTL)

	return &testEnv{
		clock:    clock,
		store:    store,
		codec:    codec,
		hasher:   hasher,
		tokens:   tokens,
		issuer:   issuer,
		authn:    NewAuthenticator(store, store, hasher, issuer),
		sessions: NewSessionRefresher(tokens, store, codec, issuer),
	}
}

func (e *testEnv) register(t *testing.T, email string) *User {
	t.Helper()
	user, err := e.authn.Register(context.Background(), RegisterInput{Email: email, Password: testPassword})
	require.NoError(t, err)
	return user
}

func (e *testEnv) login(t *testing.T, email string) *TokenPair {
	t.Helper()
	pair, err := e.authn.Authenticate(context.Background(), email, testPassword)
	require.NoError(t, err)
	return pair
}
