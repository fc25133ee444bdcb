package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRefreshTokenStore_Create(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")

	rt, err := env.tokens.Create(ctx, user, time.Hour)
	require.NoError(t, err)

	parsed, err := uuid.Parse(rt.Token)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.Equal(t, user.ID, rt.UserID)
	assert.Equal(t, env.clock.Now().Add(time.Hour), rt.ExpiresAt)
	assert.False(t, rt.Revoked)
	assert.NotZero(t, rt.ID)

	other, err := env.tokens.Create(ctx, user, time.Hour)
	require.NoError(t, err)
	assert.NotEqual(t, rt.Token, other.Token)
}

func TestRefreshTokenStore_Create_StorageError(t *testing.T) {
	t.Parallel()

	storage := &MockRefreshTokenStorage{}
	storage.On("CreateRefreshToken", mock.Anything, mock.AnythingOfType("*auth.RefreshToken")).
		Return(errors.New("db down"))

	_, err := NewRefreshTokenStore(storage).Create(context.Background(), &User{ID: 1}, time.Hour)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	storage.AssertExpectations(t)
}

func TestRefreshTokenStore_FindValid(t *testing.T) {
	t.Parallel()

	t.Run("valid token", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		ctx := context.Background()
		rt, err := env.tokens.Create(ctx, env.register(t, "a@x.com"), time.Hour)
		require.NoError(t, err)

		found, err := env.tokens.FindValid(ctx, rt.Token)
		require.NoError(t, err)
		assert.Equal(t, rt.Token, found.Token)
	})

	t.Run("revoked token", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		ctx := context.Background()
		rt, err := env.tokens.Create(ctx, env.register(t, "a@x.com"), time.Hour)
		require.NoError(t, err)
		require.NoError(t, env.tokens.Revoke(ctx, rt.Token))

		_, err = env.tokens.FindValid(ctx, rt.Token)
		assert.ErrorIs(t, err, ErrRefreshTokenNotFound)

		byToken, err := env.tokens.FindByToken(ctx, rt.Token)
		require.NoError(t, err)
		assert.True(t, byToken.Revoked)
	})

	t.Run("expires exactly at now", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		ctx := context.Background()
		rt, err := env.tokens.Create(ctx, env.register(t, "a@x.com"), time.Minute)
		require.NoError(t, err)

		env.clock.Advance(time.Minute)
		_, err = env.tokens.FindValid(ctx, rt.Token)
		assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
	})

	t.Run("unknown and empty token", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		_, err := env.tokens.FindValid(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
		_, err = env.tokens.FindByToken(context.Background(), "")
		assert.ErrorIs(t, err, ErrRefreshTokenNotFound)
	})
}

func TestRefreshTokenStore_Revoke(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	rt, err := env.tokens.Create(ctx, env.register(t, "a@x.com"), time.Hour)
	require.NoError(t, err)

	require.NoError(t, env.tokens.Revoke(ctx, rt.Token))
	require.NoError(t, env.tokens.Revoke(ctx, rt.Token))
	assert.NoError(t, env.tokens.Revoke(ctx, "does-not-exist"))
}

func TestRefreshTokenStore_PurgeExpired(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	user := env.register(t, "a@x.com")

	const expired, live = 4, 3
	for range expired {
		_, err := env.tokens.Create(ctx, user, time.Minute)
		require.NoError(t, err)
	}
	for range live {
		_, err := env.tokens.Create(ctx, user, 48*time.Hour)
		require.NoError(t, err)
	}

	env.clock.Advance(time.Hour)
	n, err := env.tokens.PurgeExpired(ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(expired), n)
	assert.Equal(t, live, env.store.RefreshTokenCount())

	n, err = env.tokens.PurgeExpired(ctx, env.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRefreshTokenStore_PurgeAllForUser(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.register(t, "alice@x.com")
	bob := env.register(t, "bob@x.com")

	for range 3 {
		_, err := env.tokens.Create(ctx, alice, time.Hour)
		require.NoError(t, err)
	}
	bobToken, err := env.tokens.Create(ctx, bob, time.Hour)
	require.NoError(t, err)

	n, err := env.tokens.PurgeAllForUser(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	_, err = env.tokens.FindValid(ctx, bobToken.Token)
	assert.NoError(t, err)
}
