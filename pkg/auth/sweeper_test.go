package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedTokens(t *testing.T, env *testEnv, expired, live int) {
	t.Helper()
	ctx := context.Background()
	user := env.register(t, "sweep@x.com")
	for range expired {
		_, err := env.tokens.Create(ctx, user, time.Minute)
		require.NoError(t, err)
	}
	for range live {
		_, err := env.tokens.Create(ctx, user, 24*time.Hour)
		require.NoError(t, err)
	}
	env.clock.Advance(time.Hour)
}

func TestSweeper_RunOnce(t *testing.T) {
	t.Parallel()

	t.Run("without locker", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		seedTokens(t, env, 2, 1)

		n, err := NewSweeper(env.tokens).RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		assert.Equal(t, 1, env.store.RefreshTokenCount())
	})

	t.Run("keeps the lock after a successful sweep", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		seedTokens(t, env, 3, 0)

		locker := &MockLocker{}
		locker.On("TryLock", mock.Anything, SweepLockKey, 30*time.Second).Return(true, nil).Once()

		n, err := NewSweeper(env.tokens, WithSweepLocker(locker, 30*time.Second)).RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)
		locker.AssertExpectations(t)
		locker.AssertNotCalled(t, "Unlock", mock.Anything, mock.Anything)
	})

	t.Run("second instance in the same tick is skipped", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		seedTokens(t, env, 2, 0)

		locker := newFakeLocker()
		first := NewSweeper(env.tokens, WithSweepLocker(locker, 0))
		second := NewSweeper(env.tokens, WithSweepLocker(locker, 0))

		n, err := first.RunOnce(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, err = second.RunOnce(context.Background())
		assert.ErrorIs(t, err, ErrSweepSkipped)
		assert.Equal(t, 54*time.Minute, locker.ttl(SweepLockKey), "default ttl is 90% of the interval")
	})

	t.Run("skips while another instance holds the lock", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		seedTokens(t, env, 3, 0)

		locker := &MockLocker{}
		locker.On("TryLock", mock.Anything, SweepLockKey, time.Minute).Return(false, nil).Once()

		_, err := NewSweeper(env.tokens, WithSweepLocker(locker, time.Minute)).RunOnce(context.Background())
		assert.ErrorIs(t, err, ErrSweepSkipped)
		assert.Equal(t, 3, env.store.RefreshTokenCount())
		locker.AssertExpectations(t)
		locker.AssertNotCalled(t, "Unlock", mock.Anything, mock.Anything)
	})

	t.Run("lock backend failure", func(t *testing.T) {
		t.Parallel()
		env := newTestEnv(t)
		locker := &MockLocker{}
		locker.On("TryLock", mock.Anything, SweepLockKey, time.Minute).Return(false, errors.New("redis down"))

		_, err := NewSweeper(env.tokens, WithSweepLocker(locker, time.Minute)).RunOnce(context.Background())
		assert.EqualError(t, err, "redis down")
	})

	t.Run("storage failure still releases the lock", func(t *testing.T) {
		t.Parallel()
		storage := &MockRefreshTokenStorage{}
		storage.On("DeleteExpiredRefreshTokens", mock.Anything, mock.AnythingOfType("time.Time")).
			Return(int64(0), errors.New("db down"))
		locker := &MockLocker{}
		locker.On("TryLock", mock.Anything, SweepLockKey, time.Minute).Return(true, nil)
		locker.On("Unlock", mock.Anything, SweepLockKey).Return(nil).Once()

		_, err := NewSweeper(NewRefreshTokenStore(storage), WithSweepLocker(locker, time.Minute)).RunOnce(context.Background())
		require.Error(t, err)
		locker.AssertExpectations(t)
	})
}

// fakeLocker holds keys until Unlock; expiry is not modelled.
type fakeLocker struct {
	mu   sync.Mutex
	held map[string]time.Duration
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]time.Duration)}
}

func (l *fakeLocker) TryLock(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return false, nil
	}
	l.held[key] = ttl
	return true, nil
}

func (l *fakeLocker) Unlock(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, key)
	return nil
}

func (l *fakeLocker) ttl(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

func TestSweeper_Start(t *testing.T) {
	t.Parallel()

	storage := &MockRefreshTokenStorage{}
	swept := make(chan struct{}, 16)
	storage.On("DeleteExpiredRefreshTokens", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(int64(1), nil).
		Run(func(mock.Arguments) {
			select {
			case swept <- struct{}{}:
			default:
			}
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- NewSweeper(NewRefreshTokenStore(storage), WithSweepInterval(10*time.Millisecond)).Start(ctx)
	}()

	for range 2 {
		select {
		case <-swept:
		case <-time.After(2 * time.Second):
			t.Fatal("sweeper did not run")
		}
	}
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
