package redis

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// unlockScript deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a best-effort distributed mutex. It satisfies auth.Locker.
type Locker struct {
	client redis.UniversalClient
	prefix string

	mu   sync.Mutex
	held map[string]string // key -> owner token
}

type LockerOption func(*Locker)

// WithLockPrefix sets the key prefix ("lock:" by default).
func WithLockPrefix(prefix string) LockerOption {
	return func(l *Locker) {
		l.prefix = prefix
	}
}

func NewLocker(client redis.UniversalClient, opts ...LockerOption) *Locker {
	l := &Locker{
		client: client,
		prefix: "lock:",
		held:   make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TryLock sets the key if it is absent. It reports false, without error, when
// another owner holds it. The lock expires after ttl.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+key, token, ttl).Result()
	if err != nil || !ok {
		return false, err
	}

	l.mu.Lock()
	l.held[key] = token
	l.mu.Unlock()
	return true, nil
}

// Unlock releases a lock taken by this Locker. It returns ErrLockNotHeld when
// the lock was never taken here or has expired and been taken by someone else.
func (l *Locker) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.held[key]
	delete(l.held, key)
	l.mu.Unlock()
	if !ok {
		return ErrLockNotHeld
	}

	n, err := unlockScript.Run(ctx, l.client, []string{l.prefix + key}, token).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrLockNotHeld
	}
	return nil
}
