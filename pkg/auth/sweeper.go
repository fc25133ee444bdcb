package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/gestortareas/gestor/pkg/logger"
)

// ErrSweepSkipped is returned by RunOnce when another instance holds the lock.
var ErrSweepSkipped = errors.New("auth: sweep skipped, lock held elsewhere")

// SweepLockKey is the lock name the Sweeper acquires on each run.
const SweepLockKey = "gestor:auth:refresh-token-sweep"

// Locker is a best-effort distributed mutex. TryLock reports false when the
// lock is held by someone else.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}

// Sweeper periodically deletes expired refresh tokens.
type Sweeper struct {
	tokens   *RefreshTokenStore
	interval time.Duration
	locker   Locker
	lockTTL  time.Duration
	logger   *slog.Logger
}

type SweeperOption func(*Sweeper)

// WithSweepInterval sets the tick interval (1h by default).
func WithSweepInterval(d time.Duration) SweeperOption {
	return func(s *Sweeper) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithSweepLocker guards each run with l so that one instance of a fleet
// sweeps per tick. A successful sweep keeps the lock until ttl expires, so ttl
// should be a little shorter than the interval; 0 means 90% of the interval.
// A failed sweep releases the lock at once so another instance can retry.
func WithSweepLocker(l Locker, ttl time.Duration) SweeperOption {
	return func(s *Sweeper) {
		s.locker = l
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

func WithSweeperLogger(l *slog.Logger) SweeperOption {
	return func(s *Sweeper) {
		s.logger = l
	}
}

func NewSweeper(tokens *RefreshTokenStore, opts ...SweeperOption) *Sweeper {
	s := &Sweeper{
		tokens:   tokens,
		interval: time.Hour,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lockTTL <= 0 {
		s.lockTTL = s.interval * 9 / 10
	}
	return s
}

// Start sweeps immediately and then on every tick until ctx is done.
// It returns ctx.Err().
func (s *Sweeper) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.run(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("refresh token sweeper stopped", logger.Component("auth.sweeper"))
			return ctx.Err()
		case <-ticker.C:
			s.run(ctx)
		}
	}
}

func (s *Sweeper) run(ctx context.Context) {
	started := time.Now()
	n, err := s.RunOnce(ctx)
	switch {
	case errors.Is(err, ErrSweepSkipped):
		s.logger.DebugContext(ctx, "sweep skipped", logger.Component("auth.sweeper"))
	case err != nil:
		s.logger.ErrorContext(ctx, "sweep failed", logger.Error(err), logger.Component("auth.sweeper"))
	default:
		s.logger.DebugContext(ctx, "sweep finished",
			logger.Count(n),
			logger.Duration(time.Since(started)),
			logger.Component("auth.sweeper"),
		)
	}
}

// RunOnce performs a single sweep and returns the number of deleted tokens.
// With a locker, the lock is left to expire after a successful sweep and
// released right away after a failed one.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	if s.locker == nil {
		return s.tokens.PurgeExpired(ctx, s.tokens.Now())
	}

	ok, err := s.locker.TryLock(ctx, SweepLockKey, s.lockTTL)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, ErrSweepSkipped
	}

	n, err := s.tokens.PurgeExpired(ctx, s.tokens.Now())
	if err != nil {
		if unlockErr := s.locker.Unlock(context.WithoutCancel(ctx), SweepLockKey); unlockErr != nil {
			s.logger.WarnContext(ctx, "failed to release sweep lock",
				logger.Error(unlockErr),
				logger.Component("auth.sweeper"),
			)
		}
		return 0, err
	}
	return n, nil
}
