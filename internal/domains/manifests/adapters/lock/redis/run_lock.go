package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bsm/redislock"

	"github.com/Apurer/go-gin-fiscal-server/internal/domains/manifests/ports"
)

// DefaultTTL is the lease of a run lock; it is refreshed at half the TTL while the run is alive.
const DefaultTTL = 30 * time.Second

const keyPrefix = "lock:manifest-run:"

var _ ports.RunLock = (*RunLock)(nil)

// RunLock serialises manifest runs across API and worker processes with a Redis lease.
type RunLock struct {
	locker *redislock.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewRunLock wires the lock; client is typically *redis.Client from go-redis v9.
func NewRunLock(client redislock.RedisClient, ttl time.Duration, logger *slog.Logger) *RunLock {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RunLock{locker: redislock.New(client), ttl: ttl, logger: logger}
}

// Acquire obtains the lease without waiting; a held lease yields ports.ErrRunLocked.
func (l *RunLock) Acquire(ctx context.Context, manifestID int64) (func(context.Context) error, error) {
	if l == nil || l.locker == nil {
		return nil, errors.New("redis run lock not configured")
	}
	key := Key(manifestID)
	lock, err := l.locker.Obtain(ctx, key, l.ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%w: manifest %d", ports.ErrRunLocked, manifestID)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain run lock: %w", err)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(lock, key, stop, done)

	var once sync.Once
	release := func(ctx context.Context) error {
		var err error
		once.Do(func() {
			close(stop)
			<-done
			if rerr := lock.Release(ctx); rerr != nil && !errors.Is(rerr, redislock.ErrLockNotHeld) {
				err = rerr
			}
		})
		return err
	}
	return release, nil
}

func (l *RunLock) keepAlive(lock *redislock.Lock, key string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := lock.Refresh(context.Background(), l.ttl, nil); err != nil {
				l.logger.Warn("failed to refresh manifest run lock", slog.String("key", key), slog.String("error", err.Error()))
				return
			}
		}
	}
}

// Key returns the Redis key guarding a manifest run.
func Key(manifestID int64) string {
	return fmt.Sprintf("%s%d", keyPrefix, manifestID)
}
