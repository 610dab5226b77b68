package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/config"
	"github.com/bsm/redislock"
	"github.com/rs/zerolog/log"
)

const (
	lockKeyPrefix  = "lock:scm:"
	defaultLockTTL = 30 * time.Second
)

// ErrLocked is returned when another instance holds the lock.
var ErrLocked = errors.New("resource is locked by another worker")

// ReleaseFunc releases a held lock.
type ReleaseFunc func(ctx context.Context)

// Locker serializes snapshot mutations across server instances.
type Locker interface {
	Acquire(ctx context.Context, name string) (ReleaseFunc, error)
}

type redisLocker struct {
	client *redislock.Client
	ttl    time.Duration
}

type noopLocker struct{}

// NewLocker returns a Redis-backed locker when the cache is enabled and a
// no-op locker otherwise.
func NewLocker(cfg config.CacheConfig) (Locker, error) {
	if !cfg.Enabled {
		return noopLocker{}, nil
	}

	client, _, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.LockTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	return &redisLocker{client: redislock.New(client), ttl: ttl}, nil
}

func NewNoopLocker() Locker {
	return noopLocker{}
}

func (l *redisLocker) Acquire(ctx context.Context, name string) (ReleaseFunc, error) {
	key := lockKeyPrefix + name
	backoff := redislock.LimitRetry(redislock.LinearBackoff(200*time.Millisecond), int(l.ttl/(200*time.Millisecond)))

	lock, err := l.client.Obtain(ctx, key, l.ttl, &redislock.Options{RetryStrategy: backoff})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, fmt.Errorf("%s: %w", name, ErrLocked)
	}
	if err != nil {
		return nil, fmt.Errorf("obtain lock %s: %w", name, err)
	}

	return func(ctx context.Context) {
		if err := lock.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Str("lock", key).Msg("failed to release lock")
		}
	}, nil
}

func (noopLocker) Acquire(ctx context.Context, name string) (ReleaseFunc, error) {
	return func(context.Context) {}, nil
}
