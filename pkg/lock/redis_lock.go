package lock

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockNotAcquired the lock is held by someone else
	ErrLockNotAcquired = errors.New("lock not acquired")
	// ErrLockNotHeld the lock is not held by this owner
	ErrLockNotHeld = errors.New("lock not held")
)

// Release and extend compare the stored token so one owner cannot
// touch another owner's lock.
var (
	releaseScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		end
		return 0
	`)

	extendScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		end
		return 0
	`)
)

// RedisLock is a single-owner mutual exclusion lock stored in Redis.
// The token identifies the owner; only the holder of the token can
// release or extend the lock.
type RedisLock struct {
	client *redis.Client
	key    string
	token  string
	ttl    time.Duration
}

// NewRedisLock creates a lock for key owned by token
func NewRedisLock(client *redis.Client, key, token string, ttl time.Duration) *RedisLock {
	return &RedisLock{
		client: client,
		key:    key,
		token:  token,
		ttl:    ttl,
	}
}

// Lock attempts a single acquisition
func (l *RedisLock) Lock(ctx context.Context) error {
	ok, err := l.client.SetNX(ctx, l.key, l.token, l.ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrLockNotAcquired
	}
	return nil
}

// TryLock attempts acquisition up to maxRetries times, sleeping
// retryDelay between attempts
func (l *RedisLock) TryLock(ctx context.Context, maxRetries int, retryDelay time.Duration) error {
	for i := 0; i < maxRetries; i++ {
		err := l.Lock(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrLockNotAcquired) {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryDelay):
		}
	}

	return ErrLockNotAcquired
}

// Unlock releases the lock if this owner still holds it
func (l *RedisLock) Unlock(ctx context.Context) error {
	released, err := releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Int()
	if err != nil {
		return err
	}
	if released == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// Extend resets the lock TTL if this owner still holds it
func (l *RedisLock) Extend(ctx context.Context, ttl time.Duration) error {
	extended, err := extendScript.Run(ctx, l.client, []string{l.key}, l.token, ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if extended == 0 {
		return ErrLockNotHeld
	}
	return nil
}

// IsHeld reports whether this owner currently holds the lock
func (l *RedisLock) IsHeld(ctx context.Context) (bool, error) {
	value, err := l.client.Get(ctx, l.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return value == l.token, nil
}
