package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	s, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		s.Close()
	})

	return client
}

func TestRedisLock(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	t.Run("AcquireAndRelease", func(t *testing.T) {
		guard := NewRedisLock(client, "checkout:basket:1", "owner-a", time.Minute)

		err := guard.Lock(ctx)
		assert.NoError(t, err)

		held, err := guard.IsHeld(ctx)
		assert.NoError(t, err)
		assert.True(t, held)

		err = guard.Unlock(ctx)
		assert.NoError(t, err)

		held, err = guard.IsHeld(ctx)
		assert.NoError(t, err)
		assert.False(t, held)
	})

	t.Run("SecondOwnerBlocked", func(t *testing.T) {
		first := NewRedisLock(client, "checkout:basket:2", "owner-a", time.Minute)
		second := NewRedisLock(client, "checkout:basket:2", "owner-b", time.Minute)

		require.NoError(t, first.Lock(ctx))

		err := second.Lock(ctx)
		assert.ErrorIs(t, err, ErrLockNotAcquired)

		held, err := first.IsHeld(ctx)
		assert.NoError(t, err)
		assert.True(t, held)

		held, err = second.IsHeld(ctx)
		assert.NoError(t, err)
		assert.False(t, held)

		require.NoError(t, first.Unlock(ctx))

		// The key is free again
		assert.NoError(t, second.Lock(ctx))
		assert.NoError(t, second.Unlock(ctx))
	})

	t.Run("TryLockExhaustsRetries", func(t *testing.T) {
		first := NewRedisLock(client, "checkout:basket:3", "owner-a", time.Minute)
		second := NewRedisLock(client, "checkout:basket:3", "owner-b", time.Minute)

		require.NoError(t, first.Lock(ctx))

		start := time.Now()
		err := second.TryLock(ctx, 2, 50*time.Millisecond)
		elapsed := time.Since(start)

		assert.ErrorIs(t, err, ErrLockNotAcquired)
		assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond, "retries should sleep between attempts")

		require.NoError(t, first.Unlock(ctx))

		assert.NoError(t, second.TryLock(ctx, 2, 50*time.Millisecond))
		assert.NoError(t, second.Unlock(ctx))
	})

	t.Run("ExtendKeepsLockAlive", func(t *testing.T) {
		guard := NewRedisLock(client, "checkout:basket:4", "owner-a", 100*time.Millisecond)

		require.NoError(t, guard.Lock(ctx))
		require.NoError(t, guard.Extend(ctx, time.Minute))

		held, err := guard.IsHeld(ctx)
		assert.NoError(t, err)
		assert.True(t, held)

		assert.NoError(t, guard.Unlock(ctx))
	})

	t.Run("ExtendWithoutHolding", func(t *testing.T) {
		guard := NewRedisLock(client, "checkout:basket:5", "owner-a", time.Minute)

		err := guard.Extend(ctx, time.Minute)
		assert.ErrorIs(t, err, ErrLockNotHeld)
	})

	t.Run("UnlockWithoutHolding", func(t *testing.T) {
		guard := NewRedisLock(client, "checkout:basket:6", "owner-a", time.Minute)

		err := guard.Unlock(ctx)
		assert.ErrorIs(t, err, ErrLockNotHeld)
	})

	t.Run("UnlockWithWrongToken", func(t *testing.T) {
		first := NewRedisLock(client, "checkout:basket:7", "owner-a", time.Minute)
		second := NewRedisLock(client, "checkout:basket:7", "owner-b", time.Minute)

		require.NoError(t, first.Lock(ctx))

		err := second.Unlock(ctx)
		assert.ErrorIs(t, err, ErrLockNotHeld)

		held, err := first.IsHeld(ctx)
		assert.NoError(t, err)
		assert.True(t, held)

		assert.NoError(t, first.Unlock(ctx))
	})

	t.Run("CancelledContextStopsRetries", func(t *testing.T) {
		first := NewRedisLock(client, "checkout:basket:8", "owner-a", time.Minute)
		second := NewRedisLock(client, "checkout:basket:8", "owner-b", time.Minute)

		require.NoError(t, first.Lock(ctx))

		cancelCtx, cancel := context.WithCancel(ctx)
		cancel()

		err := second.TryLock(cancelCtx, 3, 50*time.Millisecond)
		assert.ErrorIs(t, err, context.Canceled)

		assert.NoError(t, first.Unlock(ctx))
	})
}
