package redisx

import (
	"context"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := New(mr.Addr())
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestIdempotencyLifecycle(t *testing.T) {
	_, rdb := setupTestRedis(t)
	idem := &Idempotency{Redis: rdb}
	ctx := context.Background()

	id, err := idem.Begin(ctx, "k1")
	require.NoError(t, err)
	assert.Empty(t, id)

	_, err = idem.Begin(ctx, "k1")
	assert.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, idem.Complete(ctx, "k1", "order-1"))
	id, err = idem.Begin(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "order-1", id)
}

func TestIdempotencyAbortFreesKey(t *testing.T) {
	_, rdb := setupTestRedis(t)
	idem := &Idempotency{Redis: rdb}
	ctx := context.Background()

	_, err := idem.Begin(ctx, "k2")
	require.NoError(t, err)
	require.NoError(t, idem.Abort(ctx, "k2"))

	id, err := idem.Begin(ctx, "k2")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestPendingClaimExpires(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	idem := &Idempotency{Redis: rdb}
	ctx := context.Background()

	_, err := idem.Begin(ctx, "k3")
	require.NoError(t, err)
	mr.FastForward(TTLPending + time.Second)

	id, err := idem.Begin(ctx, "k3")
	require.NoError(t, err)
	assert.Empty(t, id)
}

func TestMarkProcessed(t *testing.T) {
	mr, rdb := setupTestRedis(t)
	ctx := context.Background()

	first, err := MarkProcessed(ctx, rdb, "inventory", "evt-1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := MarkProcessed(ctx, rdb, "inventory", "evt-1")
	require.NoError(t, err)
	assert.False(t, again)

	assert.True(t, mr.Exists("dedup:inventory:evt-1"))
	ttl := mr.TTL("dedup:inventory:evt-1")
	assert.Equal(t, TTLDedup, ttl)
}
