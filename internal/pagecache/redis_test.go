package pagecache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *Redis {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedis(rdb, time.Minute)
}

func TestRedisInvalidatePath(t *testing.T) {
	ctx := context.Background()
	c := newTestRedis(t)
	path := "/todos-" + uuid.NewString()

	mustSet(t, c, path, "alice", 0, []byte("a"))
	mustSet(t, c, path, "bob", 0, []byte("b"))

	body, ok, err := c.Get(ctx, path, "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", string(body))

	require.NoError(t, c.InvalidatePath(ctx, path))

	for _, identity := range []string{"alice", "bob"} {
		_, ok, err := c.Get(ctx, path, identity)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestRedisSetAfterInvalidate(t *testing.T) {
	ctx := context.Background()
	c := newTestRedis(t)
	path := "/todos-" + uuid.NewString()

	gen, err := c.Generation(ctx, path)
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.InvalidatePath(ctx, path))

	stored, err := c.Set(ctx, path, "alice", gen, []byte("stale"))
	require.NoError(t, err)
	assert.False(t, stored)

	_, ok, err := c.Get(ctx, path, "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := c.Generation(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)
	mustSet(t, c, path, "alice", next, []byte("fresh"))

	ttl, err := c.rdb.PTTL(ctx, key(path, "alice")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}
