package pagecache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSet(t *testing.T, c Cache, path, identity string, gen uint64, body []byte) {
	t.Helper()

	stored, err := c.Set(context.Background(), path, identity, gen, body)
	require.NoError(t, err)
	require.True(t, stored)
}

func TestMemoryGetSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := NewMemory(0)

	_, ok, err := c.Get(ctx, "/todos", "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	mustSet(t, c, "/todos", "alice", 0, []byte("page"))

	body, ok, err := c.Get(ctx, "/todos", "alice")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "page", string(body))

	_, ok, err = c.Get(ctx, "/todos", "bob")
	require.NoError(t, err)
	assert.False(t, ok, "entries are per identity")
}

func TestMemorySetCopiesBody(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := NewMemory(0)
	body := []byte("page")
	mustSet(t, c, "/todos", "alice", 0, body)
	body[0] = 'x'

	got, ok, err := c.Get(ctx, "/todos", "alice")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "page", string(got))
}

func TestMemoryInvalidatePath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := NewMemory(0)
	mustSet(t, c, "/todos", "alice", 0, []byte("a"))
	mustSet(t, c, "/todos", "bob", 0, []byte("b"))
	mustSet(t, c, "/about", "alice", 0, []byte("c"))

	require.NoError(t, c.InvalidatePath(ctx, "/todos"))

	for _, identity := range []string{"alice", "bob"} {
		_, ok, err := c.Get(ctx, "/todos", identity)
		require.NoError(t, err)
		assert.False(t, ok, "entry for %s should be gone", identity)
	}

	_, ok, err := c.Get(ctx, "/about", "alice")
	require.NoError(t, err)
	assert.True(t, ok, "other paths are kept")
}

func TestMemoryExpiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute).WithClock(func() time.Time { return now })

	mustSet(t, c, "/todos", "alice", 0, []byte("page"))

	now = now.Add(59 * time.Second)
	_, ok, err := c.Get(ctx, "/todos", "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(time.Second)
	_, ok, err = c.Get(ctx, "/todos", "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemorySetAfterInvalidate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	c := NewMemory(time.Minute)

	gen, err := c.Generation(ctx, "/todos")
	require.NoError(t, err)
	assert.Zero(t, gen)

	// a render that loaded its data before the mutation
	require.NoError(t, c.InvalidatePath(ctx, "/todos"))

	stored, err := c.Set(ctx, "/todos", "alice", gen, []byte("stale"))
	require.NoError(t, err)
	assert.False(t, stored)

	_, ok, err := c.Get(ctx, "/todos", "alice")
	require.NoError(t, err)
	assert.False(t, ok)

	next, err := c.Generation(ctx, "/todos")
	require.NoError(t, err)
	assert.Equal(t, gen+1, next)
	mustSet(t, c, "/todos", "alice", next, []byte("fresh"))

	other, err := c.Generation(ctx, "/about")
	require.NoError(t, err)
	assert.Zero(t, other, "generations are per path")
}

func TestMemorySetSweepsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemory(time.Minute).WithClock(func() time.Time { return now })

	mustSet(t, c, "/todos", "alice", 0, []byte("a"))
	mustSet(t, c, "/todos", "bob", 0, []byte("b"))
	assert.Equal(t, 2, c.size())

	now = now.Add(2 * time.Minute)
	mustSet(t, c, "/todos", "carol", 0, []byte("c"))

	assert.Equal(t, 1, c.size(), "idle identities are evicted")
	_, ok, err := c.Get(context.Background(), "/todos", "carol")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNop(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	var c Cache = Nop{}
	stored, err := c.Set(ctx, "/todos", "alice", 0, []byte("page"))
	require.NoError(t, err)
	assert.False(t, stored)

	_, ok, err := c.Get(ctx, "/todos", "alice")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.InvalidatePath(ctx, "/todos"))

	_, err = c.Generation(ctx, "/todos")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "page:/todos:alice", key("/todos", "alice"))
	assert.Equal(t, "page:/todos:", pathPrefix("/todos"))
}
