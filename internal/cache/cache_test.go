package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTTLCacheExpires(t *testing.T) {
	c := NewTTLCache[string, int]().(*ttlCache[string, int])
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, 0)

	v, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("a")
	assert.False(t, ok)

	_, ok = c.Get("b")
	assert.True(t, ok)

	c.Delete("b")
	_, ok = c.Get("b")
	assert.False(t, ok)
}

func TestMemoryJSONCache(t *testing.T) {
	ctx := context.Background()
	c := NewJSONCache(nil)

	var out map[string]int
	hit, err := c.Get(ctx, "stats", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "stats", map[string]int{"products": 3}, time.Minute))
	hit, err = c.Get(ctx, "stats", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, out["products"])
}

func TestMemoryIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	store := NewIdempotencyStore(nil)

	token, ok, err := store.Reserve(ctx, "orders", "k1")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = store.Reserve(ctx, "orders", "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, found, err := store.Recall(ctx, "orders", "k1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, store.Remember(ctx, "orders", "k1", "123"))
	require.NoError(t, store.Release(ctx, "orders", "k1", token))

	value, found, err := store.Recall(ctx, "orders", "k1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "123", value)

	_, ok, err = store.Reserve(ctx, "orders", "k1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTTLCacheSweepsUnreadEntries(t *testing.T) {
	c := NewTTLCache[string, int]().(*ttlCache[string, int])
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Hour)
	c.Set("c", 3, 0)

	now = now.Add(2 * time.Minute)
	c.Set("d", 4, time.Minute)

	assert.Len(t, c.entries, 3)
	assert.NotContains(t, c.entries, "a")
	assert.Contains(t, c.entries, "b")
	assert.Contains(t, c.entries, "c")
}

func TestMemoryIdempotencyLockExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryIdempotencyStore().(*memoryIdempotencyStore)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	stale, ok, err := store.Reserve(ctx, "orders", "k1")
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(defaultIdempotencyTTL)
	fresh, ok, err := store.Reserve(ctx, "orders", "k1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, store.locks, 1)

	// The expired holder cannot release the new lock.
	require.NoError(t, store.Release(ctx, "orders", "k1", stale))
	_, ok, err = store.Reserve(ctx, "orders", "k1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Release(ctx, "orders", "k1", fresh))
	assert.Empty(t, store.locks)
}
