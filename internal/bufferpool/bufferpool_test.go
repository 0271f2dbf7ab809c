package bufferpool_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtdb-labs/xtdb/internal/bufferpool"
	"github.com/xtdb-labs/xtdb/internal/objectstore"
)

func TestFetchMissReadsThroughAndHitsOnSecondCall(t *testing.T) {
	store := objectstore.NewMemory()
	require.NoError(t, store.Write(context.Background(), "log-l00-fr0-nr1.data", []byte("hello world")))

	pool, err := bufferpool.New(store, 4)
	require.NoError(t, err)

	key := bufferpool.PageKey{Path: "log-l00-fr0-nr1.data", Offset: 0, Length: 5}
	data, err := pool.Fetch(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, int64(1), pool.StatsSnapshot().Misses)

	_, err = pool.Fetch(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pool.StatsSnapshot().Hits)
	assert.Equal(t, int64(1), pool.StatsSnapshot().Misses)
}

func TestFetchOnUnknownPathReturnsStorageError(t *testing.T) {
	store := objectstore.NewMemory()
	pool, err := bufferpool.New(store, 4)
	require.NoError(t, err)

	_, err = pool.Fetch(context.Background(), bufferpool.PageKey{Path: "missing.data", Length: -1})
	require.Error(t, err)
}

func TestPinnedPageSurvivesEvictionPressure(t *testing.T) {
	store := objectstore.NewMemory()
	for i := 0; i < 4; i++ {
		require.NoError(t, store.Write(context.Background(), pageName(i), []byte("page-data")))
	}

	pool, err := bufferpool.New(store, 2)
	require.NoError(t, err)

	pinnedKey := bufferpool.PageKey{Path: pageName(0), Length: -1}
	_, err = pool.Fetch(context.Background(), pinnedKey)
	require.NoError(t, err)
	pool.Pin(pinnedKey)
	assert.True(t, pool.Pinned(pinnedKey))

	for i := 1; i < 4; i++ {
		_, err := pool.Fetch(context.Background(), bufferpool.PageKey{Path: pageName(i), Length: -1})
		require.NoError(t, err)
	}

	// The pinned page must still be served as a hit, with no read-through,
	// even though the pool's capacity (2) was exceeded by the other fetches.
	before := pool.StatsSnapshot()
	data, err := pool.Fetch(context.Background(), pinnedKey)
	require.NoError(t, err)
	assert.Equal(t, "page-data", string(data))
	after := pool.StatsSnapshot()
	assert.Equal(t, before.Misses, after.Misses)
	assert.Greater(t, after.Hits, before.Hits)
}

func TestUnpinReturnsPageToOrdinaryEviction(t *testing.T) {
	store := objectstore.NewMemory()
	require.NoError(t, store.Write(context.Background(), pageName(0), []byte("page-data")))

	pool, err := bufferpool.New(store, 2)
	require.NoError(t, err)

	key := bufferpool.PageKey{Path: pageName(0), Length: -1}
	pool.Pin(key)
	_, err = pool.Fetch(context.Background(), key)
	require.NoError(t, err)
	require.True(t, pool.Pinned(key))

	pool.Unpin(key)
	assert.False(t, pool.Pinned(key))
}

func pageName(i int) string {
	return string(rune('a'+i)) + ".data"
}
