package liveindex_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtdb-labs/xtdb/internal/liveindex"
	"github.com/xtdb-labs/xtdb/internal/trie"
	"github.com/xtdb-labs/xtdb/internal/types"
)

func put(iid types.Iid, sysFrom types.Micros) types.Event {
	return types.Event{Iid: iid, SystemFrom: sysFrom, Op: types.OpPut, ValidFrom: 0, ValidTo: types.MaxMicros, Doc: types.Doc{"n": sysFrom}}
}

func TestSnapshotIsUnaffectedByLaterAppendToSamePath(t *testing.T) {
	ix := liveindex.New()
	path := trie.Path{0, 0}
	ix.AppendAt(path, put(types.Iid{1}, 100))

	snap := ix.Snapshot()
	leafBefore := snap.LeafAt(path)
	require.NotNil(t, leafBefore)
	require.Equal(t, 1, leafBefore.RowCount())

	ix.AppendAt(path, put(types.Iid{2}, 200))

	// The leaf the earlier snapshot already holds a pointer to must not
	// have grown: a reader pinning that snapshot should see exactly what
	// existed when Snapshot was called, regardless of appends that land
	// after it.
	assert.Equal(t, 1, leafBefore.RowCount())

	freshSnap := ix.Snapshot()
	leafAfter := freshSnap.LeafAt(path)
	require.NotNil(t, leafAfter)
	assert.Equal(t, 2, leafAfter.RowCount())
}

func TestSortedOrderOfOldSnapshotLeafIsStableAcrossLaterAppends(t *testing.T) {
	ix := liveindex.New()
	path := trie.Path{0, 0}
	ix.AppendAt(path, put(types.Iid{1}, 100))

	snap := ix.Snapshot()
	leaf := snap.LeafAt(path)
	order := leaf.SortedOrder()

	ix.AppendAt(path, put(types.Iid{2}, 200))

	assert.Equal(t, order, leaf.SortedOrder(), "a leaf captured by an earlier snapshot must not observe a later append")
}

func TestAppendRoutesByLeadingNibbles(t *testing.T) {
	ix := liveindex.New()
	ix.Append(put(types.Iid{0x40}, 1)) // top two bits of byte 0 are 01 -> first nibble 1

	snap := ix.Snapshot()
	assert.Equal(t, 1, snap.Count())
	require.Len(t, snap.Leaves(), 1)
}

func TestFlushResetsIndexAndReturnsLeaves(t *testing.T) {
	ix := liveindex.New()
	ix.AppendAt(trie.Path{0, 0}, put(types.Iid{1}, 100))
	ix.AppendAt(trie.Path{1, 0}, put(types.Iid{2}, 200))

	leaves := ix.Flush()
	assert.Len(t, leaves, 2)

	snap := ix.Snapshot()
	assert.Equal(t, 0, snap.Count())
	assert.Empty(t, snap.Leaves())
}
