package mergeplan_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtdb-labs/xtdb/internal/liveindex"
	"github.com/xtdb-labs/xtdb/internal/mergeplan"
	"github.com/xtdb-labs/xtdb/internal/segment"
	"github.com/xtdb-labs/xtdb/internal/trie"
	"github.com/xtdb-labs/xtdb/internal/types"
)

func pathOf(iid types.Iid, depth int) trie.Path {
	p := make(trie.Path, depth)
	for i := range p {
		byteIdx := i / 4
		shift := uint(6 - 2*(i%4))
		p[i] = (iid[byteIdx] >> shift) & 0x3
	}
	return p
}

func TestPlanEmitsOneTaskPerContributingPath(t *testing.T) {
	iidA := types.Iid{0x10}
	iidB := types.Iid{0xF0}

	data := segment.BuildData([]segment.LeafGroup{
		{Path: pathOf(iidA, segment.PathDepth), Events: []types.Event{
			{Iid: iidA, SystemFrom: 1, Op: types.OpPut, ValidFrom: 0, ValidTo: types.MaxMicros},
		}},
		{Path: pathOf(iidB, segment.PathDepth), Events: []types.Event{
			{Iid: iidB, SystemFrom: 1, Op: types.OpPut, ValidFrom: 0, ValidTo: types.MaxMicros},
		}},
	})

	tasks := mergeplan.Plan([]*segment.Data{data}, nil, mergeplan.Predicate{})
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		require.NotNil(t, task.Segments[0].Node)
	}
}

func TestPlanIidPredicatePrunesNonMatchingPath(t *testing.T) {
	iidA := types.Iid{0x10}
	iidB := types.Iid{0xF0}
	data := segment.BuildData([]segment.LeafGroup{
		{Path: pathOf(iidA, segment.PathDepth), Events: []types.Event{
			{Iid: iidA, SystemFrom: 1, Op: types.OpPut, ValidFrom: 0, ValidTo: types.MaxMicros},
		}},
		{Path: pathOf(iidB, segment.PathDepth), Events: []types.Event{
			{Iid: iidB, SystemFrom: 1, Op: types.OpPut, ValidFrom: 0, ValidTo: types.MaxMicros},
		}},
	})

	tasks := mergeplan.Plan([]*segment.Data{data}, nil, mergeplan.Predicate{IidEq: &iidA})
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Path.Equal(pathOf(iidA, segment.PathDepth)))
}

func TestPlanIncludesLiveLeaf(t *testing.T) {
	ix := liveindex.New()
	iid := types.Iid{0x55}
	ix.Append(types.Event{Iid: iid, SystemFrom: 1, Op: types.OpPut, ValidFrom: 0, ValidTo: types.MaxMicros})
	snap := ix.Snapshot()

	tasks := mergeplan.Plan(nil, snap, mergeplan.Predicate{})
	require.Len(t, tasks, 1)
	assert.NotNil(t, tasks[0].Live)
}

func TestPlanIidPredicateKeepsWholeMatchingPage(t *testing.T) {
	iid := types.Iid{0x33}
	path := pathOf(iid, segment.PathDepth)

	// Both iids share one page, and the predicate matches that page
	// directly: the page is kept as a whole, including the row for the
	// second, disjoint iid, because pruning operates per leaf/page, not per
	// row.
	other := types.Iid{0x34}
	data := segment.BuildData([]segment.LeafGroup{
		{Path: path, Events: []types.Event{
			{Iid: iid, SystemFrom: 2, Op: types.OpPut, ValidFrom: 0, ValidTo: types.MaxMicros},
			{Iid: other, SystemFrom: 1, Op: types.OpPut, ValidFrom: 0, ValidTo: types.MaxMicros},
		}},
	})

	tasks := mergeplan.Plan([]*segment.Data{data}, nil, mergeplan.Predicate{IidEq: &iid})
	require.Len(t, tasks, 1)
	require.NotNil(t, tasks[0].Segments[0].Node)
}
