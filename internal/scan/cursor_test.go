package scan_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xtdb-labs/xtdb/internal/mergeplan"
	"github.com/xtdb-labs/xtdb/internal/scan"
	"github.com/xtdb-labs/xtdb/internal/segment"
	"github.com/xtdb-labs/xtdb/internal/temporal"
	"github.com/xtdb-labs/xtdb/internal/trie"
	"github.com/xtdb-labs/xtdb/internal/types"
)

func TestCursorEmitsSupersededAndOpenRows(t *testing.T) {
	iid := types.Iid{0x7}
	path := trie.Path{0, 1}

	data := segment.BuildData([]segment.LeafGroup{{Path: path, Events: []types.Event{
		{Iid: iid, SystemFrom: 200, Op: types.OpPut, ValidFrom: 0, ValidTo: 100, Doc: types.Doc{"v": int64(2)}},
		{Iid: iid, SystemFrom: 100, Op: types.OpPut, ValidFrom: 0, ValidTo: 100, Doc: types.Doc{"v": int64(1)}},
	}}})

	cur := scan.Open(scan.Config{
		Sources:   []*segment.Data{data},
		Rectangle: temporal.Rectangle{SystemFromLo: 0, SystemFromHi: types.MaxMicros, ValidFromLo: 0, ValidFromHi: types.MaxMicros},
	})
	defer cur.Close()

	var all []scan.Row
	for {
		rows, ok, err := cur.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		all = append(all, rows...)
	}

	require.Len(t, all, 2)
	byV := map[int64]scan.Row{}
	for _, r := range all {
		byV[r["v"].(int64)] = r
	}
	assert.Equal(t, types.Micros(200), byV[2][scan.ColSystemFrom])
	assert.Equal(t, types.MaxMicros, byV[2][scan.ColSystemTo])
	assert.Equal(t, types.Micros(100), byV[1][scan.ColSystemFrom])
	assert.Equal(t, types.Micros(200), byV[1][scan.ColSystemTo])
}

func TestCursorIidPredicateNarrowsScan(t *testing.T) {
	iidA := types.Iid{0x10}
	iidB := types.Iid{0xF0}
	pathA := trie.Path{0, 1}
	pathB := trie.Path{3, 2}

	data := segment.BuildData([]segment.LeafGroup{
		{Path: pathA, Events: []types.Event{{Iid: iidA, SystemFrom: 1, Op: types.OpPut, ValidFrom: 0, ValidTo: types.MaxMicros, Doc: types.Doc{"who": "a"}}}},
		{Path: pathB, Events: []types.Event{{Iid: iidB, SystemFrom: 1, Op: types.OpPut, ValidFrom: 0, ValidTo: types.MaxMicros, Doc: types.Doc{"who": "b"}}}},
	})

	cur := scan.Open(scan.Config{
		Sources:   []*segment.Data{data},
		Predicate: mergeplan.Predicate{IidEq: &iidA},
		Rectangle: temporal.Rectangle{SystemFromLo: 0, SystemFromHi: types.MaxMicros, ValidFromLo: 0, ValidFromHi: types.MaxMicros},
	})
	defer cur.Close()

	var all []scan.Row
	for {
		rows, ok, err := cur.Next(context.Background())
		require.NoError(t, err)
		if !ok {
			break
		}
		all = append(all, rows...)
	}
	require.Len(t, all, 1)
	assert.Equal(t, "a", all[0]["who"])
}

func TestCursorNextAfterCloseErrors(t *testing.T) {
	cur := scan.Open(scan.Config{})
	cur.Close()
	_, _, err := cur.Next(context.Background())
	assert.Error(t, err)
}
