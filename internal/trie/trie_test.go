package trie_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xtdb-labs/xtdb/internal/trie"
	"github.com/xtdb-labs/xtdb/internal/types"
)

func TestPathChildAppendsNibbleMaskedToTwoBits(t *testing.T) {
	p := trie.Path{1, 2}
	child := p.Child(0xff) // only the low 2 bits should survive
	assert.Equal(t, trie.Path{1, 2, 3}, child)
	assert.Equal(t, trie.Path{1, 2}, p, "Child must not mutate the receiver")
}

func TestPathEqual(t *testing.T) {
	assert.True(t, trie.Path{1, 2}.Equal(trie.Path{1, 2}))
	assert.False(t, trie.Path{1, 2}.Equal(trie.Path{1, 3}))
	assert.False(t, trie.Path{1, 2}.Equal(trie.Path{1}))
}

func TestOnPathMatchesLeadingNibbles(t *testing.T) {
	var iid types.Iid
	iid[0] = 0b01_10_00_00 // nibbles 1, 2, 0, 0...

	assert.True(t, trie.OnPath(iid, trie.Path{1}))
	assert.True(t, trie.OnPath(iid, trie.Path{1, 2}))
	assert.False(t, trie.OnPath(iid, trie.Path{1, 3}))
	assert.False(t, trie.OnPath(iid, trie.Path{2}))
}

func TestWalkVisitsBranchThenLeavesPreorder(t *testing.T) {
	leaf0 := trie.NewLeaf(0, nil)
	leaf1 := trie.NewLeaf(1, nil)
	root := trie.NewBranchIid([4]*trie.Node{leaf0, leaf1, nil, nil})

	var visited []trie.Path
	trie.Walk(root, nil, func(p trie.Path, n *trie.Node) bool {
		visited = append(visited, p)
		return true
	})

	assert.Equal(t, []trie.Path{nil, {0}, {1}}, visited)
}

func TestWalkStopsDescendingWhenVisitReturnsFalse(t *testing.T) {
	leaf0 := trie.NewLeaf(0, nil)
	root := trie.NewBranchIid([4]*trie.Node{leaf0, nil, nil, nil})

	var visited []trie.Path
	trie.Walk(root, nil, func(p trie.Path, n *trie.Node) bool {
		visited = append(visited, p)
		return false
	})

	assert.Equal(t, []trie.Path{nil}, visited, "visit returning false must stop the walk at the root")
}

func TestIsNilTreatsLiteralNilAndKindNilTheSame(t *testing.T) {
	assert.True(t, (*trie.Node)(nil).IsNil())
	assert.True(t, (&trie.Node{Kind: trie.KindNil}).IsNil())
	assert.False(t, trie.NewLeaf(0, nil).IsNil())
}
