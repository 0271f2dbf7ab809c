package trie

// NodeKind discriminates the dense-union trie node variants from §4.B:
// {nil, branch-iid[4], branch-recency{ts -> child}, leaf{data_page_idx,
// columns[]}}.
type NodeKind uint8

const (
	KindNil NodeKind = iota
	KindBranchIid
	KindBranchRecency
	KindLeaf
)

// LeafColumn carries the per-column statistics §4.B attaches to a leaf: min,
// max, and a bloom filter. The iid column's own bloom (always column 0,
// see internal/mergeplan's iidColumn) doubles as the page's iid-bloom that
// pushdown and the ceiling-completing union consult; other columns, such as
// system_from, carry an ordinary bloom over their own values and nothing
// more. The bloom filter itself lives in internal/bloom; this type stores
// only the reference to keep the trie package free of the bloom filter's
// own dependency footprint when it isn't needed (e.g. during a plain
// preorder walk with no pushdown).
type LeafColumn struct {
	Name     string
	RootCol  bool
	Count    int
	Min, Max any
	BloomRef BloomID // opaque handle resolved by the segment/bloom packages
}

// BloomID is an index into a segment's bloom filter table, avoiding a direct
// import cycle between trie and bloom.
type BloomID int

// RecencyChild pairs an upper recency bound with the child it routes to, for
// a branch-recency node (§4.H: "future compactions use [recency] to split
// 'still live' vs 'superseded' rows").
type RecencyChild struct {
	UpperBound int64 // microseconds, inclusive ceiling for this child
	Child      *Node
}

// Node is the dense-union trie node. Exactly one of the Kind-specific fields
// is meaningful per Kind.
type Node struct {
	Kind NodeKind

	// KindBranchIid
	Children [4]*Node

	// KindBranchRecency
	RecencyChildren []RecencyChild

	// KindLeaf
	DataPageIdx int
	Columns     []LeafColumn
}

// NewLeaf constructs a leaf node pointing at a data page.
func NewLeaf(dataPageIdx int, columns []LeafColumn) *Node {
	return &Node{Kind: KindLeaf, DataPageIdx: dataPageIdx, Columns: columns}
}

// NewBranchIid constructs a 4-way iid branch.
func NewBranchIid(children [4]*Node) *Node {
	return &Node{Kind: KindBranchIid, Children: children}
}

// IsNil reports whether n represents the nil variant (including a literal
// nil *Node, which the merge planner treats identically).
func (n *Node) IsNil() bool {
	return n == nil || n.Kind == KindNil
}

// Walk invokes visit for n and, for branch nodes, recursively for every
// non-nil child, depth-first, extending path by the child's nibble. It is
// the "synchronous preorder walk" primitive §4.F performs in lock-step
// across multiple tries; single-trie callers (e.g. a standalone segment
// dump) can use it directly.
func Walk(n *Node, path Path, visit func(Path, *Node) bool) {
	if n.IsNil() {
		return
	}
	if !visit(path, n) {
		return
	}
	switch n.Kind {
	case KindBranchIid:
		for i, c := range n.Children {
			if !c.IsNil() {
				Walk(c, path.Child(byte(i)), visit)
			}
		}
	case KindBranchRecency:
		for _, rc := range n.RecencyChildren {
			if !rc.Child.IsNil() {
				Walk(rc.Child, path, visit)
			}
		}
	}
}
