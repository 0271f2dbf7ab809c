// Package mergeplan implements the synchronous preorder trie walk §4.F
// describes: given a table's current segment set plus the live index, it
// emits one merge task per leaf path, applying iid-selector and
// bloom/min-max pushdown pruning along the way.
package mergeplan

import (
	"github.com/xtdb-labs/xtdb/internal/liveindex"
	"github.com/xtdb-labs/xtdb/internal/segment"
	"github.com/xtdb-labs/xtdb/internal/trie"
	"github.com/xtdb-labs/xtdb/internal/types"
)

// Predicate is the subset of a query's row predicate the planner can push
// down into pruning: an equality selector on the entity id. Column-value
// predicates beyond that belong to the query planner (§1 out of scope).
type Predicate struct {
	IidEq *types.Iid
}

// SegmentLeaf is one segment's contribution to a Task: the leaf node
// carrying the page index and column stats the scan cursor needs to open
// the page, or nil if this segment does not contribute at this path.
type SegmentLeaf struct {
	Data *segment.Data
	Node *trie.Node
}

// Task is one unit of scan work: every leaf, across every contributing
// segment and the live index, that shares the same trie path.
type Task struct {
	Path     trie.Path
	Segments []SegmentLeaf // parallel to the sources slice Plan was called with; zero-value Data/Node means "doesn't contribute"
	Live     *liveindex.Leaf
}

// Plan walks sources (one entry per segment in the table's current set,
// per §6) and live in lock-step, applying pushdown, and returns one Task
// per leaf path that at least one source contributes rows to.
func Plan(sources []*segment.Data, live *liveindex.Snapshot, pred Predicate) []Task {
	roots := make([]*trie.Node, len(sources))
	for i, s := range sources {
		roots[i] = s.Root
	}
	var tasks []Task
	walk(roots, sources, live, nil, segment.PathDepth, pred, &tasks)
	return tasks
}

func walk(nodes []*trie.Node, sources []*segment.Data, live *liveindex.Snapshot, path trie.Path, depth int, pred Predicate, tasks *[]Task) {
	if depth == 0 {
		if t, ok := buildTask(path, nodes, sources, live, pred); ok {
			*tasks = append(*tasks, t)
		}
		return
	}

	if pred.IidEq != nil {
		// Path-predicate pruning (§4.F): an iid-equality selector fixes
		// every remaining nibble, so only one of the four children can
		// possibly hold matching rows.
		nibble := nibbleAt(*pred.IidEq, len(path))
		children := childrenAt(nodes, nibble)
		walk(children, sources, live, path.Child(nibble), depth-1, pred, tasks)
		return
	}

	for nibble := byte(0); nibble < 4; nibble++ {
		children := childrenAt(nodes, nibble)
		walk(children, sources, live, path.Child(nibble), depth-1, pred, tasks)
	}
}

func childrenAt(nodes []*trie.Node, nibble byte) []*trie.Node {
	out := make([]*trie.Node, len(nodes))
	for i, n := range nodes {
		if n.IsNil() || n.Kind != trie.KindBranchIid {
			continue
		}
		out[i] = n.Children[nibble]
	}
	return out
}

func nibbleAt(iid types.Iid, i int) byte {
	byteIdx := i / 4
	if byteIdx >= len(iid) {
		return 0
	}
	shift := uint(6 - 2*(i%4))
	return (iid[byteIdx] >> shift) & 0x3
}

// buildTask assembles one Task from the leaf-depth node tuple, applying
// per-segment pushdown and the ceiling-completing iid-bloom union pass.
func buildTask(path trie.Path, nodes []*trie.Node, sources []*segment.Data, live *liveindex.Snapshot, pred Predicate) (Task, bool) {
	taken := make([]bool, len(nodes))
	for i, n := range nodes {
		if n.IsNil() || n.Kind != trie.KindLeaf {
			continue
		}
		taken[i] = matchesPredicate(n, sources[i], pred)
	}

	completeCeiling(nodes, sources, taken)

	t := Task{Path: append(trie.Path(nil), path...), Segments: make([]SegmentLeaf, len(nodes))}
	any := false
	for i, n := range nodes {
		if taken[i] {
			t.Segments[i] = SegmentLeaf{Data: sources[i], Node: n}
			any = true
		}
	}
	if live != nil {
		if leaf := live.LeafAt(path); leaf != nil {
			t.Live = leaf
			any = true
		}
	}
	if !any {
		return Task{}, false
	}
	return t, true
}

// matchesPredicate applies the metadata-pushdown predicate: a leaf
// contributes unless its iid column's min/max and bloom filter rule out
// every row the equality selector could match.
func matchesPredicate(n *trie.Node, data *segment.Data, pred Predicate) bool {
	if pred.IidEq == nil {
		return true
	}
	iidCol := iidColumn(n)
	if iidCol == nil {
		return true
	}
	if min, ok := iidCol.Min.(types.Iid); ok {
		if pred.IidEq.Compare(min) < 0 {
			return false
		}
	}
	if max, ok := iidCol.Max.(types.Iid); ok {
		if pred.IidEq.Compare(max) > 0 {
			return false
		}
	}
	if f := data.Blooms.Get(iidCol.BloomRef); f != nil && !f.MayContainIid(*pred.IidEq) {
		return false
	}
	return true
}

// completeCeiling implements §4.F's ceiling-completing rule: "union
// iid-blooms of taken pages across segments; if a page was not directly
// taken but its iid-bloom intersects the running union, include it".
// Because bloom filters admit no sound filter-vs-filter intersection
// operation, the union is tested against the actual iids present in the
// taken pages (which the scan is going to read in full regardless) rather
// than against another filter.
func completeCeiling(nodes []*trie.Node, sources []*segment.Data, taken []bool) {
	changed := true
	for changed {
		changed = false
		union := takenIids(nodes, sources, taken)
		if len(union) == 0 {
			return
		}
		for i, n := range nodes {
			if taken[i] || n.IsNil() || n.Kind != trie.KindLeaf {
				continue
			}
			iidCol := iidColumn(n)
			if iidCol == nil {
				continue
			}
			f := sources[i].Blooms.Get(iidCol.BloomRef)
			if f == nil {
				continue
			}
			for iid := range union {
				if f.MayContainIid(iid) {
					taken[i] = true
					changed = true
					break
				}
			}
		}
	}
}

func takenIids(nodes []*trie.Node, sources []*segment.Data, taken []bool) map[types.Iid]struct{} {
	out := make(map[types.Iid]struct{})
	for i, n := range nodes {
		if !taken[i] || n.IsNil() || n.Kind != trie.KindLeaf {
			continue
		}
		page := sources[i].PageAt(n.DataPageIdx)
		if page == nil {
			continue
		}
		for r := 0; r < page.NumRows(); r++ {
			out[page.Iid(r)] = struct{}{}
		}
	}
	return out
}

// iidColumn returns a leaf's iid column stats. internal/segment's writer
// always places the iid column first (see writer.go's leafColumns).
func iidColumn(n *trie.Node) *trie.LeafColumn {
	if len(n.Columns) == 0 {
		return nil
	}
	return &n.Columns[0]
}
