package segment

import (
	"sort"

	"github.com/xtdb-labs/xtdb/internal/bloom"
	"github.com/xtdb-labs/xtdb/internal/trie"
	"github.com/xtdb-labs/xtdb/internal/types"
)

// LeafGroup is one trie leaf's worth of events, already sorted (iid asc,
// system_from desc), addressed by its fixed-depth nibble path. It is
// BuildData's input; BuildCompactedData derives the same groups from its
// recency-annotated input, matching §4.C's "a live-trie leaf is
// indistinguishable from an on-disk leaf apart from its source tag" once
// materialized.
type LeafGroup struct {
	Path   trie.Path
	Events []types.Event
}

// PathDepth is the fixed number of nibbles (branch-iid levels) every
// segment this core writes routes leaves by, matching
// internal/liveindex's default routing depth so a flushed L0 segment's
// trie shape lines up with the live index it replaces.
const PathDepth = 2

// BuildData assembles a segment's trie, bloom table, and data pages from a
// set of leaf groups. Every group's events must already be in (iid asc,
// system_from desc) order; BuildData does not sort them. A live-index
// Leaf's Row/Event accessors and the compactor's merge queue both yield
// rows in that order; a Leaf's Events() does not.
func BuildData(groups []LeafGroup) *Data {
	docCols, docType := unionSchema(groups)
	d := &Data{Blooms: &BloomTable{}}

	byPath := make(map[string]*trie.Node, len(groups))
	for _, g := range groups {
		if len(g.Events) == 0 {
			continue
		}
		page := buildPage(docCols, docType, g.Events)
		pageIdx := len(d.Pages)
		d.Pages = append(d.Pages, page)

		columns := leafColumns(d.Blooms, docCols, g.Events)
		byPath[string(g.Path)] = trie.NewLeaf(pageIdx, columns)
	}

	d.Root = buildBranch(byPath, nil, PathDepth)
	return d
}

// buildBranch recurses down to depth PathDepth, producing a full 4-ary
// branch-iid tree whose leaves are whatever byPath holds at that path (nil
// where no group exists, matching the dense-union "nil" variant).
func buildBranch(byPath map[string]*trie.Node, path trie.Path, depth int) *trie.Node {
	if depth == 0 {
		return byPath[string(path)]
	}
	var children [4]*trie.Node
	hasChild := false
	for nibble := byte(0); nibble < 4; nibble++ {
		child := buildBranch(byPath, path.Child(nibble), depth-1)
		children[nibble] = child
		if !child.IsNil() {
			hasChild = true
		}
	}
	if !hasChild {
		return nil
	}
	return trie.NewBranchIid(children)
}

func buildPage(docCols []string, docType map[string]DocColumnType, events []types.Event) *Page {
	b := NewBuilder(docCols, docType)
	for _, e := range events {
		_ = b.Append(e) // schema is derived from these same events; cannot fail
	}
	return NewPage(b.NewRecord())
}

func leafColumns(blooms *BloomTable, docCols []string, events []types.Event) []trie.LeafColumn {
	cols := make([]trie.LeafColumn, 0, 5+len(docCols))

	iidStats := BuildIidStats(events)
	cols = append(cols, toLeafColumn(blooms, iidStats))

	cols = append(cols, toLeafColumn(blooms, buildSystemFromStats(events)))

	for _, name := range docCols {
		cols = append(cols, toLeafColumn(blooms, BuildColumnStats(name, false, events)))
	}
	return cols
}

func toLeafColumn(blooms *BloomTable, s ColumnStats) trie.LeafColumn {
	return trie.LeafColumn{
		Name:     s.Name,
		RootCol:  s.RootCol,
		Count:    s.Count,
		Min:      s.Min,
		Max:      s.Max,
		BloomRef: blooms.Add(s.Bloom),
	}
}

// buildSystemFromStats computes the system_from column's min/max and an
// ordinary bloom over its own timestamp bytes. Column 0 (the iid column,
// see BuildIidStats) already carries the page's iid-bloom that mergeplan's
// pushdown and ceiling-completing union consult, so this bloom is keyed by
// system_from value, not by iid.
func buildSystemFromStats(events []types.Event) ColumnStats {
	stats := ColumnStats{Name: ColSystemFrom, RootCol: true, Count: len(events)}
	b := bloom.New(len(events))
	for i, e := range events {
		b.AddBytes(microsBytes(e.SystemFrom))
		if i == 0 {
			stats.Min, stats.Max = e.SystemFrom, e.SystemFrom
			continue
		}
		if e.SystemFrom < stats.Min.(types.Micros) {
			stats.Min = e.SystemFrom
		}
		if e.SystemFrom > stats.Max.(types.Micros) {
			stats.Max = e.SystemFrom
		}
	}
	stats.Bloom = b
	return stats
}

func microsBytes(m types.Micros) []byte {
	v := uint64(m)
	out := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		out[i] = byte(v)
		v >>= 8
	}
	return out
}

// unionSchema determines the stable document-column order and inferred
// type every page in the segment shares, so pages can be compared and
// compacted without a per-page schema reconciliation step.
func unionSchema(groups []LeafGroup) ([]string, map[string]DocColumnType) {
	docType := make(map[string]DocColumnType)
	seen := make(map[string]bool)
	var docCols []string
	for _, g := range groups {
		for _, e := range g.Events {
			for name, v := range e.Doc {
				if seen[name] {
					continue
				}
				seen[name] = true
				docCols = append(docCols, name)
				docType[name] = inferDocType(v)
			}
		}
	}
	sort.Strings(docCols)
	return docCols, docType
}
