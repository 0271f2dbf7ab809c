package segment

import (
	"github.com/xtdb-labs/xtdb/internal/bloom"
	"github.com/xtdb-labs/xtdb/internal/trie"
	"github.com/xtdb-labs/xtdb/internal/types"
)

// RecencyEvent pairs a copied row with the sys_to the polygon engine
// resolved for it, the value internal/compact attaches to every row it
// copies across segment boundaries (§4.H).
type RecencyEvent struct {
	types.Event
	Recency types.Micros
}

// RecencyLeafGroup is BuildCompactedData's input: one output leaf's worth
// of recency-annotated rows, already merged into (iid asc, system_from
// desc) order by the compactor's merge queue.
type RecencyLeafGroup struct {
	Path   trie.Path
	Events []RecencyEvent
}

// BuildCompactedData is BuildData's compaction counterpart: every page
// additionally carries a _recency column, letting a future compaction
// split "still live" vs "superseded" rows into a branch-recency trie node
// without re-deriving system_to from scratch (§4.H).
func BuildCompactedData(groups []RecencyLeafGroup) *Data {
	plain := make([]LeafGroup, len(groups))
	for i, g := range groups {
		events := make([]types.Event, len(g.Events))
		for j, re := range g.Events {
			events[j] = re.Event
		}
		plain[i] = LeafGroup{Path: g.Path, Events: events}
	}
	docCols, docType := unionSchema(plain)
	d := &Data{Blooms: &BloomTable{}}

	byPath := make(map[string]*trie.Node, len(groups))
	for i, g := range groups {
		if len(g.Events) == 0 {
			continue
		}
		page := buildRecencyPage(docCols, docType, g.Events)
		pageIdx := len(d.Pages)
		d.Pages = append(d.Pages, page)

		columns := leafColumns(d.Blooms, docCols, plain[i].Events)
		columns = append(columns, toLeafColumn(d.Blooms, buildRecencyStats(g.Events)))
		byPath[string(g.Path)] = trie.NewLeaf(pageIdx, columns)
	}

	d.Root = buildBranch(byPath, nil, PathDepth)
	return d
}

func buildRecencyPage(docCols []string, docType map[string]DocColumnType, events []RecencyEvent) *Page {
	b := NewBuilderWithRecency(docCols, docType)
	for _, e := range events {
		_ = b.AppendWithRecency(e.Event, e.Recency) // schema is derived from these same events; cannot fail
	}
	return NewPage(b.NewRecord())
}

func buildRecencyStats(events []RecencyEvent) ColumnStats {
	stats := ColumnStats{Name: ColRecency, RootCol: true, Count: len(events)}
	b := bloom.New(len(events))
	for i, e := range events {
		b.AddBytes(microsBytes(e.Recency))
		if i == 0 {
			stats.Min, stats.Max = e.Recency, e.Recency
			continue
		}
		if e.Recency < stats.Min.(types.Micros) {
			stats.Min = e.Recency
		}
		if e.Recency > stats.Max.(types.Micros) {
			stats.Max = e.Recency
		}
	}
	stats.Bloom = b
	return stats
}
