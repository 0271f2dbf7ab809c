package segment

import "github.com/google/btree"

// Registry keeps every known meta file for one table ordered by (level,
// next_row), the structure §6's current-set resolution needs ("group by
// level, take the largest next_row"). Grounded on
// fenghaojiang-erigon-lib/state/domain_committed.go's use of
// github.com/google/btree for its own commitment tree.
type Registry struct {
	tree *btree.BTreeG[Meta]
}

func byLevelThenNextRow(a, b Meta) bool {
	if a.Name.Level != b.Name.Level {
		return a.Name.Level < b.Name.Level
	}
	return a.Name.NextRow < b.Name.NextRow
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tree: btree.NewG(32, byLevelThenNextRow)}
}

// Add registers a meta file, replacing any existing entry with the same
// (level, next_row).
func (r *Registry) Add(m Meta) {
	r.tree.ReplaceOrInsert(m)
}

// Remove drops a meta file from the registry. internal/compact's CompactAll
// calls it for each input as soon as the covering output has been written;
// it does not consult any watermark or track in-flight readers.
func (r *Registry) Remove(m Meta) {
	r.tree.Delete(m)
}

// All returns every registered meta file, ordered by (level, next_row).
func (r *Registry) All() []Meta {
	out := make([]Meta, 0, r.tree.Len())
	r.tree.Ascend(func(m Meta) bool {
		out = append(out, m)
		return true
	})
	return out
}

// Current returns the table's current segment set per §6.
func (r *Registry) Current() []Meta {
	return CurrentSet(r.All())
}

// Level returns every meta file at a given level, ascending by next_row —
// what the compactor's selection step (§4.H) groups into fan-in batches.
func (r *Registry) Level(level int) []Meta {
	var out []Meta
	r.tree.AscendRange(
		Meta{Name: Name{Level: level, NextRow: -1}},
		Meta{Name: Name{Level: level + 1, NextRow: -1}},
		func(m Meta) bool {
			out = append(out, m)
			return true
		},
	)
	return out
}
