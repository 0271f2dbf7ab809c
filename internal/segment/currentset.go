package segment

import "sort"

// Meta is the subset of segment identity current-set resolution needs: its
// name (for level/next_row) plus whatever the caller wants to carry along
// (trie root, opened reader, etc.) via the generic Payload field.
type Meta struct {
	Name    Name
	Payload any
}

// CurrentSet implements §6's "current" set algorithm: group all meta files
// by level; take the one with the largest next_row at each level; drop any
// whose next_row is covered by a higher level's next_row.
//
// "Covered" means a higher level's segment spans at least as many events:
// a higher-level next_row that is >= a lower level's next_row means the
// higher-level segment was produced by compacting (at least) everything the
// lower-level one holds, so the lower-level one is stale.
func CurrentSet(metas []Meta) []Meta {
	bestByLevel := make(map[int]Meta)
	for _, m := range metas {
		cur, ok := bestByLevel[m.Name.Level]
		if !ok || m.Name.NextRow > cur.Name.NextRow {
			bestByLevel[m.Name.Level] = m
		}
	}

	levels := make([]int, 0, len(bestByLevel))
	for lvl := range bestByLevel {
		levels = append(levels, lvl)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(levels)))

	var out []Meta
	maxNextRowSeen := int64(-1)
	for _, lvl := range levels {
		m := bestByLevel[lvl]
		if m.Name.NextRow <= maxNextRowSeen {
			continue // covered by a higher level already kept
		}
		out = append(out, m)
		if m.Name.NextRow > maxNextRowSeen {
			maxNextRowSeen = m.Name.NextRow
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name.Level < out[j].Name.Level })
	return out
}
