package segment

import (
	"github.com/xtdb-labs/xtdb/internal/bloom"
	"github.com/xtdb-labs/xtdb/internal/types"
)

// ColumnStats is the per-page, per-column statistics §4.B's meta file
// carries: min, max, and a bloom filter. The iid column's own Bloom is the
// page's iid-bloom: mergeplan's pushdown and ceiling-completing union (4.F)
// always read it off column 0 (see iidColumn in internal/mergeplan), so no
// other column needs a duplicate iid-keyed bloom under its own entry.
type ColumnStats struct {
	Name     string
	RootCol  bool
	Count    int
	Min, Max types.Value
	Bloom    *bloom.Filter
}

// BuildColumnStats computes ColumnStats for one document column over a
// page's events.
func BuildColumnStats(name string, rootCol bool, events []types.Event) ColumnStats {
	stats := ColumnStats{Name: name, RootCol: rootCol, Count: len(events)}
	b := bloom.New(len(events))
	var haveBound bool
	for _, e := range events {
		v, ok := e.Doc[name]
		if !ok || v == nil {
			continue
		}
		b.AddBytes(valueBytes(v))
		if !haveBound {
			stats.Min, stats.Max = v, v
			haveBound = true
			continue
		}
		if lessValue(v, stats.Min) {
			stats.Min = v
		}
		if lessValue(stats.Max, v) {
			stats.Max = v
		}
	}
	stats.Bloom = b
	return stats
}

// BuildIidStats computes the iid column's stats, whose Bloom doubles as the
// page's iid-bloom.
func BuildIidStats(events []types.Event) ColumnStats {
	stats := ColumnStats{Name: ColIid, RootCol: true, Count: len(events)}
	b := bloom.New(len(events))
	for i, e := range events {
		b.AddIid(e.Iid)
		if i == 0 {
			stats.Min, stats.Max = e.Iid, e.Iid
			continue
		}
		if e.Iid.Compare(stats.Min.(types.Iid)) < 0 {
			stats.Min = e.Iid
		}
		if e.Iid.Compare(stats.Max.(types.Iid)) > 0 {
			stats.Max = e.Iid
		}
	}
	stats.Bloom = b
	return stats
}

func valueBytes(v types.Value) []byte {
	switch x := v.(type) {
	case string:
		return []byte(x)
	case []byte:
		return x
	default:
		return []byte(toComparableString(v))
	}
}

// lessValue and toComparableString give the storage core just enough value
// comparison to maintain min/max stats without taking on the query
// planner's full type-unification responsibility (§1 out of scope).
func lessValue(a, b types.Value) bool {
	af, aok := numeric(a)
	bf, bok := numeric(b)
	if aok && bok {
		return af < bf
	}
	return toComparableString(a) < toComparableString(b)
}

func numeric(v types.Value) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toComparableString(v types.Value) string {
	switch s := v.(type) {
	case string:
		return s
	default:
		return ""
	}
}
