// Package polygon implements the bitemporal polygon engine (§4.D): it
// reconstructs per-put (valid_from, valid_to, system_from, system_to)
// rectangles from a stream of events ordered (iid asc, system_from desc).
package polygon

import (
	"sort"

	"github.com/xtdb-labs/xtdb/internal/types"
)

// Segment is one slice of a Stamp call's result: the sub-range [VF, VT) and
// the system-time it was already superseded at (SysTo), or
// types.MaxMicros if nothing superseded it yet.
type Segment struct {
	VF, VT types.Micros
	SysTo  types.Micros
}

type interval struct {
	from, to types.Micros
	value    types.Micros
}

// Ceiling is the piecewise-constant valid-time -> most-recent-system_from
// map §4.D describes. The zero value is an empty ceiling.
type Ceiling struct {
	intervals []interval
}

// Reset clears the ceiling, as happens whenever the current iid changes or
// an erase is observed.
func (c *Ceiling) Reset() {
	c.intervals = c.intervals[:0]
}

// Stamp restricts [vf, vt) against the current ceiling, returning one
// Segment per partition, then fills every still-uncovered sub-range of
// [vf, vt) with sysFrom ("apply the log: set ceiling on [valid_from,
// valid_to] to system_from, covering previous higher values" — higher
// values are never overwritten because Stamp only ever fills gaps).
func (c *Ceiling) Stamp(vf, vt, sysFrom types.Micros) []Segment {
	if vf >= vt {
		return nil
	}
	var segs []Segment
	var fresh []interval

	cur := vf
	i := sort.Search(len(c.intervals), func(i int) bool { return c.intervals[i].to > vf })

	for cur < vt {
		if i >= len(c.intervals) || c.intervals[i].from >= vt {
			segs = append(segs, Segment{VF: cur, VT: vt, SysTo: types.MaxMicros})
			fresh = append(fresh, interval{from: cur, to: vt, value: sysFrom})
			cur = vt
			break
		}

		iv := c.intervals[i]
		if iv.from > cur {
			gapEnd := iv.from
			segs = append(segs, Segment{VF: cur, VT: gapEnd, SysTo: types.MaxMicros})
			fresh = append(fresh, interval{from: cur, to: gapEnd, value: sysFrom})
			cur = gapEnd
			continue
		}

		segEnd := iv.to
		if vt < segEnd {
			segEnd = vt
		}
		segs = append(segs, Segment{VF: cur, VT: segEnd, SysTo: iv.value})
		cur = segEnd
		if iv.to <= cur {
			i++
		}
	}

	if len(fresh) > 0 {
		c.insert(fresh)
	}
	return segs
}

// insert merges newly-filled intervals into the ceiling, keeping it sorted
// and coalescing adjacent runs with equal values so the interval count
// stays proportional to the number of distinct supersession boundaries
// rather than the number of events processed.
func (c *Ceiling) insert(fresh []interval) {
	c.intervals = append(c.intervals, fresh...)
	sort.Slice(c.intervals, func(i, j int) bool { return c.intervals[i].from < c.intervals[j].from })

	merged := c.intervals[:0:0]
	for _, iv := range c.intervals {
		if n := len(merged); n > 0 && merged[n-1].to == iv.from && merged[n-1].value == iv.value {
			merged[n-1].to = iv.to
			continue
		}
		merged = append(merged, iv)
	}
	c.intervals = merged
}
