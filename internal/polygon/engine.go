package polygon

import "github.com/xtdb-labs/xtdb/internal/types"

// Rectangle is a put's fully-resolved bitemporal output row.
type Rectangle struct {
	Iid                  types.Iid
	ValidFrom, ValidTo   types.Micros
	SystemFrom, SystemTo types.Micros
	Doc                  types.Doc
}

// Engine replays a single iid's events, newest system_from first, against a
// Ceiling to recover each put's true (valid_from, valid_to, system_from,
// system_to) rectangle (§4.D, "the hard part"). One Engine is reused across
// an entire merge task; it resets its own state whenever the iid changes.
type Engine struct {
	ceiling Ceiling

	haveIid bool
	iid     types.Iid

	haveSkip bool
	skip     types.Iid
}

// NewEngine returns a ready-to-use polygon engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Process feeds one event, in (iid asc, system_from desc) order, through the
// engine. sysLo/sysHi bound the queried system-time range (sysLo inclusive,
// sysHi exclusive); an event outside it contributes nothing — not even a
// ceiling update (§4.D step 4). An event at or after sysHi lies beyond the
// queried system time, so it supersedes nothing inside the range; an event
// before sysLo arrives after every in-range event (descending system_from),
// and every event it could still supersede is older still, so also before
// sysLo. Process returns the rectangles a put resolves to, or nil for a
// delete, a dropped event, or an out-of-range event.
func (e *Engine) Process(ev types.Event, sysLo, sysHi types.Micros) []Rectangle {
	segs, live := e.resolve(ev, sysLo, sysHi)
	if !live || ev.Op != types.OpPut {
		return nil
	}

	out := make([]Rectangle, 0, len(segs))
	for _, seg := range segs {
		out = append(out, Rectangle{
			Iid:        ev.Iid,
			ValidFrom:  seg.VF,
			ValidTo:    seg.VT,
			SystemFrom: ev.SystemFrom,
			SystemTo:   seg.SysTo,
			Doc:        ev.Doc,
		})
	}
	return out
}

// Recency resolves the same ceiling state as Process, but for an event of
// any operation kind, returning the latest sys_to any part of the event's
// valid-time window resolves to — the value internal/compact writes into a
// copied row's _recency column (§4.H). ok is false for a row this engine
// drops outright (erased, already-skipped, or outside [sysLo, sysHi)); a
// caller that still wants to copy such a row (compaction copies every row)
// falls back to the row's own system_from, since an erased row or anything
// beneath an erase can never become live again.
func (e *Engine) Recency(ev types.Event, sysLo, sysHi types.Micros) (types.Micros, bool) {
	segs, live := e.resolve(ev, sysLo, sysHi)
	if !live || len(segs) == 0 {
		return 0, false
	}
	recency := segs[0].SysTo
	for _, seg := range segs[1:] {
		if seg.SysTo > recency {
			recency = seg.SysTo
		}
	}
	return recency, true
}

// resolve runs the iid-reset/skip/erase/range bookkeeping shared by Process
// and Recency, and stamps the ceiling for a live event. live is false for
// an event that contributes no ceiling segments of its own (dropped by
// skip/erase, or outside the queried system-time range).
func (e *Engine) resolve(ev types.Event, sysLo, sysHi types.Micros) ([]Segment, bool) {
	if !e.haveIid || ev.Iid != e.iid {
		e.ceiling.Reset()
		e.haveSkip = false
		e.iid = ev.Iid
		e.haveIid = true
	}

	if e.haveSkip && ev.Iid == e.skip {
		return nil, false
	}

	if ev.Op == types.OpErase {
		e.ceiling.Reset()
		e.skip = ev.Iid
		e.haveSkip = true
		return nil, false
	}

	if ev.SystemFrom < sysLo || ev.SystemFrom >= sysHi {
		return nil, false
	}

	segs := e.ceiling.Stamp(ev.ValidFrom, ev.ValidTo, ev.SystemFrom)
	return segs, true
}
