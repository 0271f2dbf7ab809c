// Package liveindex implements the in-memory hash trie of uncommitted-to-
// disk events for the current chunk (§4.C). The indexer holds a write latch
// while appending and flushing; readers take a read latch only to obtain a
// consistent snapshot reference, never to read the data itself (§5).
package liveindex

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/xtdb-labs/xtdb/internal/trie"
	"github.com/xtdb-labs/xtdb/internal/types"
)

// Leaf holds the unflushed events routed to one trie path. Appending is
// lazy: events are appended in arrival order and only sorted (by iid asc,
// system_from desc, per §3) when a reader asks for the sort key vector,
// matching §4.C's "leaf emits a sort key vector that the merge-scan can
// consume directly".
type Leaf struct {
	Path   trie.Path
	events []types.Event

	sortedOnce sync.Once
	order      []int // events[order[i]] is the i'th row in sort order
}

// Events returns the leaf's events in arrival order (unsorted).
func (l *Leaf) Events() []types.Event { return l.events }

// SortedOrder returns, lazily computed and cached, the permutation of
// Events() in (iid asc, system_from desc) order.
func (l *Leaf) SortedOrder() []int {
	l.sortedOnce.Do(func() {
		order := make([]int, len(l.events))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return l.events[order[a]].Less(l.events[order[b]])
		})
		l.order = order
	})
	return l.order
}

// Row returns the i'th event in sort order.
func (l *Leaf) Row(i int) types.Event {
	return l.events[l.SortedOrder()[i]]
}

// RowCount returns the number of rows in the leaf.
func (l *Leaf) RowCount() int { return len(l.events) }

// NumRows and Event implement eventptr.RowSource, letting the merge queue
// treat an unflushed leaf exactly like an on-disk segment.Page.
func (l *Leaf) NumRows() int            { return l.RowCount() }
func (l *Leaf) Event(i int) types.Event { return l.Row(i) }

// defaultPathLen is the routing depth Append uses: every on-disk leaf in
// this core uses a 2-nibble (4-bit) routing prefix by default, matching a branching
// factor of 4 per nibble over the first byte; callers that need deeper
// routing pass a longer prefix explicitly via AppendAt.
const defaultPathLen = 2

// Index is the live index: a flat map from trie path to leaf, rebuilt as a
// proper trie only at flush time (§4.C: a live-trie leaf is indistinguishable
// from an on-disk leaf to the merge queue apart from its source tag, so the
// in-memory representation does not need the on-disk trie's branch nodes
// until it is materialized as a segment).
type Index struct {
	mu     sync.RWMutex
	leaves map[string]*Leaf
	count  int
	log    *slog.Logger
}

// New creates an empty live index, logging to slog.Default().
func New() *Index {
	return NewWithLogger(nil)
}

// NewWithLogger creates an empty live index that logs flush activity
// through log, or slog.Default() if log is nil. Appends are not logged.
func NewWithLogger(log *slog.Logger) *Index {
	if log == nil {
		log = slog.Default()
	}
	return &Index{leaves: make(map[string]*Leaf), log: log}
}

func pathKey(p trie.Path) string { return string(p) }

// Append routes one event to its leaf by the leading defaultPathLen nibbles
// of its iid, taking the write latch for the duration of the append.
func (ix *Index) Append(e types.Event) {
	path := make(trie.Path, defaultPathLen)
	for i := range path {
		path[i] = nibbleAt(e.Iid, i)
	}
	ix.AppendAt(path, e)
}

// AppendAt routes e to the leaf at an explicit path, letting callers that
// need finer addressing (e.g. tests exercising deep tries) control it
// directly. A snapshot taken before this call may already hold a pointer to
// the existing leaf at path (§3: "the snapshot reference is immutable once
// taken"), and a reader walks that leaf's Events/SortedOrder/Row lock-free
// (§5), so the existing leaf is never mutated in place — AppendAt builds a
// fresh *Leaf with a copied, extended event slice and swaps the map entry,
// leaving any already-observed *Leaf exactly as it was.
func (ix *Index) AppendAt(path trie.Path, e types.Event) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	key := pathKey(path)
	old, ok := ix.leaves[key]

	next := &Leaf{Path: append(trie.Path(nil), path...)}
	if ok {
		next.events = make([]types.Event, len(old.events), len(old.events)+1)
		copy(next.events, old.events)
	}
	next.events = append(next.events, e)
	ix.leaves[key] = next
	ix.count++
}

func nibbleAt(iid types.Iid, i int) byte {
	byteIdx := i / 4
	if byteIdx >= len(iid) {
		return 0
	}
	shift := uint(6 - 2*(i%4))
	return (iid[byteIdx] >> shift) & 0x3
}

// Snapshot is the immutable reference a reader pins at query start (§3: "the
// snapshot reference is immutable once taken"). It shares the underlying
// *Leaf pointers with the live index at the instant Snapshot was called;
// every later Append routed to an already-snapshotted path replaces the
// index's map entry with a new *Leaf rather than mutating the one a reader
// may already hold (see AppendAt), so a Leaf obtained from a Snapshot never
// changes underneath a lock-free reader.
type Snapshot struct {
	leaves []*Leaf
	count  int
}

// Snapshot takes a read latch just long enough to copy the leaf-pointer
// table, then releases it — the data itself is read lock-free afterwards.
func (ix *Index) Snapshot() *Snapshot {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	leaves := make([]*Leaf, 0, len(ix.leaves))
	for _, l := range ix.leaves {
		leaves = append(leaves, l)
	}
	return &Snapshot{leaves: leaves, count: ix.count}
}

// Leaves returns every leaf present in the snapshot.
func (s *Snapshot) Leaves() []*Leaf { return s.leaves }

// LeafAt returns the leaf whose path equals p, or nil.
func (s *Snapshot) LeafAt(p trie.Path) *Leaf {
	for _, l := range s.leaves {
		if l.Path.Equal(p) {
			return l
		}
	}
	return nil
}

// Count returns the number of events present when the snapshot was taken.
func (s *Snapshot) Count() int { return s.count }

// Flush atomically transfers ownership of every currently-held event out of
// the live index (resetting it) and returns them in arrival order, grouped
// by leaf, for the caller to materialize as an L0 segment (§3: "a flush
// transfers that ownership into a new L0 segment atomically"). Flush takes
// the write latch for its whole duration: no Append may interleave with a
// flush, matching §5's "the indexer holds a write latch while appending
// events and flushing a chunk".
func (ix *Index) Flush() []*Leaf {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	out := make([]*Leaf, 0, len(ix.leaves))
	for _, l := range ix.leaves {
		out = append(out, l)
	}
	ix.log.Debug("liveindex: flush", "leaves", len(out), "events", ix.count)
	ix.leaves = make(map[string]*Leaf)
	ix.count = 0
	return out
}
