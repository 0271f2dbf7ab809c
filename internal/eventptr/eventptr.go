// Package eventptr implements the event-row pointer and the min-heap merge
// queue that drives a scan cursor's multi-way merge across every segment
// and the live index contributing to one merge task (§4.E). The heap
// layout follows the same container/heap cursor pattern erigon-lib's state
// package uses to multi-way-merge compressed key/value files.
package eventptr

import (
	"container/heap"

	"github.com/xtdb-labs/xtdb/internal/types"
)

// RowSource is anything the merge queue can pull sorted event rows from: a
// flushed segment.Page or an unflushed liveindex.Leaf.
type RowSource interface {
	NumRows() int
	Event(i int) types.Event
}

// Pointer tracks the current row within one RowSource. A merge task opens
// one Pointer per contributing source.
type Pointer struct {
	Source RowSource
	row    int
}

// NewPointer returns a pointer positioned at the source's first row.
func NewPointer(src RowSource) *Pointer {
	return &Pointer{Source: src}
}

// Done reports whether the pointer has advanced past the source's last row.
func (p *Pointer) Done() bool {
	return p.row >= p.Source.NumRows()
}

// Event returns the row the pointer currently addresses. Calling it on a
// Done pointer panics, matching the merge queue's contract that a pointer
// is removed from the heap the moment it runs dry.
func (p *Pointer) Event() types.Event {
	return p.Source.Event(p.row)
}

// Advance moves the pointer to its next row.
func (p *Pointer) Advance() {
	p.row++
}

// Queue is a min-heap of Pointers ordered by the segment sort key (iid asc,
// system_from desc). It implements heap.Interface directly, the way
// erigon-lib's CursorHeap does, so callers drive it with the standard
// container/heap verbs instead of a bespoke API.
type Queue []*Pointer

func (q Queue) Len() int { return len(q) }

func (q Queue) Less(i, j int) bool {
	return q[i].Event().Less(q[j].Event())
}

func (q Queue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *Queue) Push(x any) {
	*q = append(*q, x.(*Pointer))
}

func (q *Queue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return item
}

// NewQueue builds a ready Queue from one pointer per non-empty source and
// heap.Inits it.
func NewQueue(sources []RowSource) *Queue {
	q := make(Queue, 0, len(sources))
	for _, src := range sources {
		if src.NumRows() == 0 {
			continue
		}
		q = append(q, NewPointer(src))
	}
	heap.Init(&q)
	return &q
}

// Peek returns the event at the top of the queue without consuming it, and
// false if the queue is empty.
func (q *Queue) Peek() (types.Event, bool) {
	if q.Len() == 0 {
		return types.Event{}, false
	}
	return (*q)[0].Event(), true
}

// Next pops the smallest event off the queue, advancing its source pointer
// and re-heapifying it back in if the source still has rows left (heap.Fix)
// or dropping it otherwise (heap.Pop) — the same two-armed advance
// erigon-lib's merge loop performs on cp[0] after consuming its key.
func (q *Queue) Next() (types.Event, bool) {
	if q.Len() == 0 {
		return types.Event{}, false
	}
	top := (*q)[0]
	ev := top.Event()
	top.Advance()
	if top.Done() {
		heap.Pop(q)
	} else {
		heap.Fix(q, 0)
	}
	return ev, true
}
