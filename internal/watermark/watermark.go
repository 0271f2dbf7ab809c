// Package watermark implements the transaction watermark wait §5's
// "suspension points" describe: a query blocks until the indexer has
// caught up to its requested after-tx bound, with an optional timeout.
package watermark

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/xtdb-labs/xtdb/internal/types"
	"github.com/xtdb-labs/xtdb/internal/xerrors"
)

// Watermark tracks the indexer's most recently committed tx system-time and
// lets readers block until it reaches a requested bound.
type Watermark struct {
	mu      sync.Mutex
	current types.Micros
	waiters map[types.Micros][]chan struct{}
	group   singleflight.Group
}

// New returns a watermark starting at system-time zero.
func New() *Watermark {
	return &Watermark{waiters: make(map[types.Micros][]chan struct{})}
}

// Current returns the watermark's current value.
func (w *Watermark) Current() types.Micros {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Advance publishes tx as the new watermark if it is greater than the
// current one, and wakes every waiter whose bound it now satisfies. The
// indexer calls this once per flushed chunk.
func (w *Watermark) Advance(tx types.Micros) {
	w.mu.Lock()
	if tx <= w.current {
		w.mu.Unlock()
		return
	}
	w.current = tx
	var wake []chan struct{}
	for target, chans := range w.waiters {
		if target <= tx {
			wake = append(wake, chans...)
			delete(w.waiters, target)
		}
	}
	w.mu.Unlock()
	for _, ch := range wake {
		close(ch)
	}
}

// Await blocks until the watermark reaches at least want or ctx is done
// (§5: "awaiting the indexer to catch up to the query's requested
// after-tx... with an optional timeout"; on cancellation "the query fails
// with a dedicated error"). Concurrent callers awaiting the same want share
// a single underlying wait via singleflight, so N queries blocked on the
// same not-yet-indexed transaction wake from one registration rather than N.
func (w *Watermark) Await(ctx context.Context, want types.Micros) error {
	w.mu.Lock()
	reached := w.current >= want
	w.mu.Unlock()
	if reached {
		return nil
	}

	key := strconv.FormatInt(int64(want), 10)
	done := make(chan struct{})
	go func() {
		_, _, _ = w.group.Do(key, func() (any, error) {
			<-w.registerWaiter(want)
			return nil, nil
		})
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return xerrors.Timeout("watermark: await-tx", ctx.Err())
	}
}

// registerWaiter returns a channel that closes once the watermark reaches
// want, already-closed if it has reached it by the time the lock is taken.
func (w *Watermark) registerWaiter(want types.Micros) <-chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(chan struct{})
	if w.current >= want {
		close(ch)
		return ch
	}
	w.waiters[want] = append(w.waiters[want], ch)
	return ch
}
