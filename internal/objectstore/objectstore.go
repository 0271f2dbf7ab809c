// Package objectstore defines the byte-range read interface the storage
// core consumes from its object store / buffer pool collaborator (§1: out
// of scope, specified only by the interface it must satisfy), plus a
// local-disk reference implementation the core can be tested against.
package objectstore

import "context"

// Store is the minimal interface the buffer pool needs: byte-range reads of
// named segment files, and a way to create new ones during a flush or
// compaction publish.
type Store interface {
	// ReadRange returns the bytes of path in [offset, offset+length). A
	// length of -1 means "read to end of file".
	ReadRange(ctx context.Context, path string, offset int64, length int64) ([]byte, error)

	// Size returns the current size of path.
	Size(ctx context.Context, path string) (int64, error)

	// Write atomically publishes path's full contents. Segment files are
	// immutable once written (§3): a Write to an existing path is only
	// valid for files that have not yet been observed by any reader (e.g.
	// while a chunk flush or compaction output is still being assembled).
	Write(ctx context.Context, path string, data []byte) error

	// Delete removes path. Called only once a segment has become eligible
	// for garbage collection (§3, §4.H): a covering replacement has been
	// published and the watermark has advanced past any in-flight reader
	// that pinned the old set.
	Delete(ctx context.Context, path string) error

	// List returns every path under prefix, used to discover a table's meta
	// files when resolving the current set (§6).
	List(ctx context.Context, prefix string) ([]string, error)
}
