// Package bloom wraps github.com/holiman/bloomfilter/v2 for the per-column
// and iid blooms §4.B attaches to every data page, the same dependency
// AKJUS-bsc-erigon's erigon-lib pulls in directly for its own state-history
// page filters: deciding whether a page can be skipped before it is ever
// fetched through the buffer pool.
package bloom

import (
	"hash"

	"github.com/cespare/xxhash/v2"
	"github.com/holiman/bloomfilter/v2"

	"github.com/xtdb-labs/xtdb/internal/types"
)

// defaultFalsePositiveRate targets roughly 1% false positives for the page
// sizes §4.H defaults to (256 rows/page).
const defaultFalsePositiveRate = 0.01

// Filter is a per-page bloom filter over arbitrary byte keys (column values,
// serialized generically by the caller) or Iids.
type Filter struct {
	f *bloomfilter.Filter
}

// New creates an empty filter sized for roughly n elements.
func New(n int) *Filter {
	if n < 1 {
		n = 1
	}
	f, err := bloomfilter.NewOptimal(uint64(n), defaultFalsePositiveRate)
	if err != nil {
		// NewOptimal only fails on a degenerate (zero) element count or
		// rate, both guarded above; fall back to a small fixed filter.
		f, _ = bloomfilter.New(1<<12, 4)
	}
	return &Filter{f: f}
}

func hash64(b []byte) hash.Hash64 {
	h := xxhash.New()
	h.Write(b) //nolint:errcheck // xxhash's Write never errors
	return h
}

// AddBytes records a value's presence.
func (f *Filter) AddBytes(b []byte) {
	f.f.Add(hash64(b))
}

// AddIid records an iid's presence.
func (f *Filter) AddIid(iid types.Iid) {
	f.AddBytes(iid[:])
}

// MayContainBytes reports whether b might be present (false positives
// possible, false negatives never).
func (f *Filter) MayContainBytes(b []byte) bool {
	return f.f.Contains(hash64(b))
}

// MayContainIid reports whether iid might be present.
func (f *Filter) MayContainIid(iid types.Iid) bool {
	return f.MayContainBytes(iid[:])
}
