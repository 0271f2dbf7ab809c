package segment

import (
	"github.com/xtdb-labs/xtdb/internal/bloom"
	"github.com/xtdb-labs/xtdb/internal/trie"
)

// BloomTable resolves the trie.BloomID handles a meta file's leaf columns
// carry to the actual filters. trie.LeafColumn stores only the handle so
// that a plain structural walk of the trie (no pushdown) never needs to
// load bloom filters at all.
type BloomTable struct {
	filters []*bloom.Filter
}

// NoBloom is the handle meaning "this column carries no bloom filter".
const NoBloom trie.BloomID = -1

// Add appends f to the table and returns the handle a LeafColumn should
// reference. Add(nil) always returns NoBloom.
func (t *BloomTable) Add(f *bloom.Filter) trie.BloomID {
	if f == nil {
		return NoBloom
	}
	t.filters = append(t.filters, f)
	return trie.BloomID(len(t.filters) - 1)
}

// Get resolves id back to the filter Add returned it for, or nil.
func (t *BloomTable) Get(id trie.BloomID) *bloom.Filter {
	if id == NoBloom || id < 0 || int(id) >= len(t.filters) {
		return nil
	}
	return t.filters[id]
}
