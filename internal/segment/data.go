package segment

import "github.com/xtdb-labs/xtdb/internal/trie"

// Data is everything a merge planner or scan cursor needs from one open
// segment: its trie root, the bloom filters the leaf columns reference,
// and the data pages the trie's leaves point into by index. It is the
// payload a Registry's Meta carries once a segment is opened for reading.
type Data struct {
	Root   *trie.Node
	Blooms *BloomTable
	Pages  []*Page
}

// PageAt resolves a leaf node's DataPageIdx to its Page.
func (d *Data) PageAt(idx int) *Page {
	if idx < 0 || idx >= len(d.Pages) {
		return nil
	}
	return d.Pages[idx]
}
