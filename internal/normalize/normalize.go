// Package normalize implements the identifier folding rule §6 requires to
// be bit-identical across implementations: it is baked into on-disk column
// and table names, so the mapping itself is part of the storage format.
package normalize

import (
	"strings"
	"sync"
)

// cache memoizes Name since it is called on every put/column-materialization
// path and the input alphabet (user-chosen table/column identifiers) is
// small and stable for the lifetime of a node.
var cache sync.Map // string -> string

// Name normalizes a user-supplied table or column identifier: '-' becomes
// '_'; a leading '_' becomes "xt$"; '.', '/', and '$' become '$'; the
// result is then lowercased. The mapping is idempotent — Name(Name(x)) ==
// Name(x) for all x — which §8 treats as a testable property.
func Name(s string) string {
	if v, ok := cache.Load(s); ok {
		return v.(string)
	}
	out := normalize(s)
	cache.Store(s, out)
	return out
}

func normalize(s string) string {
	s = strings.ReplaceAll(s, "-", "_")
	if strings.HasPrefix(s, "_") {
		s = "xt$" + s[1:]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '.', '/', '$':
			return '$'
		default:
			return r
		}
	}, s)
	return strings.ToLower(s)
}
