// Package trie implements the iid-keyed hash trie addressing shared by
// on-disk segment meta files and the in-memory live index: nibble-prefix
// paths, path/iid comparison, and the node sum type the merge planner walks.
package trie

import "github.com/xtdb-labs/xtdb/internal/types"

// Path is a sequence of 2-bit nibbles (branching factor 4) identifying a
// trie node; it is a prefix of some iid's nibble sequence.
type Path []byte

// Child returns the path extended by one nibble (0-3).
func (p Path) Child(nibble byte) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = nibble & 0x3
	return out
}

// nibbleAt returns the nibble of iid at position i (0-indexed from the most
// significant 2 bits of the first byte).
func nibbleAt(iid types.Iid, i int) byte {
	byteIdx := i / 4
	if byteIdx >= len(iid) {
		return 0
	}
	shift := uint(6 - 2*(i%4))
	return (iid[byteIdx] >> shift) & 0x3
}

// CompareToPath returns the sign of the lexicographic comparison of iid's
// leading nibbles against path. A return of 0 means path is a prefix of
// iid's nibble sequence (all of path's nibbles agree with iid's prefix).
func CompareToPath(iid types.Iid, path Path) int {
	for i, want := range path {
		got := nibbleAt(iid, i)
		if got != want {
			if got < want {
				return -1
			}
			return 1
		}
	}
	return 0
}

// OnPath reports whether iid lies on path (CompareToPath == 0).
func OnPath(iid types.Iid, path Path) bool {
	return CompareToPath(iid, path) == 0
}

// Equal reports whether two paths are identical.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
