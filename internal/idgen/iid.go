// Package idgen derives the 16-byte internal entity id ("iid") that every
// segment sorts and trie-partitions by, from any user-supplied id.
//
// Grounded on internal/idgen/hash.go's base36 content-hash approach in the
// teacher (deterministic hash of a canonical byte form); the 128-bit width
// is produced from two independently-seeded xxhash digests, the same way a
// caller would combine two 64-bit hashes when a wider one isn't available
// directly from the library.
package idgen

import (
	"encoding/binary"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/xtdb-labs/xtdb/internal/types"
)

// seedLo and seedHi are arbitrary, fixed salts so the two xxhash digests
// that make up an Iid are independent of each other. They must never change:
// they are baked into every on-disk iid.
const (
	seedLo uint64 = 0x9e3779b97f4a7c15
	seedHi uint64 = 0xc2b2ae3d27d4eb4f
)

// Iid hashes a canonical byte form to the 128-bit internal entity id. Equal
// inputs to Canonicalize always produce equal Iids.
func Iid(x any) (types.Iid, error) {
	b, err := Canonicalize(x)
	if err != nil {
		return types.Iid{}, err
	}
	return hashBytes(b), nil
}

func hashBytes(b []byte) types.Iid {
	lo := xxhash.Sum64(append(b, byte(seedLo), byte(seedLo>>8)))
	hi := xxhash.Sum64(append(b, byte(seedHi), byte(seedHi>>8)))
	var out types.Iid
	binary.BigEndian.PutUint64(out[0:8], lo)
	binary.BigEndian.PutUint64(out[8:16], hi)
	return out
}

// Canonicalize converts a user id into the byte form §4.A defines per type.
// Strings are UTF-8; integers are fixed-width big-endian; UUIDs are their 16
// raw bytes; keywords (represented here as KeywordID) are their qualified
// UTF-8 form.
func Canonicalize(x any) ([]byte, error) {
	switch v := x.(type) {
	case string:
		return []byte(v), nil
	case KeywordID:
		return []byte(v.Qualified()), nil
	case uuid.UUID:
		b := v // array copy
		return b[:], nil
	case int:
		return int64Bytes(int64(v)), nil
	case int32:
		return int64Bytes(int64(v)), nil
	case int64:
		return int64Bytes(v), nil
	case uint64:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], v)
		return b[:], nil
	default:
		return nil, fmt.Errorf("idgen: unsupported id type %T", x)
	}
}

func int64Bytes(v int64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	return b[:]
}

// KeywordID models a qualified keyword id, e.g. Clojure-style :xt/id, the
// way the query planner's front-end would hand one to the core.
type KeywordID struct {
	Namespace string
	Name      string
}

// Qualified renders the keyword's canonical UTF-8 form.
func (k KeywordID) Qualified() string {
	if k.Namespace == "" {
		return k.Name
	}
	return k.Namespace + "/" + k.Name
}
