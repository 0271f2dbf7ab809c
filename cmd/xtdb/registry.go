package main

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/xtdb-labs/xtdb/internal/objectstore"
	"github.com/xtdb-labs/xtdb/internal/segment"
)

// loadRegistry lists every meta file under tables/<table>/meta/ and parses
// its name into a Registry entry. It does not open the segment's trie or
// pages — this repository builds and reads segment data in-memory only (see
// DESIGN.md); the CLI's view of a table is name-level, not content-level.
func loadRegistry(ctx context.Context, store objectstore.Store, table string) (*segment.Registry, error) {
	prefix := fmt.Sprintf("tables/%s/meta/", table)
	names, err := store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("xtdb: list %s: %w", prefix, err)
	}

	reg := segment.NewRegistry()
	for _, n := range names {
		base := strings.TrimSuffix(path.Base(n), ".arrow")
		name, err := segment.ParseName(base)
		if err != nil {
			continue // not a segment meta file; object stores can hold other keys under the same prefix
		}
		reg.Add(segment.Meta{Name: name})
	}
	return reg, nil
}
