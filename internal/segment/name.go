// Package segment implements the on-disk columnar segment format: naming,
// the meta file (trie + per-page column statistics and blooms), and Arrow
// record-batch data pages (§4.B, §6).
package segment

import (
	"fmt"
	"regexp"
	"strconv"
)

// Name is a parsed segment identity: level, fr (first covered row — kept for
// naming symmetry with nr, per the real file name shape), and nr (next_row,
// the total event count the segment covers).
type Name struct {
	Level  int
	FirstRow int64
	NextRow  int64
}

var nameRE = regexp.MustCompile(`^log-l([0-9a-f]{2})-fr([0-9a-f]+)-nr([0-9a-f]+)$`)

// Format renders the base file name (without directory or extension) per
// §6: tables/<table>/{meta,data}/log-l<LL>-fr<FF>-nr<NN>.arrow.
func (n Name) Format() string {
	return fmt.Sprintf("log-l%02x-fr%x-nr%x", n.Level, n.FirstRow, n.NextRow)
}

// MetaPath returns the meta file path for a table.
func (n Name) MetaPath(table string) string {
	return fmt.Sprintf("tables/%s/meta/%s.arrow", table, n.Format())
}

// DataPath returns the data file path for a table.
func (n Name) DataPath(table string) string {
	return fmt.Sprintf("tables/%s/data/%s.arrow", table, n.Format())
}

// ParseName parses a base file name (no directory, no extension) back into
// its components. It round-trips with Format for every Name Format can
// produce, since the hex digit counts are not zero-padded beyond what each
// field's value needs (except Level, which is always 2 hex digits).
func ParseName(base string) (Name, error) {
	m := nameRE.FindStringSubmatch(base)
	if m == nil {
		return Name{}, fmt.Errorf("segment: malformed name %q", base)
	}
	level, err := strconv.ParseInt(m[1], 16, 64)
	if err != nil {
		return Name{}, fmt.Errorf("segment: bad level in %q: %w", base, err)
	}
	fr, err := strconv.ParseInt(m[2], 16, 64)
	if err != nil {
		return Name{}, fmt.Errorf("segment: bad fr in %q: %w", base, err)
	}
	nr, err := strconv.ParseInt(m[3], 16, 64)
	if err != nil {
		return Name{}, fmt.Errorf("segment: bad nr in %q: %w", base, err)
	}
	return Name{Level: int(level), FirstRow: fr, NextRow: nr}, nil
}
