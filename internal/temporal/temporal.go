// Package temporal builds the numeric bounds for the AT/IN/BETWEEN/ALL TIME
// query clauses (§4.I) from microsecond values, and the Rectangle the scan
// cursor and polygon engine filter against. It does not parse clause text
// or time literals.
package temporal

import "github.com/xtdb-labs/xtdb/internal/types"

// Rectangle is a pair of half-open system-time and valid-time intervals.
// The system-time axis bounds a row's system_from: system_from_lo <=
// row.system_from < system_from_hi (ContainsSystemFrom). The valid-time
// axis is matched by overlap: a row's [valid_from, valid_to) is in range
// when it intersects [valid_from_lo, valid_from_hi) (IntersectsValidTime).
type Rectangle struct {
	SystemFromLo, SystemFromHi types.Micros
	ValidFromLo, ValidFromHi   types.Micros
}

// unbounded spans the entire Micros range, used for ALL TIME and any axis a
// clause leaves unconstrained.
var unbounded = [2]types.Micros{0, types.MaxMicros}

// At returns the rectangle for `AT t`: a point on the axis, expressed as
// the half-open interval [t, t+1) so that "t <" on the paired _to column
// still excludes rows whose window closed exactly at t.
func At(t types.Micros) [2]types.Micros {
	return [2]types.Micros{t, t + 1}
}

// In returns the rectangle for `IN [f, t)`.
func In(f, t types.Micros) [2]types.Micros {
	return [2]types.Micros{f, t}
}

// Between returns the rectangle for `BETWEEN [f, t]`, an inclusive upper
// bound expressed as the half-open interval [f, t+1).
func Between(f, t types.Micros) [2]types.Micros {
	return [2]types.Micros{f, t + 1}
}

// AllTime returns the unconstrained interval for `ALL TIME`.
func AllTime() [2]types.Micros {
	return unbounded
}

// Basis is the query's temporal anchor: the transaction whose system-time
// bounds the "as of" read, and the valid-time instant fixed at query start
// unless the caller asked for every valid-time version.
type Basis struct {
	AtTxSystemTime types.Micros
	QueryStartTime types.Micros
}

// Default builds the default Rectangle per §4.I: system-time defaults to
// "system_from <= basis_tx.system_time < system_to" (as-of basis);
// valid-time defaults to the wall-clock instant fixed at query start unless
// allValidTime is set.
func Default(basis Basis, allValidTime bool) Rectangle {
	r := Rectangle{
		SystemFromLo: unbounded[0],
		SystemFromHi: basis.AtTxSystemTime + 1,
		ValidFromLo:  unbounded[0],
		ValidFromHi:  unbounded[1],
	}
	if !allValidTime {
		at := At(basis.QueryStartTime)
		r.ValidFromLo, r.ValidFromHi = at[0], at[1]
	}
	return r
}

// WithSystemTime returns a copy of r with its system-time axis replaced.
func (r Rectangle) WithSystemTime(bounds [2]types.Micros) Rectangle {
	r.SystemFromLo, r.SystemFromHi = bounds[0], bounds[1]
	return r
}

// WithValidTime returns a copy of r with its valid-time axis replaced.
func (r Rectangle) WithValidTime(bounds [2]types.Micros) Rectangle {
	r.ValidFromLo, r.ValidFromHi = bounds[0], bounds[1]
	return r
}

// ContainsSystemFrom reports whether a system_from value falls in r's
// system-time axis.
func (r Rectangle) ContainsSystemFrom(sysFrom types.Micros) bool {
	return sysFrom >= r.SystemFromLo && sysFrom < r.SystemFromHi
}

// IntersectsValidTime reports whether [validFrom, validTo) overlaps r's
// valid-time axis.
func (r Rectangle) IntersectsValidTime(validFrom, validTo types.Micros) bool {
	return validFrom < r.ValidFromHi && validTo > r.ValidFromLo
}
