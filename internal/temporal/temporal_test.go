package temporal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xtdb-labs/xtdb/internal/temporal"
	"github.com/xtdb-labs/xtdb/internal/types"
)

func TestAtIsAHalfOpenPoint(t *testing.T) {
	bounds := temporal.At(100)
	assert.Equal(t, [2]types.Micros{100, 101}, bounds)
}

func TestBetweenIsInclusiveOfUpperBound(t *testing.T) {
	bounds := temporal.Between(100, 200)
	assert.Equal(t, [2]types.Micros{100, 201}, bounds)
}

func TestInIsHalfOpenAsGiven(t *testing.T) {
	bounds := temporal.In(100, 200)
	assert.Equal(t, [2]types.Micros{100, 200}, bounds)
}

func TestDefaultAsOfBasisExcludesFutureSystemFrom(t *testing.T) {
	r := temporal.Default(temporal.Basis{AtTxSystemTime: 500, QueryStartTime: 1000}, false)
	assert.True(t, r.ContainsSystemFrom(500))
	assert.False(t, r.ContainsSystemFrom(501))
}

func TestDefaultValidTimePinsToQueryStart(t *testing.T) {
	r := temporal.Default(temporal.Basis{AtTxSystemTime: 500, QueryStartTime: 1000}, false)
	assert.True(t, r.IntersectsValidTime(999, 1001))
	assert.False(t, r.IntersectsValidTime(0, 999))
}

func TestDefaultAllValidTimeIsUnbounded(t *testing.T) {
	r := temporal.Default(temporal.Basis{AtTxSystemTime: 500, QueryStartTime: 1000}, true)
	assert.True(t, r.IntersectsValidTime(0, types.MaxMicros))
}

func TestAllTimeIsUnbounded(t *testing.T) {
	r := temporal.Rectangle{}.WithSystemTime(temporal.AllTime()).WithValidTime(temporal.AllTime())
	assert.True(t, r.ContainsSystemFrom(0))
	assert.True(t, r.ContainsSystemFrom(types.MaxMicros - 1))
}
