package bloom_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xtdb-labs/xtdb/internal/bloom"
	"github.com/xtdb-labs/xtdb/internal/types"
)

func TestMayContainBytesNeverFalseNegative(t *testing.T) {
	f := bloom.New(100)
	values := [][]byte{[]byte("alpha"), []byte("beta"), []byte("gamma")}
	for _, v := range values {
		f.AddBytes(v)
	}
	for _, v := range values {
		assert.True(t, f.MayContainBytes(v))
	}
}

func TestMayContainBytesRejectsObviouslyAbsentValue(t *testing.T) {
	f := bloom.New(100)
	f.AddBytes([]byte("alpha"))
	assert.False(t, f.MayContainBytes([]byte("this-value-was-never-added")))
}

func TestMayContainIidRoundTrips(t *testing.T) {
	f := bloom.New(10)
	var iid types.Iid
	iid[0] = 0xab
	iid[15] = 0xcd

	f.AddIid(iid)
	assert.True(t, f.MayContainIid(iid))

	var other types.Iid
	other[0] = 0xff
	assert.False(t, f.MayContainIid(other))
}

func TestNewClampsDegenerateCapacity(t *testing.T) {
	f := bloom.New(0)
	f.AddBytes([]byte("x"))
	assert.True(t, f.MayContainBytes([]byte("x")))
}
