package xerrors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xtdb-labs/xtdb/internal/xerrors"
)

func TestInvalidArgumentMessage(t *testing.T) {
	err := xerrors.InvalidArgument("bad table name %q", "foo bar")
	assert.True(t, xerrors.Is(err, xerrors.ErrInvalidArgument))
	assert.Contains(t, err.Error(), `bad table name "foo bar"`)
}

func TestWrappersPreserveBothSentinelAndCause(t *testing.T) {
	cause := errors.New("disk full")

	tests := []struct {
		name     string
		wrap     func(string, error) error
		sentinel error
	}{
		{"runtime", xerrors.Runtime, xerrors.ErrRuntime},
		{"conflict", xerrors.Conflict, xerrors.ErrConflict},
		{"timeout", xerrors.Timeout, xerrors.ErrTimeout},
		{"storage", xerrors.Storage, xerrors.ErrStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.wrap("flush segment", cause)
			assert.True(t, xerrors.Is(err, tt.sentinel))
			assert.True(t, errors.Is(err, cause))
			assert.Contains(t, err.Error(), "flush segment")
		})
	}
}

func TestWrappersPassThroughNil(t *testing.T) {
	assert.NoError(t, xerrors.Runtime("op", nil))
	assert.NoError(t, xerrors.Conflict("op", nil))
	assert.NoError(t, xerrors.Timeout("op", nil))
	assert.NoError(t, xerrors.Storage("op", nil))
}
