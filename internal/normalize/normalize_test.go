package normalize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/xtdb-labs/xtdb/internal/normalize"
)

func TestNameRules(t *testing.T) {
	tests := []struct{ in, want string }{
		{"foo-bar", "foo_bar"},
		{"_id", "xt$id"},
		{"xt/id", "xt$id"},
		{"xt.id", "xt$id"},
		{"xt$id", "xt$id"},
		{"CamelCase", "camelcase"},
		{"-leading-dash", "xt$leading_dash"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalize.Name(tt.in), tt.in)
	}
}

func TestNameIsIdempotent(t *testing.T) {
	inputs := []string{"foo-bar", "_id", "xt/id", "xt.id", "xt$id", "CamelCase", "--a..b//c$$d"}
	for _, in := range inputs {
		once := normalize.Name(in)
		twice := normalize.Name(once)
		assert.Equal(t, once, twice, "Name(Name(%q)) must equal Name(%q)", in, in)
	}
}

func TestNameIsCachedAcrossCalls(t *testing.T) {
	assert.Equal(t, normalize.Name("Repeat-Me"), normalize.Name("Repeat-Me"))
}
