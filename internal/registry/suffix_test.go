package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func takenSet(ids ...string) func(string) bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return func(id string) bool { return set[id] }
}

func TestNextSuffix(t *testing.T) {
	tests := []struct {
		name  string
		taken []string
		bound int
		want  int
	}{
		{"empty registry", nil, 0, 0},
		{"first taken", []string{"foo_0"}, 1, 1},
		{"gap is reused", []string{"foo_0", "foo_2"}, 2, 1},
		{"other bases ignored", []string{"bar_0", "bar_1"}, 2, 0},
		{"prefix collision ignored", []string{"foo_bar_0"}, 1, 0},
		{"dense run", []string{"foo_0", "foo_1", "foo_2"}, 3, 3},
		{"all candidates taken", []string{"foo_0", "foo_1"}, 1, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextSuffix("foo", takenSet(tt.taken...), tt.bound))
		})
	}
}

func TestIdentifier(t *testing.T) {
	assert.Equal(t, "token_0", Identifier("token", 0))
	assert.Equal(t, "cw20_base_12", Identifier("cw20_base", 12))
}
