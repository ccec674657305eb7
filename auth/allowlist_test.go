package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowlist(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		csv      string
		identity string
		want     bool
	}{
		{"empty list allows anyone", "", "stranger", true},
		{"empty list allows empty identity", "", "", true},
		{"member allowed", "alice,bob", "alice", true},
		{"second member allowed", "alice,bob", "bob", true},
		{"non-member rejected", "alice,bob", "mallory", false},
		{"empty identity rejected", "alice", "", false},
		{"whitespace trimmed", " alice , bob ", "bob", true},
		{"case sensitive", "Alice", "alice", false},
		{"stray commas ignored", ",,alice,,", "alice", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := New(tt.csv)
			assert.Equal(t, tt.want, a.Authorized(tt.identity))
		})
	}
}

func TestAllowlistOpen(t *testing.T) {
	t.Parallel()

	assert.True(t, New("").Open())
	assert.True(t, New(" , ").Open())
	assert.False(t, New("alice").Open())
}
