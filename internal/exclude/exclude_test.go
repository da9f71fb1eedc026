package exclude

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilter_Match(t *testing.T) {
	f := NewFilter([]string{"*.tmp", "~*", "Thumbs.db"})

	tests := []struct {
		path string
		want bool
	}{
		{"a.tmp", true},
		{"~lock", true},
		{"Thumbs.db", true},
		{"a.tmpx", false},
		{"notes.txt", false},
		{"dir/nested/b.tmp", true},
		{"dir/Thumbs.db", true},
		// Pattern matching applies to base names only; a directory
		// component matching a pattern must not exclude the file.
		{"backup.tmp/notes.txt", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, f.Match(tt.path))
		})
	}
}

func TestFilter_Empty(t *testing.T) {
	f := NewFilter(nil)
	assert.False(t, f.Match("anything.tmp"))
}

func TestFilter_FirstMatchWins(t *testing.T) {
	// Overlapping patterns must not double-count or error.
	f := NewFilter([]string{"*.log", "debug*"})
	assert.True(t, f.Match("debug.log"))
}
