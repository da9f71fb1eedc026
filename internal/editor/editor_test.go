package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectEditor(t *testing.T) {
	t.Run("EDITOR wins", func(t *testing.T) {
		t.Setenv("EDITOR", "myeditor")
		t.Setenv("VISUAL", "othereditor")
		assert.Equal(t, "myeditor", detectEditor())
	})

	t.Run("VISUAL is the fallback", func(t *testing.T) {
		t.Setenv("EDITOR", "")
		t.Setenv("VISUAL", "othereditor")
		assert.Equal(t, "othereditor", detectEditor())
	})

	t.Run("defaults without env", func(t *testing.T) {
		t.Setenv("EDITOR", "")
		t.Setenv("VISUAL", "")
		got := detectEditor()
		assert.Contains(t, []string{"nano", "vi"}, got)
	})
}
