package enumerate

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncvault/syncvault/internal/exclude"
	"github.com/syncvault/syncvault/internal/logging"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func relPaths(tasks []Task) []string {
	rels := make([]string, len(tasks))
	for i, task := range tasks {
		rels[i] = task.RelPath
	}
	sort.Strings(rels)
	return rels
}

func TestCollect_DirectorySource(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "photos")
	writeFile(t, filepath.Join(src, "a.jpg"), "a")
	writeFile(t, filepath.Join(src, "2024", "b.jpg"), "b")

	e := New(nil, logging.ForTest(t))
	tasks := e.Collect([]string{src})

	// Relative paths are anchored at the parent of the source root, so the
	// root's name becomes the top-level archive folder.
	assert.Equal(t, []string{
		filepath.Join("photos", "2024", "b.jpg"),
		filepath.Join("photos", "a.jpg"),
	}, relPaths(tasks))
}

func TestCollect_SingleFileSource(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "notes.txt")
	writeFile(t, file, "hi")

	e := New(nil, logging.ForTest(t))
	tasks := e.Collect([]string{file})

	require.Len(t, tasks, 1)
	assert.Equal(t, "notes.txt", tasks[0].RelPath)
	assert.Equal(t, file, tasks[0].AbsPath)
}

func TestCollect_MissingSourceIsSkipped(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "real.txt")
	writeFile(t, file, "x")

	e := New(nil, logging.ForTest(t))
	tasks := e.Collect([]string{filepath.Join(root, "ghost"), file})

	require.Len(t, tasks, 1)
	assert.Equal(t, "real.txt", tasks[0].RelPath)
}

func TestCollect_AppliesExclusions(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "work")
	writeFile(t, filepath.Join(src, "keep.txt"), "k")
	writeFile(t, filepath.Join(src, "drop.tmp"), "d")
	writeFile(t, filepath.Join(src, "~lock"), "l")
	writeFile(t, filepath.Join(src, "Thumbs.db"), "t")

	filter := exclude.NewFilter([]string{"*.tmp", "~*", "Thumbs.db"})
	e := New(filter, logging.ForTest(t))
	tasks := e.Collect([]string{src})

	assert.Equal(t, []string{filepath.Join("work", "keep.txt")}, relPaths(tasks))
}

func TestCollect_EmptySources(t *testing.T) {
	e := New(nil, logging.ForTest(t))
	assert.Empty(t, e.Collect(nil))
}

func TestCollect_SymlinksNotFollowed(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	root := t.TempDir()
	src := filepath.Join(root, "tree")
	writeFile(t, filepath.Join(src, "real.txt"), "r")
	// A cycle: tree/loop -> tree
	require.NoError(t, os.Symlink(src, filepath.Join(src, "loop")))

	e := New(nil, logging.ForTest(t))
	tasks := e.Collect([]string{src})

	assert.Equal(t, []string{filepath.Join("tree", "real.txt")}, relPaths(tasks))
}
