package stage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncvault/syncvault/internal/digest"
	"github.com/syncvault/syncvault/internal/enumerate"
	"github.com/syncvault/syncvault/internal/logging"
	"github.com/syncvault/syncvault/internal/manifest"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fixtureTasks creates n files under dir and returns their tasks.
func fixtureTasks(t *testing.T, dir string, n int) []enumerate.Task {
	t.Helper()
	tasks := make([]enumerate.Task, 0, n)
	for i := 0; i < n; i++ {
		rel := filepath.Join("data", fmt.Sprintf("sub%02d", i%10), fmt.Sprintf("file%04d.txt", i))
		abs := filepath.Join(dir, rel)
		writeFile(t, abs, fmt.Sprintf("content of file %d", i))
		tasks = append(tasks, enumerate.Task{AbsPath: abs, RelPath: rel})
	}
	return tasks
}

func TestStage_FullBackupStagesEverything(t *testing.T) {
	src := t.TempDir()
	staging := t.TempDir()
	tasks := fixtureTasks(t, src, 20)

	s := New(logging.ForTest(t), WithWorkers(4))
	m, stats, err := s.Stage(context.Background(), tasks, manifest.Manifest{}, true, staging)
	require.NoError(t, err)

	assert.Equal(t, 20, stats.Processed)
	assert.Zero(t, stats.Skipped)
	assert.Zero(t, stats.Errors)
	assert.Len(t, m, 20)

	for _, task := range tasks {
		staged := filepath.Join(staging, task.RelPath)
		got, err := os.ReadFile(staged)
		require.NoError(t, err)
		want, err := os.ReadFile(task.AbsPath)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestStage_DifferentialStagesOnlyChangedFile(t *testing.T) {
	src := t.TempDir()
	tasks := fixtureTasks(t, src, 10)

	// Build the prior manifest from the current content.
	prior := manifest.Manifest{}
	for _, task := range tasks {
		d, err := digest.File(task.AbsPath)
		require.NoError(t, err)
		prior[task.RelPath] = d
	}

	// Change exactly one file.
	writeFile(t, tasks[3].AbsPath, "changed content")

	staging := t.TempDir()
	s := New(logging.ForTest(t), WithWorkers(4))
	m, stats, err := s.Stage(context.Background(), tasks, prior, false, staging)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 9, stats.Skipped)
	assert.Zero(t, stats.Errors)

	// Only the changed file landed in staging.
	_, err = os.Stat(filepath.Join(staging, tasks[3].RelPath))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(staging, tasks[0].RelPath))
	assert.True(t, os.IsNotExist(err))

	// The manifest carries unchanged entries forward and is complete.
	assert.Len(t, m, 10)
	assert.Equal(t, prior[tasks[0].RelPath], m[tasks[0].RelPath])
	assert.NotEqual(t, prior[tasks[3].RelPath], m[tasks[3].RelPath])
}

func TestStage_StatsInvariant(t *testing.T) {
	src := t.TempDir()
	tasks := fixtureTasks(t, src, 30)

	// One task points at a missing file and must be counted as an error.
	tasks = append(tasks, enumerate.Task{
		AbsPath: filepath.Join(src, "missing.txt"),
		RelPath: "missing.txt",
	})

	s := New(logging.ForTest(t), WithWorkers(8))
	m, stats, err := s.Stage(context.Background(), tasks, manifest.Manifest{}, true, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, len(tasks), stats.Tasks())
	assert.Equal(t, 1, stats.Errors)
	assert.NotContains(t, m, "missing.txt", "errored file is dropped from the manifest")
}

func TestStage_IdenticalAcrossWorkerCounts(t *testing.T) {
	src := t.TempDir()
	tasks := fixtureTasks(t, src, 500)

	var baseline manifest.Manifest
	var baseStats Stats

	for _, workers := range []int{1, 4, 32} {
		s := New(logging.ForTest(t), WithWorkers(workers))
		m, stats, err := s.Stage(context.Background(), tasks, manifest.Manifest{}, true, t.TempDir())
		require.NoError(t, err)

		if baseline == nil {
			baseline = m
			baseStats = stats
			continue
		}
		assert.Equal(t, baseline, m, "workers=%d", workers)
		assert.Equal(t, baseStats, stats, "workers=%d", workers)
	}
}

func TestStage_PreservesModeAndModTime(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not meaningful on windows")
	}

	src := t.TempDir()
	abs := filepath.Join(src, "script.sh")
	writeFile(t, abs, "#!/bin/sh\n")
	require.NoError(t, os.Chmod(abs, 0o755))

	info, err := os.Stat(abs)
	require.NoError(t, err)

	staging := t.TempDir()
	s := New(logging.ForTest(t), WithWorkers(1))
	_, stats, err := s.Stage(context.Background(),
		[]enumerate.Task{{AbsPath: abs, RelPath: "script.sh"}},
		manifest.Manifest{}, true, staging)
	require.NoError(t, err)
	require.Equal(t, 1, stats.Processed)

	staged, err := os.Stat(filepath.Join(staging, "script.sh"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o755), staged.Mode().Perm())
	assert.True(t, staged.ModTime().Equal(info.ModTime()))
	assert.Equal(t, info.Size(), stats.TotalBytes)
}

func TestStage_ProgressCallback(t *testing.T) {
	src := t.TempDir()
	tasks := fixtureTasks(t, src, 12)

	var calls int
	var lastDone, lastTotal int
	s := New(logging.ForTest(t), WithWorkers(3), WithProgress(func(done, total int) {
		calls++
		lastDone, lastTotal = done, total
	}))

	_, _, err := s.Stage(context.Background(), tasks, manifest.Manifest{}, true, t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 12, calls)
	assert.Equal(t, 12, lastDone)
	assert.Equal(t, 12, lastTotal)
}

func TestStage_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	src := t.TempDir()
	tasks := fixtureTasks(t, src, 5)

	s := New(logging.ForTest(t), WithWorkers(2))
	_, stats, err := s.Stage(ctx, tasks, manifest.Manifest{}, true, t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
	// Whatever was dispatched before cancellation is still accounted for.
	assert.LessOrEqual(t, stats.Tasks(), len(tasks))
}

func TestWithWorkers_Bounds(t *testing.T) {
	assert.Equal(t, DefaultWorkers(), New(logging.ForTest(t), WithWorkers(0)).workers)
	assert.Equal(t, MaxWorkers, New(logging.ForTest(t), WithWorkers(1000)).workers)
	assert.Equal(t, 7, New(logging.ForTest(t), WithWorkers(7)).workers)
}
