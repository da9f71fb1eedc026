package backup

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syncvault/syncvault/internal/config"
	"github.com/syncvault/syncvault/internal/errors"
	"github.com/syncvault/syncvault/internal/logging"
	"github.com/syncvault/syncvault/internal/manifest"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// testEnv wires a Runner against temp directories with a controllable clock.
type testEnv struct {
	cfg        *config.Config
	configPath string
	src        string
	dest       string
	staging    string
	clock      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()
	env := &testEnv{
		cfg:        config.Default(),
		configPath: filepath.Join(root, "config.yaml"),
		src:        filepath.Join(root, "data"),
		dest:       filepath.Join(root, "backups"),
		staging:    filepath.Join(root, "staging"),
		// A Tuesday; default full-backup weekday is Monday (0).
		clock: time.Date(2025, 3, 4, 2, 0, 0, 0, time.UTC),
	}
	env.cfg.Sources = []string{env.src}
	env.cfg.Destination = env.dest
	env.cfg.BackupType = config.TypeDifferential
	env.cfg.MaxWorkers = 4

	writeFile(t, filepath.Join(env.src, "a.txt"), "alpha")
	writeFile(t, filepath.Join(env.src, "sub", "b.txt"), "beta")
	writeFile(t, filepath.Join(env.src, "skip.tmp"), "scratch")
	return env
}

func (e *testEnv) runner(t *testing.T) *Runner {
	t.Helper()
	return NewRunner(e.cfg,
		WithLogger(logging.ForTest(t)),
		WithConfigPath(e.configPath),
		WithStagingRoot(e.staging),
		WithClock(func() time.Time { return e.clock }),
	)
}

func (e *testEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func TestRun_FirstRunIsFull(t *testing.T) {
	env := newTestEnv(t)

	record, err := env.runner(t).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, config.TypeFull, record.Type)
	assert.Equal(t, 2, record.Processed, "excluded .tmp file must not be staged")
	assert.Zero(t, record.Skipped)
	assert.Equal(t, 2, record.FileCount)
	assert.FileExists(t, record.Path)
	assert.Contains(t, filepath.Base(record.Path), "_full.zip")

	// History was appended and persisted.
	persisted, err := config.Load(env.configPath)
	require.NoError(t, err)
	require.Len(t, persisted.History, 1)
	assert.Equal(t, record.Timestamp, persisted.History[0].Timestamp)

	// Durable manifest exists and covers both files.
	m := manifest.Load(record.ManifestPath)
	assert.Len(t, m, 2)
}

func TestRun_IdempotentFullBackup(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.BackupType = config.TypeFull

	first, err := env.runner(t).Run(context.Background())
	require.NoError(t, err)
	env.advance(time.Minute)
	second, err := env.runner(t).Run(context.Background())
	require.NoError(t, err)

	m1 := manifest.Load(first.ManifestPath)
	m2 := manifest.Load(second.ManifestPath)
	assert.Equal(t, m1, m2, "unchanged tree yields identical manifests")
}

func TestRun_DifferentialStagesOnlyChangedFile(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runner(t).Run(context.Background())
	require.NoError(t, err)

	writeFile(t, filepath.Join(env.src, "a.txt"), "alpha v2")
	env.advance(time.Hour)

	record, err := env.runner(t).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, config.TypeDifferential, record.Type)
	assert.Equal(t, 1, record.Processed)
	assert.Equal(t, 1, record.Skipped)
	assert.Contains(t, filepath.Base(record.Path), "_diff.zip")

	// Carried-forward entries keep the manifest complete.
	m := manifest.Load(record.ManifestPath)
	assert.Len(t, m, 2)
}

func TestRun_DifferentialWithNoChangesFails(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runner(t).Run(context.Background())
	require.NoError(t, err)
	env.advance(time.Hour)

	_, err = env.runner(t).Run(context.Background())
	assert.ErrorIs(t, err, errors.ErrNothingStaged)

	// The failed run left no history record behind.
	persisted, err := config.Load(env.configPath)
	require.NoError(t, err)
	assert.Len(t, persisted.History, 1)
}

func TestRun_FullBackupWeekdayForcesFull(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runner(t).Run(context.Background())
	require.NoError(t, err)

	// Jump to the following Monday, the default full-backup weekday.
	env.clock = time.Date(2025, 3, 10, 2, 0, 0, 0, time.UTC)

	record, err := env.runner(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, config.TypeFull, record.Type)
	assert.Equal(t, 2, record.Processed)
}

func TestRun_NoSourcesFailsBeforeIO(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Sources = nil

	_, err := env.runner(t).Run(context.Background())
	assert.ErrorIs(t, err, errors.ErrNoSources)
}

func TestRun_NonexistentSourcesFailEnumeration(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Sources = []string{filepath.Join(t.TempDir(), "ghost")}

	_, err := env.runner(t).Run(context.Background())
	assert.ErrorIs(t, err, errors.ErrNoFilesFound)

	// No artifact was produced.
	entries, readErr := os.ReadDir(env.dest)
	if readErr == nil {
		assert.Empty(t, entries)
	}
}

func TestRun_CompressedRunRemovesStaging(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runner(t).Run(context.Background())
	require.NoError(t, err)

	entries, err := os.ReadDir(env.staging)
	require.NoError(t, err)
	assert.Empty(t, entries, "staging directory is removed after archiving")
}

func TestRun_UncompressedRunKeepsStagingAndCopiesTree(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.Compress = false

	record, err := env.runner(t).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "backup_20250304_020000_full", filepath.Base(record.Path))
	assert.DirExists(t, record.Path)
	assert.FileExists(t, filepath.Join(record.Path, "data", "a.txt"))
	assert.FileExists(t, filepath.Join(record.Path, manifest.FileName))
	assert.Positive(t, record.SizeBytes)

	// Uncompressed runs never delete the staging directory.
	entries, err := os.ReadDir(env.staging)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRun_TarGzArtifact(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.CompressionFormat = "tar.gz"

	record, err := env.runner(t).Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, record.Path, ".tar.gz")

	restored := t.TempDir()
	require.NoError(t, Restore(record.Path, restored, logging.ForTest(t)))
	got, err := os.ReadFile(filepath.Join(restored, "data", "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(got))
}

func TestRestore_MissingBackup(t *testing.T) {
	err := Restore(filepath.Join(t.TempDir(), "nope.zip"), t.TempDir(), logging.ForTest(t))
	assert.Error(t, err)
}

func TestWeekdayMondayZero(t *testing.T) {
	// 2025-03-03 is a Monday.
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, 0, weekdayMondayZero(monday))
	assert.Equal(t, 6, weekdayMondayZero(monday.AddDate(0, 0, 6))) // Sunday
}
