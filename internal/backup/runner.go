package backup

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/syncvault/syncvault/internal/archive"
	"github.com/syncvault/syncvault/internal/config"
	"github.com/syncvault/syncvault/internal/enumerate"
	"github.com/syncvault/syncvault/internal/errors"
	"github.com/syncvault/syncvault/internal/exclude"
	"github.com/syncvault/syncvault/internal/logging"
	"github.com/syncvault/syncvault/internal/manifest"
	"github.com/syncvault/syncvault/internal/paths"
	"github.com/syncvault/syncvault/internal/stage"
)

// manifestDirName is the destination subdirectory holding durable manifest
// copies, one per run.
const manifestDirName = ".manifests"

// Runner executes backup runs against a configuration snapshot.
type Runner struct {
	cfg         *config.Config
	configPath  string
	logger      *slog.Logger
	stagingRoot string
	now         func() time.Time
	progress    func(done, total int)
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the run logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithConfigPath sets where the configuration (including the appended
// history record) is persisted after a successful run. Empty means the
// default location.
func WithConfigPath(path string) Option {
	return func(r *Runner) {
		r.configPath = path
	}
}

// WithStagingRoot overrides the directory under which the per-run staging
// directory is created. Defaults to the user's home directory.
func WithStagingRoot(dir string) Option {
	return func(r *Runner) {
		if dir != "" {
			r.stagingRoot = dir
		}
	}
}

// WithClock overrides the time source. Tests use this to pin the run
// timestamp and the full-backup weekday decision.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// WithProgress forwards per-task completion to a progress callback during
// staging.
func WithProgress(fn func(done, total int)) Option {
	return func(r *Runner) {
		r.progress = fn
	}
}

// NewRunner creates a Runner for the given configuration.
func NewRunner(cfg *config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:         cfg,
		logger:      logging.Default(),
		stagingRoot: paths.StagingRoot(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one backup run and returns the appended history record.
//
// The staging directory is removed in a finalizer, but only when
// compression is enabled: an uncompressed run's artifact is a copied tree
// and the staging directory is never deleted out from under a failed copy.
func (r *Runner) Run(ctx context.Context) (*config.HistoryRecord, error) {
	if err := r.cfg.ValidateForRun(); err != nil {
		return nil, err
	}

	startedAt := r.now()
	fullBackup := r.isFullBackup(startedAt)
	runType := config.TypeDifferential
	if fullBackup {
		runType = config.TypeFull
	}
	r.logger.Info("starting backup", "type", runType, "workers", r.cfg.MaxWorkers)

	timestamp := startedAt.Format("20060102_150405")
	stagingDir := filepath.Join(r.stagingRoot, ".syncvault_staging_"+timestamp)
	if err := os.MkdirAll(stagingDir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating staging directory")
	}
	defer func() {
		if r.cfg.Compress {
			if err := os.RemoveAll(stagingDir); err != nil {
				r.logger.Warn("removing staging directory failed", "dir", stagingDir, "error", err)
			}
		}
	}()

	r.logger.Info("collecting files")
	filter := exclude.NewFilter(r.cfg.ExcludePatterns)
	tasks := enumerate.New(filter, r.logger).Collect(r.cfg.Sources)
	if len(tasks) == 0 {
		return nil, errors.Wrap(errors.ErrNoFilesFound, "enumerating sources")
	}
	r.logger.Info("collected files", "count", len(tasks))

	prior := manifest.Manifest{}
	if !fullBackup {
		if last := r.cfg.LastRecord(); last != nil {
			prior = manifest.Load(last.ManifestPath)
		}
	}

	stager := stage.New(r.logger,
		stage.WithWorkers(r.cfg.MaxWorkers),
		stage.WithProgress(r.progress),
	)
	current, stats, err := stager.Stage(ctx, tasks, prior, fullBackup, stagingDir)
	if err != nil {
		return nil, err
	}
	r.logger.Info("staging complete",
		"processed", stats.Processed,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"bytes", stats.TotalBytes,
	)

	if stats.Processed == 0 {
		return nil, errors.Wrapf(errors.ErrNothingStaged,
			"%d skipped, %d errors", stats.Skipped, stats.Errors)
	}

	if err := current.Save(filepath.Join(stagingDir, manifest.FileName)); err != nil {
		return nil, err
	}

	artifactName := "backup_" + timestamp + "_" + shortType(fullBackup)
	if r.cfg.Compress {
		ext, err := archive.Ext(r.cfg.CompressionFormat)
		if err != nil {
			return nil, err
		}
		artifactName += ext
	}
	artifactPath := filepath.Join(r.cfg.Destination, artifactName)

	if err := os.MkdirAll(r.cfg.Destination, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating destination directory")
	}

	// Durable manifest copy, written before archiving so a crash between
	// the two leaves a manifest rather than losing one.
	manifestPath := filepath.Join(r.cfg.Destination, manifestDirName, artifactName+".json")
	if err := os.MkdirAll(filepath.Dir(manifestPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "creating manifest directory")
	}
	if err := current.Save(manifestPath); err != nil {
		return nil, err
	}

	if r.cfg.Compress {
		r.logger.Info("compressing backup", "format", r.cfg.CompressionFormat, "artifact", artifactPath)
		if err := archive.Compress(stagingDir, artifactPath, r.cfg.CompressionFormat); err != nil {
			return nil, errors.Wrapf(errors.ErrArchiveFailed, "compressing to %s: %v", artifactPath, err)
		}
	} else {
		r.logger.Info("copying backup", "artifact", artifactPath)
		if err := archive.CopyTree(stagingDir, artifactPath); err != nil {
			return nil, errors.Wrapf(errors.ErrArchiveFailed, "copying to %s: %v", artifactPath, err)
		}
	}

	record := config.HistoryRecord{
		Timestamp:      timestamp,
		Type:           runType,
		Path:           artifactPath,
		ManifestPath:   manifestPath,
		SizeBytes:      artifactSize(artifactPath),
		FileCount:      len(current),
		Processed:      stats.Processed,
		Skipped:        stats.Skipped,
		Errors:         stats.Errors,
		ElapsedSeconds: time.Since(startedAt).Seconds(),
	}

	r.cfg.AppendHistory(record)
	if err := r.cfg.Save(r.configPath); err != nil {
		return nil, errors.Wrap(err, "persisting history")
	}

	r.logger.Info("backup complete", "artifact", artifactPath, "files", record.FileCount)
	return &record, nil
}

// isFullBackup decides the run type: full when the history is empty, the
// configured type is "full", or today is the configured full-backup
// weekday.
func (r *Runner) isFullBackup(t time.Time) bool {
	if len(r.cfg.History) == 0 {
		return true
	}
	if r.cfg.BackupType == config.TypeFull {
		return true
	}
	return weekdayMondayZero(t) == r.cfg.Schedule.FullBackupDay
}

// weekdayMondayZero converts Go's Sunday-based weekday to the Monday=0
// numbering the configuration persists.
func weekdayMondayZero(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func shortType(fullBackup bool) string {
	if fullBackup {
		return "full"
	}
	return "diff"
}

// artifactSize returns the size of an artifact: the file size for an
// archive, the sum of contained file sizes for a directory artifact.
func artifactSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		return info.Size()
	}

	var total int64
	_ = filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += fi.Size()
		}
		return nil
	})
	return total
}
