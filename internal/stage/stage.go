// Package stage implements the parallel staging pipeline at the heart of a
// backup run.
//
// A bounded pool of workers hashes each enumerated file, classifies it
// against the prior manifest, and copies qualifying files into the staging
// directory. Workers never share mutable state; every per-task outcome is
// sent over a channel to a single reducer that builds the run manifest and
// statistics. The manifest and stats are only handed back after all
// workers have finished, so callers never observe partial state.
package stage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/syncvault/syncvault/internal/digest"
	"github.com/syncvault/syncvault/internal/enumerate"
	"github.com/syncvault/syncvault/internal/errors"
	"github.com/syncvault/syncvault/internal/manifest"
	"github.com/syncvault/syncvault/pkg/fileutil"
)

// MaxWorkers caps the worker pool regardless of configuration.
const MaxWorkers = 32

// DefaultWorkers returns the default pool size: twice the available CPU
// parallelism, capped at MaxWorkers.
func DefaultWorkers() int {
	n := runtime.NumCPU() * 2
	if n > MaxWorkers {
		n = MaxWorkers
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Stats aggregates per-file outcomes for one run.
// Invariant: Processed + Skipped + Errors equals the number of tasks
// dispatched to the pool.
type Stats struct {
	// Processed counts files copied into the staging directory.
	Processed int
	// Skipped counts files left out because their content was unchanged.
	Skipped int
	// Errors counts files dropped because hashing or copying failed.
	Errors int
	// TotalBytes sums the sizes of processed files.
	TotalBytes int64
}

// Tasks returns the total number of tasks accounted for.
func (s Stats) Tasks() int {
	return s.Processed + s.Skipped + s.Errors
}

// outcome classifies what happened to a single task.
type outcome int

const (
	outcomeStaged outcome = iota
	outcomeSkipped
	outcomeErrored
)

// result is the message a worker sends to the reducer for each task.
type result struct {
	outcome outcome
	relPath string
	digest  string
	bytes   int64
}

// Stager runs the staging pipeline.
type Stager struct {
	workers  int
	logger   *slog.Logger
	progress func(done, total int)
}

// Option configures a Stager.
type Option func(*Stager)

// WithWorkers sets the number of pool workers. Values below 1 fall back to
// DefaultWorkers; values above MaxWorkers are capped.
func WithWorkers(n int) Option {
	return func(s *Stager) {
		switch {
		case n < 1:
			s.workers = DefaultWorkers()
		case n > MaxWorkers:
			s.workers = MaxWorkers
		default:
			s.workers = n
		}
	}
}

// WithProgress registers a callback invoked by the reducer after every
// completed task. done counts completed tasks, total the tasks submitted.
// The callback runs on the reducer goroutine only.
func WithProgress(fn func(done, total int)) Option {
	return func(s *Stager) {
		s.progress = fn
	}
}

// New creates a Stager with the given options.
func New(logger *slog.Logger, opts ...Option) *Stager {
	s := &Stager{
		workers: DefaultWorkers(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Stage processes every task and returns the manifest of this run along
// with aggregated stats.
//
// Per-file failures are absorbed: the file is logged, counted in
// Stats.Errors, and dropped from the manifest. They never abort sibling
// tasks. Unchanged files in a differential run are skipped but their prior
// manifest entries are carried forward, so the returned manifest always
// describes the complete file set known as of this run.
//
// Stage returns an error only when ctx is cancelled; in that case the
// returned manifest and stats cover the tasks dispatched before
// cancellation.
func (s *Stager) Stage(ctx context.Context, tasks []enumerate.Task, prior manifest.Manifest, fullBackup bool, stagingDir string) (manifest.Manifest, Stats, error) {
	taskCh := make(chan enumerate.Task)
	resultCh := make(chan result)

	workers := s.workers
	if workers > len(tasks) && len(tasks) > 0 {
		workers = len(tasks)
	}

	done := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for task := range taskCh {
				resultCh <- s.processTask(task, prior, fullBackup, stagingDir)
			}
		}()
	}

	// Feed tasks, stopping early on cancellation. Submission order is
	// irrelevant; completion order is whatever the workers produce.
	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			select {
			case <-ctx.Done():
				return
			case taskCh <- task:
			}
		}
	}()

	go func() {
		for i := 0; i < workers; i++ {
			<-done
		}
		close(resultCh)
	}()

	// Single-threaded reduce: the only place manifest and stats are written.
	current := manifest.Manifest{}
	var stats Stats
	completed := 0
	for res := range resultCh {
		switch res.outcome {
		case outcomeStaged:
			stats.Processed++
			stats.TotalBytes += res.bytes
			current[res.relPath] = res.digest
		case outcomeSkipped:
			stats.Skipped++
			// Carry the unchanged entry forward so the manifest stays
			// complete relative to the files known this run.
			current[res.relPath] = res.digest
		case outcomeErrored:
			stats.Errors++
		}
		completed++
		if s.progress != nil {
			s.progress(completed, len(tasks))
		}
	}

	if err := ctx.Err(); err != nil {
		return current, stats, errors.Wrap(err, "staging cancelled")
	}
	return current, stats, nil
}

// processTask runs the hash → classify → copy pipeline for one file.
// All failure paths collapse into an errored result; a panic from
// unexpected filesystem state is contained the same way so it cannot take
// down sibling workers.
func (s *Stager) processTask(task enumerate.Task, prior manifest.Manifest, fullBackup bool, stagingDir string) (res result) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while processing file", "path", task.AbsPath, "panic", r)
			res = result{outcome: outcomeErrored}
		}
	}()

	dig, err := digest.File(task.AbsPath)
	if err != nil {
		s.logger.Error("hashing failed", "path", task.AbsPath, "error", err)
		return result{outcome: outcomeErrored}
	}

	if !prior.ShouldStage(task.RelPath, dig, fullBackup) {
		s.logger.Debug("unchanged, skipping", "path", task.AbsPath)
		return result{outcome: outcomeSkipped, relPath: task.RelPath, digest: dig}
	}

	size, err := copyFile(task.AbsPath, filepath.Join(stagingDir, task.RelPath))
	if err != nil {
		s.logger.Error("staging copy failed", "path", task.AbsPath, "error", err)
		return result{outcome: outcomeErrored}
	}

	return result{outcome: outcomeStaged, relPath: task.RelPath, digest: dig, bytes: size}
}

// copyFile copies src to dst, creating parent directories. Concurrent
// MkdirAll calls on shared parents are idempotent, so no locking is needed
// here.
func copyFile(src, dst string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, errors.Wrap(err, "creating staging directory")
	}
	return fileutil.CopyFile(src, dst)
}
