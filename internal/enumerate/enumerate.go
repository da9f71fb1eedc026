// Package enumerate walks configured backup sources and produces the flat
// list of file tasks a run operates on.
package enumerate

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/syncvault/syncvault/internal/exclude"
)

// Task is one file to consider for backup. Tasks are immutable and each is
// consumed by exactly one stager worker.
type Task struct {
	// AbsPath is the absolute path of the file on disk.
	AbsPath string

	// RelPath is the archive-relative path. For a directory source it is
	// relative to the parent of the source root, so the root's own name
	// becomes the top-level folder inside the backup. For a single-file
	// source it is the file's base name.
	RelPath string
}

// Enumerator collects backup tasks from configured sources.
type Enumerator struct {
	filter *exclude.Filter
	logger *slog.Logger
}

// New creates an Enumerator. A nil filter excludes nothing.
func New(filter *exclude.Filter, logger *slog.Logger) *Enumerator {
	if filter == nil {
		filter = exclude.NewFilter(nil)
	}
	return &Enumerator{filter: filter, logger: logger}
}

// Collect enumerates every non-excluded file under the given sources.
//
// A source that does not exist is logged as a warning and skipped; this is
// never fatal. Unreadable subdirectories are likewise logged and skipped.
// Symlinks are not followed, which also rules out walk cycles.
// Output order follows filesystem enumeration order and is not guaranteed
// stable across runs; manifests key by RelPath so ordering is irrelevant
// downstream.
func (e *Enumerator) Collect(sources []string) []Task {
	var tasks []Task

	for _, source := range sources {
		info, err := os.Lstat(source)
		if err != nil {
			e.logger.Warn("backup source does not exist, skipping", "source", source)
			continue
		}

		if !info.IsDir() {
			if info.Mode()&fs.ModeSymlink != 0 {
				e.logger.Warn("backup source is a symlink, skipping", "source", source)
				continue
			}
			if !e.filter.Match(source) {
				tasks = append(tasks, Task{AbsPath: source, RelPath: filepath.Base(source)})
			}
			continue
		}

		tasks = append(tasks, e.collectDir(source)...)
	}

	return tasks
}

// collectDir walks a directory source. Relative paths are computed against
// the parent of the source root.
func (e *Enumerator) collectDir(source string) []Task {
	var tasks []Task
	base := filepath.Dir(source)

	err := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			e.logger.Warn("cannot read path, skipping", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		// WalkDir does not descend into symlinked directories; skipping
		// symlinked files as well keeps the staged tree free of links
		// whose targets may lie outside the source.
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if e.filter.Match(path) {
			return nil
		}

		rel, err := filepath.Rel(base, path)
		if err != nil {
			e.logger.Warn("cannot resolve relative path, skipping", "path", path, "error", err)
			return nil
		}
		tasks = append(tasks, Task{AbsPath: path, RelPath: rel})
		return nil
	})
	if err != nil {
		e.logger.Warn("walking source failed", "source", source, "error", err)
	}

	return tasks
}
