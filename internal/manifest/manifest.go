// Package manifest records which file contents a backup run captured.
//
// A manifest is a flat JSON object mapping archive-relative paths to
// hex-encoded content digests. One is written per run and loaded back as
// the "prior" manifest on the next differential run to detect change.
package manifest

import (
	"github.com/syncvault/syncvault/internal/errors"
	"github.com/syncvault/syncvault/pkg/fileutil"
)

// FileName is the name of the manifest file inside a staging directory.
const FileName = "manifest.json"

// Manifest maps archive-relative paths to content digests.
// Key insertion order is irrelevant; equality of key sets and values is
// what matters.
type Manifest map[string]string

// Load reads a manifest from path.
// A missing or unreadable manifest yields an empty manifest rather than an
// error: differential runs degrade to staging everything, which is safe.
func Load(path string) Manifest {
	if path == "" {
		return Manifest{}
	}

	var m Manifest
	if err := fileutil.ReadJSON(path, &m); err != nil {
		return Manifest{}
	}
	if m == nil {
		m = Manifest{}
	}
	return m
}

// Save writes the manifest to path atomically as indented JSON.
func (m Manifest) Save(path string) error {
	if err := fileutil.AtomicWriteJSON(path, m); err != nil {
		return errors.Wrap(err, "writing manifest")
	}
	return nil
}

// ShouldStage decides whether a file belongs in the staged set.
//
// A full backup stages everything. A differential backup stages the file
// unless the prior manifest has an entry for relPath whose digest is
// byte-for-byte equal to the freshly computed one. There are no size-only
// or mtime shortcuts; digest equality is the only skip condition.
func (m Manifest) ShouldStage(relPath, digest string, fullBackup bool) bool {
	if fullBackup {
		return true
	}
	prior, ok := m[relPath]
	return !ok || prior != digest
}
