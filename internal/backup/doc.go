// Package backup orchestrates complete backup runs.
//
// A run moves through a fixed sequence: decide full vs. differential,
// enumerate source files, stage changed content in parallel, write the
// manifest, archive (or copy) the staged tree to the destination, and
// append a history record. Any stage can fail the run; per-file problems
// cannot.
//
// # Full vs. Differential
//
// A run is full when the history is empty, the configured backup type is
// "full", or the run starts on the configured full-backup weekday.
// Otherwise it is differential and only files whose content digest differs
// from the prior manifest are staged.
//
// # Artifacts
//
// Artifacts are named backup_<YYYYMMDD_HHMMSS>_<full|diff> with a .zip or
// .tar.gz extension when compression is enabled, and are plain directories
// otherwise. Each run also writes a durable copy of its manifest under
// <destination>/.manifests/ so the next differential run has a prior
// manifest even after the staging directory is gone.
//
// # Failure Semantics
//
// Run returns errors that wrap stage-specific sentinels from
// internal/errors (ErrNoSources, ErrNoFilesFound, ErrNothingStaged,
// ErrArchiveFailed), so callers can distinguish configuration mistakes
// from empty runs and archiving problems without parsing messages.
package backup
