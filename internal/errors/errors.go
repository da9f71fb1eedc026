package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Re-exported helpers from cockroachdb/errors. Keeping a single import path
// for error construction makes it trivial to swap the underlying library.
var (
	New    = errors.New
	Newf   = errors.Newf
	Wrap   = errors.Wrap
	Wrapf  = errors.Wrapf
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
)

// Exit codes for CLI applications.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitUser indicates a user-related error (invalid input, configuration, etc.).
	ExitUser = 1

	// ExitSystem indicates a system-related error (I/O, permissions, etc.).
	ExitSystem = 2
)

// Sentinel errors for the distinct ways a backup run can fail.
// The orchestrator wraps these with context so callers can both log a
// readable message and branch on the failure stage.
var (
	// ErrNoSources indicates no backup sources are configured.
	ErrNoSources = errors.New("no backup sources configured")

	// ErrNoDestination indicates no backup destination is configured.
	ErrNoDestination = errors.New("no backup destination configured")

	// ErrNoFilesFound indicates enumeration produced zero files.
	ErrNoFilesFound = errors.New("no files found")

	// ErrNothingStaged indicates every enumerated file was skipped or errored.
	ErrNothingStaged = errors.New("nothing staged")

	// ErrArchiveFailed indicates the staged tree could not be archived or
	// copied to the destination.
	ErrArchiveFailed = errors.New("archiving failed")

	// ErrNoBackupsFound indicates the history contains no backup records.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrUnsupportedFormat indicates an unrecognized archive or compression format.
	ErrUnsupportedFormat = errors.New("unsupported archive format")
)

// ExitError wraps an error with an exit code and optional suggestion for CLI applications.
// It implements the error interface and supports unwrapping via errors.Unwrap.
type ExitError struct {
	// Err is the underlying error that caused the exit.
	Err error

	// Code is the exit code to return to the operating system.
	Code int

	// Suggestion is an optional actionable suggestion for the user.
	Suggestion string
}

// NewUserError creates an ExitError with ExitUser code and a suggestion.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitUser,
		Suggestion: suggestion,
	}
}

// NewSystemError creates an ExitError with ExitSystem code and a suggestion.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{
		Err:        err,
		Code:       ExitSystem,
		Suggestion: suggestion,
	}
}

// Error returns the error message from the underlying error.
// If the underlying error is nil, it returns a generic message with the exit code.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error, enabling errors.Is and errors.As
// to examine the error chain.
func (e *ExitError) Unwrap() error {
	return e.Err
}
