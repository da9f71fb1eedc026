// Package errors provides error handling conventions for the syncvault CLI.
//
// This package re-exports the wrapping helpers from
// github.com/cockroachdb/errors so that the rest of the codebase needs a
// single errors import, defines sentinel errors for the distinct ways a
// backup run can fail, and provides an ExitError type for CLI exit code
// handling.
//
// # Sentinel Errors
//
// Sentinel errors allow callers to distinguish failure stages
// programmatically using [Is]:
//
//	if errors.Is(err, vaulterrors.ErrNothingStaged) {
//	    // every file was unchanged or unreadable
//	}
//
// # Exit Codes
//
// The package defines standard exit codes for CLI applications:
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (invalid input, configuration, etc.)
//   - ExitSystem (2): System-related error (I/O, permissions, etc.)
package errors
