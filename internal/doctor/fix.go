package doctor

// Fixer is an optional interface that checks can implement to support
// auto-remediation. Checks that implement Fixer can fix issues they
// detect when the --fix flag is used.
type Fixer interface {
	// CanFix returns true if this check has fixable issues.
	// Must be called after Run().
	CanFix() bool

	// Fix attempts to remediate the issues found by Run().
	// Returns a FixResult for each attempted fix.
	Fix() []FixResult
}

// FixResult describes the outcome of an attempted fix operation.
type FixResult struct {
	// Path is the file or directory that was targeted for fixing.
	Path string

	// Fixed indicates whether the fix was successfully applied.
	Fixed bool

	// Description explains what was fixed or why it couldn't be fixed.
	Description string

	// Error contains the error if the fix failed.
	Error error
}
