// Package errors provides error handling conventions for the rbak CLI.
//
// This package wraps [github.com/cockroachdb/errors] so callers have a single
// import for constructing, wrapping and inspecting errors, and defines the
// sentinel errors, exit codes and [ExitError] type the CLI relies on.
//
// # Sentinel Errors
//
// Backup failures are classified with sentinels that callers check using
// [Is]:
//
//	if errors.Is(err, errors.ErrAlreadyExists) {
//	    // destination collision
//	}
//
// Resolution-time sentinels are [ErrNotFound], [ErrAlreadyExists],
// [ErrUnsupportedType], [ErrKindMismatch] and [ErrInvalidPath]. Copy-time
// sentinels are [ErrIO], [ErrAlreadyExists] and [ErrCycleDetected].
//
// # Exit Codes
//
//   - ExitSuccess (0): Command completed successfully
//   - ExitUser (1): User-related error (bad path, existing backup, configuration)
//   - ExitSystem (2): System-related error (I/O, permissions, symlink cycles)
//
// # ExitError
//
// [ExitError] wraps an underlying error with an exit code and optional
// suggestion. [Classify] maps any backup error to the matching ExitError:
//
//	exitErr := errors.Classify(err)
//	fmt.Fprintln(os.Stderr, exitErr.Error())
//	if exitErr.Suggestion != "" {
//	    fmt.Fprintln(os.Stderr, "Hint:", exitErr.Suggestion)
//	}
//	os.Exit(exitErr.Code)
package errors
