package errors

import (
	"fmt"

	crdb "github.com/cockroachdb/errors"
)

// Process exit codes.
const (
	ExitSuccess = 0
	ExitUser    = 1 // bad arguments, existing backup, invalid config
	ExitSystem  = 2 // I/O failures and symlink cycles
)

// Sentinel errors for common failure conditions.
var (
	// ErrNotFound indicates the backup source does not exist.
	ErrNotFound = crdb.New("source not found")

	// ErrAlreadyExists indicates the backup destination already exists.
	ErrAlreadyExists = crdb.New("destination already exists")

	// ErrUnsupportedType indicates an entry that is neither a regular file nor
	// a directory (device, socket, FIFO, symlink, broken symlink).
	ErrUnsupportedType = crdb.New("unsupported file type")

	// ErrKindMismatch indicates a file was given where a directory was
	// expected, or the reverse.
	ErrKindMismatch = crdb.New("wrong entity kind")

	// ErrInvalidPath indicates the provided path is empty or malformed.
	ErrInvalidPath = crdb.New("invalid path")

	// ErrIO indicates a read, write or create failure.
	ErrIO = crdb.New("i/o error")

	// ErrCycleDetected indicates a followed symlink leads back to a directory
	// that is already being copied.
	ErrCycleDetected = crdb.New("symlink cycle detected")

	// ErrInvalidConfig indicates configuration validation failed.
	ErrInvalidConfig = crdb.New("invalid configuration")
)

// The cockroachdb/errors functions rbak uses, so callers need one import.
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	Is           = crdb.Is
	As           = crdb.As
	Mark         = crdb.Mark
	WithHint     = crdb.WithHint
	WithHintf    = crdb.WithHintf
	FlattenHints = crdb.FlattenHints
)

// ExitError carries the process exit code for a failed command, plus an
// optional one-line suggestion printed after the error.
type ExitError struct {
	Err        error
	Code       int
	Suggestion string
}

// NewUserError marks err as caused by the user's input or configuration.
func NewUserError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitUser, Suggestion: suggestion}
}

// NewSystemError marks err as caused by the environment, such as a failed
// read or write.
func NewSystemError(err error, suggestion string) *ExitError {
	return &ExitError{Err: err, Code: ExitSystem, Suggestion: suggestion}
}

// NewConfigError reports an unusable config file and points at the commands
// that repair it.
func NewConfigError(err error) *ExitError {
	return NewUserError(err, "Fix it with: rbak config edit, or reset it with: rbak config init --force")
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit code %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// classification maps a sentinel to its exit code and default suggestion.
type classification struct {
	sentinel   error
	code       int
	suggestion string
}

// classifications are checked in order; the first sentinel found in the
// chain wins. Errors matching none of them are system errors.
var classifications = []classification{
	{ErrNotFound, ExitUser, "Check the path and try again"},
	{ErrAlreadyExists, ExitUser, "Remove the existing backup or re-run with --force"},
	{ErrUnsupportedType, ExitUser, "Only regular files and directories can be backed up"},
	{ErrKindMismatch, ExitUser, "Use 'rbak file' for files and 'rbak dir' for directories"},
	{ErrInvalidPath, ExitUser, ""},
	{ErrInvalidConfig, ExitUser, ""},
	{ErrCycleDetected, ExitSystem, "Re-run without --follow-symlinks"},
	{ErrIO, ExitSystem, ""},
}

// Classify converts err into an ExitError. An ExitError already in the chain
// is returned as is. Otherwise the code comes from the first matching
// sentinel, and hints attached with WithHint replace the default suggestion.
func Classify(err error) *ExitError {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if As(err, &exitErr) {
		return exitErr
	}

	out := &ExitError{Err: err, Code: ExitSystem}
	for _, c := range classifications {
		if Is(err, c.sentinel) {
			out.Code, out.Suggestion = c.code, c.suggestion
			break
		}
	}
	if hint := FlattenHints(err); hint != "" {
		out.Suggestion = hint
	}
	return out
}
