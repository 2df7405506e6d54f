// Package logging builds the slog loggers used by rbak.
//
// Terminal output goes through [Handler], a compact colorized text handler,
// or through slog's JSON handler with --log-format json. With --log-file the
// same records are also appended as JSON to a size-rotated file:
//
//	level, err := logging.ResolveLevel(verbosity, quiet)
//	logger, closer := logging.New(logging.Options{
//		Level:  level,
//		Format: logging.FormatText,
//		File:   "/var/log/rbak.log",
//	})
//	defer closer.Close()
//
// The logger travels to subcommands in the command context; see
// [NewContext] and [FromContext]. Tests use [ForTest], and library code
// without a logger uses [NewDiscard].
package logging
