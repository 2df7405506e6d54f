package logging

import (
	"context"
	"log/slog"
	"os"

	"github.com/thoreinstein/rbak/internal/errors"
)

// LevelTrace is below Debug. It is enabled by -vvv or RBAK_DEBUG=2.
const LevelTrace = slog.LevelDebug - 4

// DebugEnv names the environment variable that raises verbosity when no -v
// flag is given: "1" or "true" selects Debug, "2" selects Trace.
const DebugEnv = "RBAK_DEBUG"

// ResolveLevel picks the terminal log level from the -v count, the -q flag
// and DebugEnv. Quiet shows errors only and cannot be combined with -v.
func ResolveLevel(verbosity int, quiet bool) (slog.Level, error) {
	if quiet {
		if verbosity > 0 {
			return 0, errors.New("--quiet and --verbose are mutually exclusive")
		}
		return slog.LevelError, nil
	}

	if verbosity == 0 {
		switch os.Getenv(DebugEnv) {
		case "1", "true":
			verbosity = 2
		case "2":
			verbosity = 3
		}
	}
	return LevelFromVerbosity(verbosity), nil
}

// LevelFromVerbosity maps the count of -v flags to a log level.
// Zero or less shows warnings and errors only.
func LevelFromVerbosity(v int) slog.Level {
	switch {
	case v <= 0:
		return slog.LevelWarn
	case v == 1:
		return slog.LevelInfo
	case v == 2:
		return slog.LevelDebug
	default:
		return LevelTrace
	}
}

// LevelName returns the display name of a level, naming LevelTrace "TRACE".
func LevelName(l slog.Level) string {
	if l <= LevelTrace {
		return "TRACE"
	}
	return l.String()
}

type ctxKey struct{}

// NewContext returns a copy of ctx carrying logger.
func NewContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext returns the logger stored in ctx, or slog.Default if there is
// none.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
			return l
		}
	}
	return slog.Default()
}
