package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/thoreinstein/rbak/internal/errors"
)

// Format specifies the output format for terminal log messages.
type Format string

const (
	// FormatText produces human-readable text output.
	FormatText Format = "text"
	// FormatJSON produces machine-readable JSON output.
	FormatJSON Format = "json"
)

// ParseFormat parses a --log-format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return f, nil
	default:
		return "", errors.Newf("unknown log format %q (valid: text, json)", s)
	}
}

// Rotation limits for the log file.
const (
	maxLogFileMB  = 10
	maxLogBackups = 3
	maxLogAgeDays = 28
)

// Options describes the logger built from the global CLI flags.
type Options struct {
	// Level is the minimum level written to Output.
	Level slog.Level

	// Format selects the terminal format. Unknown values mean FormatText.
	Format Format

	// Output receives terminal logs. Defaults to os.Stderr.
	Output io.Writer

	// File, when set, also appends JSON logs to this path. The file is
	// rotated by size and keeps debug records even when Level is higher.
	File string
}

// New creates a logger from opts. The returned io.Closer releases the log
// file and must be closed when the program is done logging; it is a no-op
// when opts.File is empty.
func New(opts Options) (*slog.Logger, io.Closer) {
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	handlerOpts := &slog.HandlerOptions{Level: opts.Level}
	var terminal slog.Handler
	if opts.Format == FormatJSON {
		terminal = slog.NewJSONHandler(out, handlerOpts)
	} else {
		terminal = NewHandler(out, handlerOpts)
	}

	if opts.File == "" {
		return slog.New(terminal), nopCloser{}
	}

	file := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    maxLogFileMB,
		MaxBackups: maxLogBackups,
		MaxAge:     maxLogAgeDays,
		Compress:   true,
	}
	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: min(opts.Level, slog.LevelDebug),
	})

	return slog.New(tee(terminal, fileHandler)), file
}

// NewDiscard creates a logger that discards all output.
func NewDiscard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// ForTest creates a debug-level logger writing to the test's output, which
// is shown only for failing tests or with -v.
func ForTest(tb testing.TB) *slog.Logger {
	tb.Helper()
	return slog.New(NewHandler(tb.Output(), &slog.HandlerOptions{Level: slog.LevelDebug}))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
