package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestExitError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *ExitError
		want string
	}{
		{
			name: "with underlying error",
			err:  NewUserError(ErrNotFound, ""),
			want: "source not found",
		},
		{
			name: "with wrapped error",
			err:  NewConfigError(fmt.Errorf("loading config: %w", ErrInvalidConfig)),
			want: "loading config: invalid configuration",
		},
		{
			name: "nil underlying error",
			err:  NewUserError(nil, ""),
			want: "exit code 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("ExitError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	tests := []struct {
		name       string
		err        *ExitError
		wantTarget error
		wantIs     bool
	}{
		{
			name:       "unwrap to sentinel error",
			err:        NewUserError(ErrAlreadyExists, ""),
			wantTarget: ErrAlreadyExists,
			wantIs:     true,
		},
		{
			name:       "unwrap through wrapped error",
			err:        NewSystemError(Wrap(ErrIO, "copying a.txt"), ""),
			wantTarget: ErrIO,
			wantIs:     true,
		},
		{
			name:       "no match for different sentinel",
			err:        NewUserError(ErrNotFound, ""),
			wantTarget: ErrInvalidConfig,
			wantIs:     false,
		},
		{
			name:       "nil underlying error",
			err:        NewUserError(nil, ""),
			wantTarget: ErrNotFound,
			wantIs:     false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.wantTarget); got != tt.wantIs {
				t.Errorf("Is() = %v, want %v", got, tt.wantIs)
			}
		})
	}
}

func TestExitError_As(t *testing.T) {
	err := fmt.Errorf("command failed: %w", NewUserError(ErrInvalidPath, "pass a path"))

	var exitErr *ExitError
	if !stderrors.As(err, &exitErr) {
		t.Fatal("errors.As() should find ExitError")
	}
	if exitErr.Code != ExitUser {
		t.Errorf("Code = %d, want %d", exitErr.Code, ExitUser)
	}
	if exitErr.Suggestion != "pass a path" {
		t.Errorf("Suggestion = %q, want %q", exitErr.Suggestion, "pass a path")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantCode       int
		wantSuggestion string
	}{
		{
			name:           "not found",
			err:            Wrapf(ErrNotFound, "stat %s", "/tmp/missing"),
			wantCode:       ExitUser,
			wantSuggestion: "Check the path and try again",
		},
		{
			name:           "already exists",
			err:            Wrap(ErrAlreadyExists, "notes.bak"),
			wantCode:       ExitUser,
			wantSuggestion: "Remove the existing backup or re-run with --force",
		},
		{
			name:           "hint overrides default",
			err:            WithHint(Wrap(ErrAlreadyExists, "proj_bak"), "Remove /tmp/proj_bak"),
			wantCode:       ExitUser,
			wantSuggestion: "Remove /tmp/proj_bak",
		},
		{
			name:     "io is a system error",
			err:      Wrap(ErrIO, "copying sub/b.txt"),
			wantCode: ExitSystem,
		},
		{
			name:           "cycle is a system error",
			err:            ErrCycleDetected,
			wantCode:       ExitSystem,
			wantSuggestion: "Re-run without --follow-symlinks",
		},
		{
			name:           "invalid path has no default suggestion",
			err:            Wrap(ErrInvalidPath, "empty path"),
			wantCode:       ExitUser,
			wantSuggestion: "",
		},
		{
			name:     "config error also marked as io stays a user error",
			err:      Mark(Wrap(ErrInvalidConfig, "version"), ErrIO),
			wantCode: ExitUser,
		},
		{
			name:     "unclassified error",
			err:      New("boom"),
			wantCode: ExitSystem,
		},
		{
			name:           "existing exit error kept",
			err:            Wrap(NewUserError(ErrNotFound, "custom"), "outer"),
			wantCode:       ExitUser,
			wantSuggestion: "custom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("Classify().Code = %d, want %d", got.Code, tt.wantCode)
			}
			if got.Suggestion != tt.wantSuggestion {
				t.Errorf("Classify().Suggestion = %q, want %q", got.Suggestion, tt.wantSuggestion)
			}
		})
	}
}

func TestClassify_Nil(t *testing.T) {
	if got := Classify(nil); got != nil {
		t.Errorf("Classify(nil) = %v, want nil", got)
	}
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrNotFound", ErrNotFound, "source not found"},
		{"ErrAlreadyExists", ErrAlreadyExists, "destination already exists"},
		{"ErrUnsupportedType", ErrUnsupportedType, "unsupported file type"},
		{"ErrKindMismatch", ErrKindMismatch, "wrong entity kind"},
		{"ErrInvalidPath", ErrInvalidPath, "invalid path"},
		{"ErrIO", ErrIO, "i/o error"},
		{"ErrCycleDetected", ErrCycleDetected, "symlink cycle detected"},
		{"ErrInvalidConfig", ErrInvalidConfig, "invalid configuration"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantMsg {
				t.Errorf("%s.Error() = %q, want %q", tt.name, got, tt.wantMsg)
			}
		})
	}
}

func TestNewConstructors(t *testing.T) {
	t.Run("NewSystemError", func(t *testing.T) {
		e := NewSystemError(ErrIO, "check disk space")
		if e.Code != ExitSystem {
			t.Errorf("Code = %d, want %d", e.Code, ExitSystem)
		}
		if e.Suggestion != "check disk space" {
			t.Errorf("Suggestion = %q, want 'check disk space'", e.Suggestion)
		}
	})

	t.Run("NewConfigError", func(t *testing.T) {
		e := NewConfigError(ErrInvalidConfig)
		if e.Code != ExitUser {
			t.Errorf("Code = %d, want %d", e.Code, ExitUser)
		}
		if !strings.Contains(e.Suggestion, "rbak config edit") {
			t.Errorf("Suggestion = %q, want it to mention 'rbak config edit'", e.Suggestion)
		}
	})
}
