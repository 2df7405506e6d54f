package commands

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thoreinstein/rbak/internal/backup"
	"github.com/thoreinstein/rbak/internal/errors"
)

func TestPrintError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  []string
	}{
		{
			name:     "nil",
			err:      nil,
			wantCode: errors.ExitSuccess,
		},
		{
			name:     "user error with hint",
			err:      errors.WithHint(errors.Wrapf(errors.ErrAlreadyExists, "/tmp/notes.bak"), "Remove /tmp/notes.bak or re-run with --force"),
			wantCode: errors.ExitUser,
			wantOut:  []string{"Error: /tmp/notes.bak: destination already exists", "Hint: Remove /tmp/notes.bak or re-run with --force"},
		},
		{
			name: "partial tree copy",
			err: &backup.CopyError{
				Op: "copying", RelPath: "a/b.txt", Path: "/src/a/b.txt", Destination: "/src_bak", Partial: true,
				Err: errors.Mark(errors.New("permission denied"), errors.ErrIO),
			},
			wantCode: errors.ExitSystem,
			wantOut:  []string{"copying a/b.txt: permission denied", "backup is partial: /src_bak was left in place"},
		},
		{
			name:     "cycle",
			err:      errors.Wrap(errors.ErrCycleDetected, "loop"),
			wantCode: errors.ExitSystem,
			wantOut:  []string{"Hint: Re-run without --follow-symlinks"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, tt.wantCode, PrintError(&buf, tt.err))
			for _, want := range tt.wantOut {
				assert.Contains(t, buf.String(), want)
			}
			if tt.err == nil {
				assert.Empty(t, buf.String())
			}
		})
	}
}
