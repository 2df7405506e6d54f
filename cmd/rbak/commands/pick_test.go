package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ktr0731/go-fuzzyfinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/rbak/internal/backup"
	"github.com/thoreinstein/rbak/internal/errors"
)

// stubPicker replaces the terminal checks and the finder for one test.
func stubPicker(t *testing.T, interactive bool, choose func(items []string, preview func(int) string) (int, error)) {
	t.Helper()
	origInteractive, origSelect := isInteractive, selectIndex
	isInteractive = func() bool { return interactive }
	if choose != nil {
		selectIndex = choose
	}
	t.Cleanup(func() {
		isInteractive, selectIndex = origInteractive, origSelect
	})
}

func pickFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.txt", "a.bak", "README"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
	for _, name := range []string{"proj", "docs", "proj_bak"} {
		require.NoError(t, os.Mkdir(filepath.Join(dir, name), 0o755))
	}
	require.NoError(t, os.Symlink("b.txt", filepath.Join(dir, "link.txt")))
	return dir
}

func TestCandidates(t *testing.T) {
	dir := pickFixture(t)

	files, err := candidates(dir, backup.KindFile, "bak", "_bak")
	require.NoError(t, err)
	assert.Equal(t, []string{"README", "a.txt", "b.txt", "link.txt"}, files)

	dirs, err := candidates(dir, backup.KindDirectory, "bak", "_bak")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs", "proj"}, dirs)
}

func TestCandidates_MissingDir(t *testing.T) {
	_, err := candidates(filepath.Join(t.TempDir(), "missing"), backup.KindFile, "", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrIO))
}

func TestPickSource_NotInteractive(t *testing.T) {
	resetGlobals(t)
	stubPicker(t, false, nil)

	_, err := pickSource(t.TempDir(), backup.KindFile)
	require.Error(t, err)

	exitErr := errors.Classify(err)
	assert.Equal(t, errors.ExitUser, exitErr.Code)
	assert.Equal(t, "Usage: rbak file <path>", exitErr.Suggestion)
	assert.True(t, errors.Is(err, errors.ErrInvalidPath))
}

func TestPickSource_Selects(t *testing.T) {
	resetGlobals(t)
	dir := pickFixture(t)

	var previews []string
	stubPicker(t, true, func(items []string, preview func(int) string) (int, error) {
		for i := range items {
			previews = append(previews, preview(i))
		}
		return 1, nil
	})

	got, err := pickSource(dir, backup.KindDirectory)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "proj"), got)

	require.Len(t, previews, 2)
	assert.Contains(t, previews[1], "proj_bak")
	assert.Contains(t, previews[1], "Cannot back up", "proj_bak already exists")
}

func TestPickSource_Abort(t *testing.T) {
	resetGlobals(t)
	stubPicker(t, true, func([]string, func(int) string) (int, error) {
		return 0, fuzzyfinder.ErrAbort
	})

	got, err := pickSource(pickFixture(t), backup.KindFile)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPickSource_NothingToPick(t *testing.T) {
	resetGlobals(t)
	stubPicker(t, true, func([]string, func(int) string) (int, error) {
		t.Fatal("finder should not open without candidates")
		return 0, nil
	})

	_, err := pickSource(t.TempDir(), backup.KindDirectory)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestIsBackupName(t *testing.T) {
	tests := []struct {
		name string
		kind backup.Kind
		want bool
	}{
		{"notes.bak", backup.KindFile, true},
		{"notes.txt", backup.KindFile, false},
		{".bak", backup.KindFile, false},
		{"proj_bak", backup.KindDirectory, true},
		{"_bak", backup.KindDirectory, false},
		{"proj", backup.KindDirectory, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isBackupName(tt.name, tt.kind, "", ""))
		})
	}
}
