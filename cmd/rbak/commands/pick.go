package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/rbak/internal/backup"
	"github.com/thoreinstein/rbak/internal/errors"
	"github.com/thoreinstein/rbak/internal/logging"
)

// isInteractive reports whether a picker can be shown.
var isInteractive = func() bool {
	return logging.IsTTY(os.Stdin) && logging.IsTTY(os.Stdout)
}

// selectIndex lets the user choose one of items. It returns
// fuzzyfinder.ErrAbort when the user cancels.
var selectIndex = func(items []string, preview func(i int) string) (int, error) {
	return fuzzyfinder.Find(
		items,
		func(i int) string { return items[i] },
		fuzzyfinder.WithPromptString("backup> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return preview(i)
		}),
	)
}

// pickSource asks the user for a source of the given kind from dir. An empty
// path with a nil error means the user cancelled.
func pickSource(dir string, kind backup.Kind) (string, error) {
	usage := "Usage: rbak file <path>"
	if kind == backup.KindDirectory {
		usage = "Usage: rbak dir <path>"
	}
	if !isInteractive() {
		return "", errors.NewUserError(errors.Wrap(errors.ErrInvalidPath, "no path given"), usage)
	}

	cfg := currentConfig()
	names, err := candidates(dir, kind, cfg.FileExtension, cfg.DirSuffix)
	if err != nil {
		return "", err
	}
	if len(names) == 0 {
		return "", errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "no %s to back up in %s", kindPlural(kind), dir), usage)
	}

	resolver := backup.NewResolver(cfg.FileExtension, cfg.DirSuffix, cfg.Overwrite)
	idx, err := selectIndex(names, func(i int) string {
		target, err := resolver.Resolve(filepath.Join(dir, names[i]))
		if err != nil {
			return "Cannot back up:\n" + err.Error()
		}
		return fmt.Sprintf("Source:\n  %s\n\nBackup:\n  %s", target.Source, target.Destination)
	})
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return "", nil
		}
		return "", errors.Wrap(err, "interactive selection failed")
	}

	return filepath.Join(dir, names[idx]), nil
}

// candidates lists the entries of dir that can be backed up as kind, leaving
// out names that already look like backups.
func candidates(dir string, kind backup.Kind, fileExt, dirSuffix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "reading %s", dir), errors.ErrIO)
	}

	var names []string
	for _, e := range entries {
		info, err := os.Stat(filepath.Join(dir, e.Name()))
		if err != nil || backup.KindOf(info.Mode()) != kind {
			continue
		}
		if isBackupName(e.Name(), kind, fileExt, dirSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)
	return names, nil
}

func isBackupName(name string, kind backup.Kind, fileExt, dirSuffix string) bool {
	if kind == backup.KindFile {
		if fileExt == "" {
			fileExt = backup.DefaultFileExtension
		}
		return backup.FileBackupName(name, fileExt) == name
	}
	if dirSuffix == "" {
		dirSuffix = backup.DefaultDirSuffix
	}
	return len(name) > len(dirSuffix) && strings.HasSuffix(name, dirSuffix)
}

func kindPlural(kind backup.Kind) string {
	if kind == backup.KindDirectory {
		return "directories"
	}
	return "files"
}
