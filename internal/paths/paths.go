package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/thoreinstein/rbak/internal/errors"
)

// AppName is the directory name used under the XDG base directories.
const AppName = "rbak"

// ConfigFileName is the base name of the configuration file.
const ConfigFileName = "config.yaml"

// ConfigDir returns the rbak configuration directory, <ConfigHome>/rbak.
// ConfigHome is ~/.config on Linux, ~/Library/Application Support on macOS
// and %LOCALAPPDATA% on Windows, unless XDG_CONFIG_HOME overrides it.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// EnsureDir creates path and any missing parents with perm. It succeeds if
// path is already a directory.
func EnsureDir(path string, perm os.FileMode) error {
	if err := os.MkdirAll(path, perm); err != nil {
		return errors.Wrapf(err, "creating directory %s", path)
	}
	return nil
}

// ExpandHome replaces a leading "~" or "~/" with the user's home directory.
// Other paths, including "~user/...", are returned unchanged, as is path
// when the home directory is unknown.
func ExpandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && !os.IsPathSeparator(rest[0])) {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, rest)
}
