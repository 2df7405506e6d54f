// Package fileutil writes files so that readers never see a partial result.
package fileutil

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/rbak/internal/errors"
)

// tempPattern names the staging files created next to the target.
const tempPattern = ".rbak-*.tmp"

// AtomicCopy streams r into path and returns the number of bytes written.
//
// The data is staged in a hidden file in the target's directory, synced,
// given perm and renamed over path. On any failure the staging file is
// removed and an existing file at path is left untouched. The parent
// directory must exist.
func AtomicCopy(path string, r io.Reader, perm os.FileMode) (n int64, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), tempPattern)
	if err != nil {
		return 0, errors.Wrap(err, "creating staging file")
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if n, err = io.Copy(tmp, r); err != nil {
		return n, errors.Wrap(err, "writing staging file")
	}
	if err = tmp.Chmod(perm); err != nil {
		return n, errors.Wrap(err, "setting permissions")
	}
	if err = tmp.Sync(); err != nil {
		return n, errors.Wrap(err, "syncing staging file")
	}
	if err = tmp.Close(); err != nil {
		return n, errors.Wrap(err, "closing staging file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return n, errors.Wrap(err, "moving staging file into place")
	}
	return n, nil
}

// WriteYAML encodes v as YAML and writes it to path with AtomicCopy.
func WriteYAML(path string, v any, perm os.FileMode) (err error) {
	// yaml.Marshal panics on values it cannot encode, such as funcs.
	defer func() {
		if r := recover(); r != nil {
			err = errors.Newf("encoding YAML: %v", r)
		}
	}()

	data, err := yaml.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "encoding YAML")
	}
	_, err = AtomicCopy(path, bytes.NewReader(data), perm)
	return err
}
