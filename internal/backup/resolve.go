package backup

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/thoreinstein/rbak/internal/errors"
)

// Resolver computes and validates backup targets. It only reads metadata.
type Resolver struct {
	fileExt   string
	dirSuffix string
	overwrite bool
}

// NewResolver creates a Resolver. An empty fileExt or dirSuffix selects the
// default. A leading dot on fileExt is ignored.
func NewResolver(fileExt, dirSuffix string, overwrite bool) *Resolver {
	fileExt = strings.TrimPrefix(fileExt, ".")
	if fileExt == "" {
		fileExt = DefaultFileExtension
	}
	if dirSuffix == "" {
		dirSuffix = DefaultDirSuffix
	}
	return &Resolver{
		fileExt:   fileExt,
		dirSuffix: dirSuffix,
		overwrite: overwrite,
	}
}

// Resolve determines the kind of source and computes its backup destination.
//
// The kind is read with os.Stat, so a symlink given as the source is followed
// and the backup contains the link target's data under the link's name.
// Broken symlinks, devices, sockets and pipes are ErrUnsupportedType.
func (r *Resolver) Resolve(source string) (*Target, error) {
	if strings.TrimSpace(source) == "" {
		return nil, errors.Wrap(errors.ErrInvalidPath, "source path is empty")
	}

	abs, err := filepath.Abs(source)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "resolving %s", source), errors.ErrInvalidPath)
	}

	name := filepath.Base(abs)
	if name == string(filepath.Separator) || name == "." || name == filepath.VolumeName(abs) {
		return nil, errors.Wrapf(errors.ErrInvalidPath, "%s has no name to derive a backup from", abs)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, lerr := os.Lstat(abs); lerr == nil {
				return nil, errors.Wrapf(errors.ErrUnsupportedType, "%s is a broken symlink", abs)
			}
			return nil, errors.Wrapf(errors.ErrNotFound, "%s", abs)
		}
		return nil, errors.Mark(errors.Wrapf(err, "reading %s", abs), errors.ErrIO)
	}

	kind := KindOf(info.Mode())
	var dst string
	switch kind {
	case KindFile:
		dst = filepath.Join(filepath.Dir(abs), FileBackupName(name, r.fileExt))
	case KindDirectory:
		dst = filepath.Join(filepath.Dir(abs), name+r.dirSuffix)
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedType, "%s is a %s", abs, describeMode(info.Mode()))
	}

	target := &Target{
		Source:      abs,
		Destination: dst,
		Kind:        kind,
	}

	existing, err := os.Lstat(dst)
	switch {
	case err == nil:
		if err := r.checkReplace(target, info, existing); err != nil {
			return nil, err
		}
		target.Replace = true
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, errors.Mark(errors.Wrapf(err, "checking %s", dst), errors.ErrIO)
	}

	return target, nil
}

// ResolveAs resolves source and requires it to be of kind want.
func (r *Resolver) ResolveAs(source string, want Kind) (*Target, error) {
	target, err := r.Resolve(source)
	if err != nil {
		return nil, err
	}
	if target.Kind != want {
		return nil, errors.Wrapf(errors.ErrKindMismatch, "%s is a %s, not a %s", target.Source, target.Kind, want)
	}
	return target, nil
}

// checkReplace decides whether an existing destination may be replaced.
func (r *Resolver) checkReplace(target *Target, srcInfo, existing fs.FileInfo) error {
	if os.SameFile(srcInfo, existing) {
		return errors.Wrapf(errors.ErrAlreadyExists, "%s would be backed up onto itself", target.Source)
	}

	if !r.overwrite {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrAlreadyExists, "%s", target.Destination),
			"Remove %s or re-run with --force", target.Destination)
	}

	if KindOf(existing.Mode()) != target.Kind {
		return errors.WithHintf(
			errors.Wrapf(errors.ErrAlreadyExists, "%s exists and is not a %s", target.Destination, target.Kind),
			"Remove %s manually", target.Destination)
	}

	return nil
}

// FileBackupName replaces the final extension of name with ext, or appends
// ext when name has none. A leading dot does not start an extension, so
// ".bashrc" becomes ".bashrc.bak". Only the last suffix is replaced:
// "a.tar.gz" becomes "a.tar.bak".
func FileBackupName(name, ext string) string {
	stem := name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		stem = name[:i]
	}
	return stem + "." + strings.TrimPrefix(ext, ".")
}
