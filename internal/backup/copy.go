package backup

import (
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/thoreinstein/rbak/internal/errors"
	"github.com/thoreinstein/rbak/internal/logging"
	"github.com/thoreinstein/rbak/pkg/fileutil"
)

// Copier copies files and directory trees. Ownership, timestamps and
// extended attributes are not preserved; permission bits are.
type Copier struct {
	logger         *slog.Logger
	overwrite      bool
	unsupported    UnsupportedPolicy
	followSymlinks bool
}

// CopierOption configures a Copier.
type CopierOption func(*Copier)

// WithCopyLogger sets the logger used for progress and skip warnings.
func WithCopyLogger(l *slog.Logger) CopierOption {
	return func(c *Copier) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithReplace allows copies to replace an existing destination.
func WithReplace(replace bool) CopierOption {
	return func(c *Copier) {
		c.overwrite = replace
	}
}

// WithUnsupportedPolicy sets what CopyTree does with symlinks and special files.
func WithUnsupportedPolicy(p UnsupportedPolicy) CopierOption {
	return func(c *Copier) {
		if p != "" {
			c.unsupported = p
		}
	}
}

// WithSymlinkFollowing makes CopyTree copy what symlinks point to instead of
// treating them as unsupported entries.
func WithSymlinkFollowing(follow bool) CopierOption {
	return func(c *Copier) {
		c.followSymlinks = follow
	}
}

// NewCopier creates a Copier. By default it refuses to replace existing
// destinations, skips unsupported entries and does not follow symlinks.
func NewCopier(opts ...CopierOption) *Copier {
	c := &Copier{
		logger:      logging.NewDiscard(),
		unsupported: UnsupportedSkip,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CopyFile copies the regular file src to dst, preserving permission bits.
//
// A failed copy never leaves a truncated dst behind: a new dst is removed,
// and a replaced dst is only swapped in once the new content is complete.
func (c *Copier) CopyFile(src, dst string) (*Outcome, error) {
	n, err := c.copyFile(src, dst, c.overwrite)
	if err != nil {
		return nil, &CopyError{Op: "copying", Path: src, Destination: dst, Err: err}
	}
	c.logger.Debug("copied file", "src", src, "dst", dst, "bytes", n)
	return &Outcome{Destination: dst, Files: 1, Bytes: n}, nil
}

// pending is a directory waiting to be copied.
type pending struct {
	src string
	dst string
	rel string
	// ancestors holds the identity of every directory from the root down to
	// and including src. Only tracked when following symlinks.
	ancestors []fs.FileInfo
}

// dirPerm is a destination directory whose final permission bits are applied
// once its contents have been written.
type dirPerm struct {
	path string
	rel  string
	perm fs.FileMode
}

// CopyTree copies the directory src to a new directory dst.
//
// The walk is depth-first with an explicit stack, so depth is not limited by
// the goroutine stack. Each destination directory is created before its
// children are copied. Children are visited in directory-listing order,
// which callers must not rely on.
//
// The first failure stops the walk. The returned *CopyError names the
// failing entry relative to src, and when part of dst was already written it
// is left in place and the error reports Partial. Directories of a partial
// tree keep mode 0700: source permission bits are applied only once every
// entry has been copied. The Outcome returned alongside an error counts what
// was copied before the failure.
//
// When replacing an existing dst, the copy is built in a hidden sibling and
// swapped in only after it completes. A failed replace removes the sibling,
// leaves the old backup untouched and reports Unchanged.
func (c *Copier) CopyTree(src, dst string) (*Outcome, error) {
	rootInfo, err := os.Stat(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = errors.Wrapf(errors.ErrNotFound, "%s", src)
		} else {
			err = errors.Mark(err, errors.ErrIO)
		}
		return nil, &CopyError{Op: "reading", Path: src, Destination: dst, Err: err}
	}
	if !rootInfo.IsDir() {
		return nil, &CopyError{Op: "reading", Path: src, Destination: dst,
			Err: errors.Wrap(errors.ErrKindMismatch, "not a directory")}
	}

	root, replacing, err := c.createRoot(dst)
	if err != nil {
		return nil, &CopyError{Op: "creating directory", Path: dst, Destination: dst, Err: err}
	}

	out, err := c.walk(src, root, dst, rootInfo, replacing)
	if !replacing {
		return out, err
	}

	if err == nil {
		if err = c.swap(root, dst); err != nil {
			err = &CopyError{Op: "replacing", Path: dst, Destination: dst, Unchanged: true, Err: err}
		}
	}
	if err != nil {
		if rmErr := removeTree(root); rmErr != nil {
			c.logger.Warn("could not remove staging directory", "path", root, "error", rmErr)
		}
		return out, err
	}
	return out, nil
}

// walk copies the contents of src into root, which already exists. dst is
// the final location reported in results and errors.
func (c *Copier) walk(src, root, dst string, rootInfo fs.FileInfo, staged bool) (*Outcome, error) {
	out := &Outcome{Destination: dst, Dirs: 1}
	fail := func(op, rel, path string, err error) (*Outcome, error) {
		return out, &CopyError{Op: op, RelPath: rel, Path: path, Destination: dst,
			Partial: !staged, Unchanged: staged, Err: err}
	}

	var err error
	var dstInfo fs.FileInfo
	var rootAncestors []fs.FileInfo
	if c.followSymlinks {
		if dstInfo, err = os.Stat(root); err != nil {
			return fail("reading", ".", root, errors.Mark(err, errors.ErrIO))
		}
		rootAncestors = []fs.FileInfo{rootInfo}
	}

	perms := []dirPerm{{path: root, rel: ".", perm: rootInfo.Mode().Perm()}}
	stack := []pending{{src: src, dst: root, ancestors: rootAncestors}}

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		entries, err := os.ReadDir(p.src)
		if err != nil {
			return fail("reading directory", relOrDot(p.rel), p.src, errors.Mark(err, errors.ErrIO))
		}

		var subdirs []pending
		for _, entry := range entries {
			srcPath := filepath.Join(p.src, entry.Name())
			dstPath := filepath.Join(p.dst, entry.Name())
			rel := filepath.Join(p.rel, entry.Name())

			mode := entry.Type()
			var info fs.FileInfo
			if mode&fs.ModeSymlink != 0 && c.followSymlinks {
				info, err = os.Stat(srcPath)
				if err != nil {
					if err := c.skip(out, rel, "broken symlink"); err != nil {
						return fail("copying", rel, srcPath, err)
					}
					continue
				}
				mode = info.Mode().Type()
			}

			switch {
			case mode.IsRegular():
				n, err := c.copyFile(srcPath, dstPath, false)
				if err != nil {
					return fail("copying", rel, srcPath, err)
				}
				out.Files++
				out.Bytes += n
				c.logger.Debug("copied file", "path", rel, "bytes", n)

			case mode.IsDir():
				if info == nil {
					if info, err = entry.Info(); err != nil {
						return fail("reading", rel, srcPath, errors.Mark(err, errors.ErrIO))
					}
				}

				var ancestors []fs.FileInfo
				if c.followSymlinks {
					if isCycle(info, p.ancestors, dstInfo) {
						return fail("copying", rel, srcPath,
							errors.Wrapf(errors.ErrCycleDetected, "%s leads back to a directory already being copied", rel))
					}
					ancestors = append(slices.Clone(p.ancestors), info)
				}

				if err := os.Mkdir(dstPath, 0o700); err != nil {
					return fail("creating directory", rel, dstPath, classifyCreate(err))
				}
				out.Dirs++
				perms = append(perms, dirPerm{path: dstPath, rel: rel, perm: info.Mode().Perm()})
				subdirs = append(subdirs, pending{src: srcPath, dst: dstPath, rel: rel, ancestors: ancestors})
				c.logger.Debug("created directory", "path", rel)

			default:
				if err := c.skip(out, rel, describeMode(mode)); err != nil {
					return fail("copying", rel, srcPath, err)
				}
			}
		}

		// Push in reverse so subdirectories are visited in listing order.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	if bad, err := applyPerms(perms); err != nil {
		return fail("setting permissions on", bad.rel, bad.path, err)
	}
	return out, nil
}

// applyPerms sets the final permission bits of each directory and returns
// the entry that failed, if any. Children were appended after their parents,
// so walking backwards restricts a directory only after everything inside it
// is written.
func applyPerms(perms []dirPerm) (dirPerm, error) {
	for i := len(perms) - 1; i >= 0; i-- {
		if err := os.Chmod(perms[i].path, perms[i].perm); err != nil {
			return perms[i], errors.Mark(err, errors.ErrIO)
		}
	}
	return dirPerm{}, nil
}

// createRoot creates the directory the tree is copied into. It is dst
// itself, or a hidden sibling of dst when an existing dst is being replaced.
func (c *Copier) createRoot(dst string) (root string, replacing bool, err error) {
	if _, err := os.Lstat(dst); err == nil {
		if !c.overwrite {
			return "", false, errors.WithHintf(errors.Wrapf(errors.ErrAlreadyExists, "%s", dst),
				"Remove %s or re-run with --force", dst)
		}
		staging, err := os.MkdirTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".rbak-*")
		if err != nil {
			return "", false, errors.Mark(errors.Wrap(err, "creating staging directory"), errors.ErrIO)
		}
		c.logger.Debug("staging replacement backup", "path", staging)
		return staging, true, nil
	}

	if err := os.Mkdir(dst, 0o700); err != nil {
		return "", false, classifyCreate(err)
	}
	return dst, false, nil
}

// swap moves the completed copy at staging to dst and deletes the backup it
// replaces. If staging cannot be moved into place the old backup is restored.
func (c *Copier) swap(staging, dst string) error {
	old := staging + ".old"
	if err := os.Rename(dst, old); err != nil {
		return errors.Mark(errors.Wrap(err, "moving existing backup aside"), errors.ErrIO)
	}
	if err := os.Rename(staging, dst); err != nil {
		if rbErr := os.Rename(old, dst); rbErr != nil {
			return errors.Mark(errors.Wrapf(err, "moving new backup into place (previous backup kept at %s)", old), errors.ErrIO)
		}
		return errors.Mark(errors.Wrap(err, "moving new backup into place"), errors.ErrIO)
	}

	c.logger.Info("replaced existing backup", "path", dst)
	if err := removeTree(old); err != nil {
		c.logger.Warn("could not remove previous backup", "path", old, "error", err)
	}
	return nil
}

// removeTree deletes path, first granting the owner full access to every
// directory inside it so read-only directories from a backup can be emptied.
func removeTree(path string) error {
	_ = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil && info.Mode().Perm()&0o700 != 0o700 {
			_ = os.Chmod(p, info.Mode().Perm()|0o700)
		}
		return nil
	})
	return os.RemoveAll(path)
}

// skip applies the unsupported-entry policy to rel.
func (c *Copier) skip(out *Outcome, rel, reason string) error {
	if c.unsupported == UnsupportedFail {
		return errors.Wrapf(errors.ErrUnsupportedType, "%s is a %s", rel, reason)
	}
	c.logger.Warn("skipping unsupported entry", "path", rel, "type", reason)
	out.Skipped = append(out.Skipped, Skipped{RelPath: rel, Reason: reason})
	return nil
}

// copyFile copies a single regular file and returns the number of bytes
// written. When replace is false dst must not exist, and on failure the
// partially written dst is removed.
func (c *Copier) copyFile(src, dst string, replace bool) (int64, error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return 0, errors.Mark(errors.Wrap(err, "opening source"), errors.ErrIO)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return 0, errors.Mark(errors.Wrap(err, "stat source"), errors.ErrIO)
	}
	if !srcInfo.Mode().IsRegular() {
		return 0, errors.Wrapf(errors.ErrUnsupportedType, "%s is a %s", src, describeMode(srcInfo.Mode()))
	}
	perm := srcInfo.Mode().Perm()

	if replace {
		n, err := fileutil.AtomicCopy(dst, srcFile, perm)
		if err != nil {
			return n, errors.Mark(errors.Wrapf(err, "replacing %s", dst), errors.ErrIO)
		}
		return n, nil
	}

	return copyStream(dst, srcFile, perm)
}

// copyStream writes r to the new file dst and then gives it perm. dst must
// not exist. If any step fails after dst is created, dst is removed.
func copyStream(dst string, r io.Reader, perm fs.FileMode) (int64, error) {
	// Created private and widened after the content is complete.
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return 0, classifyCreate(err)
	}

	n, err := io.Copy(dstFile, r)
	if err != nil {
		dstFile.Close()
		os.Remove(dst)
		return n, errors.Mark(errors.Wrapf(err, "writing %s", dst), errors.ErrIO)
	}

	if err := dstFile.Close(); err != nil {
		os.Remove(dst)
		return n, errors.Mark(errors.Wrapf(err, "closing %s", dst), errors.ErrIO)
	}

	if err := os.Chmod(dst, perm); err != nil {
		os.Remove(dst)
		return n, errors.Mark(errors.Wrapf(err, "setting permissions on %s", dst), errors.ErrIO)
	}

	return n, nil
}

// classifyCreate marks a create/mkdir error as ErrAlreadyExists or ErrIO.
func classifyCreate(err error) error {
	if errors.Is(err, fs.ErrExist) {
		return errors.Mark(err, errors.ErrAlreadyExists)
	}
	return errors.Mark(err, errors.ErrIO)
}

// isCycle reports whether dir is one of its ancestors or the destination root.
func isCycle(dir fs.FileInfo, ancestors []fs.FileInfo, dstRoot fs.FileInfo) bool {
	if dstRoot != nil && os.SameFile(dir, dstRoot) {
		return true
	}
	for _, a := range ancestors {
		if os.SameFile(dir, a) {
			return true
		}
	}
	return false
}

func relOrDot(rel string) string {
	if rel == "" {
		return "."
	}
	return rel
}
