package backup

import (
	"io/fs"
	"strings"

	"github.com/thoreinstein/rbak/internal/errors"
)

// Default naming for backups.
const (
	// DefaultFileExtension replaces the final extension of a backed up file.
	DefaultFileExtension = "bak"

	// DefaultDirSuffix is appended to the name of a backed up directory.
	DefaultDirSuffix = "_bak"
)

// Kind is the entity kind of a backup source, decided once at resolution time.
type Kind int

const (
	// KindUnsupported is anything that is neither a regular file nor a directory.
	KindUnsupported Kind = iota
	// KindFile is a regular file.
	KindFile
	// KindDirectory is a directory.
	KindDirectory
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "unsupported"
	}
}

// KindOf classifies a file mode.
func KindOf(mode fs.FileMode) Kind {
	switch {
	case mode.IsRegular():
		return KindFile
	case mode.IsDir():
		return KindDirectory
	default:
		return KindUnsupported
	}
}

// describeMode names the type of a non-regular, non-directory mode for
// warnings and errors.
func describeMode(mode fs.FileMode) string {
	switch {
	case mode&fs.ModeSymlink != 0:
		return "symlink"
	case mode&fs.ModeCharDevice != 0:
		return "character device"
	case mode&fs.ModeDevice != 0:
		return "device"
	case mode&fs.ModeNamedPipe != 0:
		return "named pipe"
	case mode&fs.ModeSocket != 0:
		return "socket"
	default:
		return "irregular file"
	}
}

// UnsupportedPolicy decides what happens to symlinks and special files found
// inside a directory tree.
type UnsupportedPolicy string

const (
	// UnsupportedSkip skips the entry and records a warning.
	UnsupportedSkip UnsupportedPolicy = "skip"
	// UnsupportedFail aborts the copy with ErrUnsupportedType.
	UnsupportedFail UnsupportedPolicy = "fail"
)

// ParseUnsupportedPolicy parses a policy name. The empty string means
// UnsupportedSkip.
func ParseUnsupportedPolicy(s string) (UnsupportedPolicy, error) {
	switch UnsupportedPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", UnsupportedSkip:
		return UnsupportedSkip, nil
	case UnsupportedFail:
		return UnsupportedFail, nil
	default:
		return "", errors.Newf("unknown unsupported-entry policy %q (valid: skip, fail)", s)
	}
}

// Target is a resolved backup: where the data comes from, where the copy goes
// and what kind of entity it is. A Target is created by a Resolver and
// consumed by one copy operation.
type Target struct {
	// Source is the absolute path of the entity being backed up.
	Source string

	// Destination is the absolute path of the backup.
	Destination string

	// Kind is KindFile or KindDirectory.
	Kind Kind

	// Replace is true when Destination already exists and overwrite was
	// requested.
	Replace bool
}

// Skipped records an entry left out of a tree copy.
type Skipped struct {
	// RelPath is the entry's path relative to the source root.
	RelPath string

	// Reason names the entry type, such as "symlink" or "named pipe".
	Reason string
}

// Outcome describes a successful copy.
type Outcome struct {
	// Destination is the path of the backup that was written.
	Destination string

	// Files is the number of regular files copied.
	Files int

	// Dirs is the number of directories created, including the root.
	Dirs int

	// Bytes is the total file content copied.
	Bytes int64

	// Skipped lists unsupported entries that were skipped with a warning.
	Skipped []Skipped
}

// Entries returns the number of files and directories written.
func (o *Outcome) Entries() int {
	return o.Files + o.Dirs
}

// CopyError describes a failed copy. It wraps the underlying error, which
// carries one of the sentinels from the errors package.
type CopyError struct {
	// Op is the step that failed, such as "copying" or "creating directory".
	Op string

	// RelPath is the failing entry relative to the source root. It is empty
	// for single-file copies and for failures at the root.
	RelPath string

	// Path is the absolute path of the failing entry.
	Path string

	// Destination is the backup being written.
	Destination string

	// Partial is true when a partially written destination tree was left in
	// place.
	Partial bool

	// Unchanged is true when a replace failed and the previous backup at
	// Destination was left as it was.
	Unchanged bool

	// Err is the underlying cause.
	Err error
}

func (e *CopyError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.RelPath != "" {
		b.WriteString(" " + e.RelPath)
	} else if e.Path != "" {
		b.WriteString(" " + e.Path)
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	if e.Partial {
		b.WriteString(" (backup is partial: " + e.Destination + " was left in place)")
	} else if e.Unchanged {
		b.WriteString(" (existing backup " + e.Destination + " is unchanged)")
	}
	return b.String()
}

func (e *CopyError) Unwrap() error {
	return e.Err
}
