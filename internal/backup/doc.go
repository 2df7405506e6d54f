// Package backup creates sibling backup copies of files and directory trees.
//
// # Naming
//
// A file is backed up next to itself with its final extension replaced, and a
// directory is backed up next to itself with a suffix appended:
//
//	notes.txt   -> notes.bak
//	README      -> README.bak
//	a.tar.gz    -> a.tar.bak
//	proj/       -> proj_bak/
//
// Only the top-level entity is renamed. Everything inside a directory backup
// keeps its original name.
//
// # Resolving
//
// A [Resolver] turns a user-supplied path into a [Target]. It only reads
// metadata. Resolution fails with [errors.ErrNotFound] when the source does
// not exist, [errors.ErrAlreadyExists] when the backup already exists and
// overwrite is off, and [errors.ErrUnsupportedType] for anything that is not
// a regular file or a directory, including broken symlinks. A symlink given
// as the source is followed.
//
// # Copying
//
// [Copier.CopyFile] copies one file and never leaves a truncated backup
// behind. [Copier.CopyTree] copies a directory depth-first, creating each
// destination directory before its children.
//
// Inside a tree, symlinks and special files are not followed. By default they
// are skipped and reported in [Outcome.Skipped] and as log warnings; with
// [UnsupportedFail] they abort the copy. [WithSymlinkFollowing] copies what
// symlinks point to instead, and rejects links that lead back into a
// directory already being copied with [errors.ErrCycleDetected].
//
// # Partial Backups
//
// The first failure inside a tree stops the copy. What was already written is
// left in place rather than rolled back, and the returned [*CopyError] has
// Partial set and names the failing entry relative to the source root:
//
//	res, err := backup.NewManager().BackupDir("proj")
//	var copyErr *backup.CopyError
//	if errors.As(err, &copyErr) && copyErr.Partial {
//	    fmt.Printf("backup of %s is incomplete, failed at %s\n",
//	        copyErr.Destination, copyErr.RelPath)
//	}
//
// An interrupted process can likewise leave a partial tree.
package backup
