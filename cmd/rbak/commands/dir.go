package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/rbak/internal/backup"
)

var dirFlags backupFlags

func init() {
	dirFlags.register(dirCmd, true)
	rootCmd.AddCommand(dirCmd)
}

var dirCmd = &cobra.Command{
	Use:     "dir [path]",
	Aliases: []string{"directory"},
	Short:   "Back up a directory tree to <name>_bak",
	Long: `Copy a directory tree next to itself with _bak appended to its name.

Every regular file is copied byte for byte with its permission bits, and
every subdirectory, including empty ones, is recreated. Ownership,
timestamps and extended attributes are not preserved.

Symlinks and special files (devices, pipes, sockets) inside the tree are
skipped with a warning and listed when the backup completes. Use
--on-unsupported fail to stop at the first one instead, or
--follow-symlinks to copy what links point to; links that lead back into
the tree being copied are reported as a cycle.

If the copy fails partway, the files written so far are left in
<name>_bak and the error names the entry that failed. Its directories stay
private (mode 0700) until a complete copy applies the source permissions.
Remove the partial backup or re-run with --force.

With --force an existing backup is replaced only once the new copy is
complete; if the copy fails the old backup is left unchanged.

Without a path, and when running in a terminal, an interactive finder lists
the directories in the current directory.`,
	Example: `  # Back up a directory
  rbak dir proj

  # Back up the current directory
  rbak dir .

  # Copy symlink targets instead of skipping links
  rbak dir proj --follow-symlinks

  See Also: rbak file, rbak config`,
	Args: userArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackup(cmd, args, backup.KindDirectory, dirFlags)
	},
}
