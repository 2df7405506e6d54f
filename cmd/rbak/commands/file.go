package commands

import (
	"github.com/spf13/cobra"

	"github.com/thoreinstein/rbak/internal/backup"
)

var fileFlags backupFlags

func init() {
	fileFlags.register(fileCmd, false)
	rootCmd.AddCommand(fileCmd)
}

var fileCmd = &cobra.Command{
	Use:   "file [path]",
	Short: "Back up a file to <name>.bak",
	Long: `Copy a regular file next to itself with its extension replaced by .bak.

Only the final extension is replaced: notes.txt becomes notes.bak and
archive.tar.gz becomes archive.tar.bak. A name without an extension, or one
whose only dot is leading, gets .bak appended: README becomes README.bak and
.bashrc becomes .bashrc.bak.

The copy has the same content and permission bits as the source. If a
symlink is given, the file it points to is copied under the link's name.
The backup is never left half-written: a failed copy removes the partial
file, and --force replaces an existing backup atomically.

Without a path, and when running in a terminal, an interactive finder lists
the files in the current directory.`,
	Example: `  # Back up a file
  rbak file notes.txt

  # Replace an existing backup
  rbak file notes.txt --force

  See Also: rbak dir, rbak config`,
	Args: userArgs(cobra.MaximumNArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBackup(cmd, args, backup.KindFile, fileFlags)
	},
}
