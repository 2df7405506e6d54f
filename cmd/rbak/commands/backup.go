package commands

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/rbak/internal/backup"
	"github.com/thoreinstein/rbak/internal/errors"
	"github.com/thoreinstein/rbak/internal/logging"
	"github.com/thoreinstein/rbak/internal/report"
)

// backupFlags holds the flags shared by the file and dir commands.
type backupFlags struct {
	force          bool
	dryRun         bool
	followSymlinks bool
	onUnsupported  string
	output         string
}

// register adds the flags to cmd. Tree-only flags are added when tree is set.
func (f *backupFlags) register(cmd *cobra.Command, tree bool) {
	cmd.Flags().BoolVarP(&f.force, "force", "f", false,
		"replace an existing backup")
	cmd.Flags().BoolVarP(&f.dryRun, "dry-run", "n", false,
		"show where the backup would go without writing anything")
	cmd.Flags().StringVarP(&f.output, "output", "o", "text",
		"output format: text, json")
	if tree {
		cmd.Flags().BoolVarP(&f.followSymlinks, "follow-symlinks", "L", false,
			"copy what symlinks point to instead of skipping them")
		cmd.Flags().StringVar(&f.onUnsupported, "on-unsupported", "",
			"what to do with symlinks and special files: skip, fail (default from config, skip)")
	}
}

// userArgs wraps a cobra argument validator so its errors exit as user errors.
func userArgs(validate cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := validate(cmd, args); err != nil {
			return errors.NewUserError(err, "Run '"+cmd.CommandPath()+" --help' for usage")
		}
		return nil
	}
}

// runBackup backs up the path in args, or one picked interactively when
// args is empty.
func runBackup(cmd *cobra.Command, args []string, kind backup.Kind, f backupFlags) error {
	var source string
	if len(args) > 0 {
		source = args[0]
	} else {
		picked, err := pickSource(".", kind)
		if err != nil {
			return err
		}
		if picked == "" {
			return nil
		}
		source = picked
	}
	return runBackupWithWriter(cmd.Context(), cmd.OutOrStdout(), kind, source, f)
}

func runBackupWithWriter(ctx context.Context, w io.Writer, kind backup.Kind, source string, f backupFlags) error {
	format, err := report.ParseFormat(f.output)
	if err != nil {
		return errors.NewUserError(err, "Valid output formats: text, json")
	}

	mgr, err := newManager(ctx, f)
	if err != nil {
		return err
	}

	var result *backup.Result
	switch kind {
	case backup.KindFile:
		result, err = mgr.BackupFile(source)
	default:
		result, err = mgr.BackupDir(source)
	}
	if err != nil {
		return err
	}

	if quiet && format == report.FormatText {
		return nil
	}
	return report.NewReporter(w, format).Report(result)
}

// newManager builds a backup Manager from the loaded config overlaid with
// command-line flags.
func newManager(ctx context.Context, f backupFlags) (*backup.Manager, error) {
	cfg := currentConfig()

	policyName := cfg.OnUnsupported
	if f.onUnsupported != "" {
		policyName = f.onUnsupported
	}
	policy, err := backup.ParseUnsupportedPolicy(policyName)
	if err != nil {
		return nil, errors.NewUserError(err, "Use --on-unsupported skip or --on-unsupported fail")
	}

	return backup.NewManager(
		backup.WithFileExtension(cfg.FileExtension),
		backup.WithDirSuffix(cfg.DirSuffix),
		backup.WithOverwrite(cfg.Overwrite || f.force),
		backup.WithUnsupported(policy),
		backup.WithFollowSymlinks(cfg.FollowSymlinks || f.followSymlinks),
		backup.WithDryRun(f.dryRun),
		backup.WithLogger(logging.FromContext(ctx)),
	), nil
}
