// Package commands implements the CLI commands for rbak.
package commands

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/rbak/internal/config"
	"github.com/thoreinstein/rbak/internal/errors"
	"github.com/thoreinstein/rbak/internal/logging"
)

// skipConfigCheck marks commands that must run even when the config file is
// invalid, so the user can inspect or repair it.
const skipConfigCheck = "rbak/skip-config-check"

// verbosity holds the count of -v flags.
var verbosity int

// quiet holds the value of the -q/--quiet flag.
var quiet bool

// logFormat holds the value of the --log-format flag.
var logFormat string

// logFile holds the path to the log file.
var logFile string

// configFile holds the value of the --config flag.
var configFile string

// loadedConfig is the configuration read during initialization.
var loadedConfig *config.Config

// configLoadErr holds any error that occurred during config loading.
var configLoadErr error

// logSink is the rotating log file opened for --log-file, if any.
var logSink io.Closer

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"increase verbosity level (e.g., -v, -vv)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false,
		"suppress non-error output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text",
		"log format: text, json")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "",
		"also write logs to a rotated file in JSON format")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"config file (default $XDG_CONFIG_HOME/rbak/config.yaml)")

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("rbak version {{.Version}}\n")

	// Silence errors and usage so main controls error output and exit codes
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.NewUserError(err, "Run '"+cmd.CommandPath()+" --help' for usage")
	})
}

func initConfig() {
	config.Init()
	loadedConfig, configLoadErr = config.Load(configFile)
}

var rootCmd = &cobra.Command{
	Use:   "rbak",
	Short: "Make quick local backups of files and directories",
	Long: `rbak makes a quick local copy of a file or directory next to the original.

A file is copied to the same name with its extension replaced by .bak, so
notes.txt becomes notes.bak. A directory tree is copied to the same name with
_bak appended, so proj/ becomes proj_bak/. Existing backups are never
overwritten unless --force is given.

Naming and defaults can be changed in $XDG_CONFIG_HOME/rbak/config.yaml or
with RBAK_* environment variables.`,
	Example: `  # Back up a file
  rbak file notes.txt

  # Back up a directory tree
  rbak dir proj

  # Show where a backup would go
  rbak dir proj --dry-run

  See Also: rbak file, rbak dir, rbak config`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := setupLogging(cmd); err != nil {
			return err
		}
		return checkConfig(cmd)
	},
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// setupLogging installs the default logger for the -v, -q, --log-format and
// --log-file flags and stores it in the command context.
func setupLogging(cmd *cobra.Command) error {
	level, err := logging.ResolveLevel(verbosity, quiet)
	if err != nil {
		return errors.NewUserError(err, "Use either --quiet or --verbose")
	}

	format, err := logging.ParseFormat(logFormat)
	if err != nil {
		return errors.NewUserError(err, "Valid log formats: text, json")
	}

	closeLogSink()
	logger, closer := logging.New(logging.Options{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
		File:   logFile,
	})
	logSink = closer
	slog.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logging.NewContext(ctx, logger))

	return nil
}

// checkConfig reports a config load failure unless cmd can run without a
// valid config.
func checkConfig(cmd *cobra.Command) error {
	if cmd.Name() == "help" || cmd.Annotations[skipConfigCheck] != "" {
		return nil
	}
	if configLoadErr != nil {
		return errors.NewConfigError(configLoadErr)
	}
	return nil
}

// currentConfig returns the loaded configuration, or defaults when none was
// loaded.
func currentConfig() *config.Config {
	if loadedConfig == nil {
		return config.Default()
	}
	return loadedConfig
}

func closeLogSink() {
	if logSink != nil {
		_ = logSink.Close()
		logSink = nil
	}
}

// Execute runs the root command.
func Execute() error {
	defer closeLogSink()
	return rootCmd.Execute()
}
