package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/rbak/internal/config"
	"github.com/thoreinstein/rbak/internal/editor"
	"github.com/thoreinstein/rbak/internal/errors"
	"github.com/thoreinstein/rbak/internal/paths"
)

// configFormat holds the value of the config list --format flag.
var configFormat string

// configInitForce holds the value of the config init --force flag.
var configInitForce bool

func init() {
	configListCmd.Flags().StringVar(&configFormat, "format", "yaml",
		"output format: yaml, toml, json")
	configInitCmd.Flags().BoolVarP(&configInitForce, "force", "f", false,
		"replace an existing config file")

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage rbak configuration",
	Long: `Manage rbak configuration stored in $XDG_CONFIG_HOME/rbak/config.yaml.

Every key can also be set with an RBAK_ environment variable, such as
RBAK_DIR_SUFFIX=.old. Environment variables take precedence over the file.

Without a subcommand, lists the effective configuration.`,
	Example: `  # Show the effective configuration
  rbak config

  # Create a config file with the defaults
  rbak config init

  See Also: rbak config list, rbak config edit`,
	Args: userArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		return renderConfig(cmd.OutOrStdout(), currentConfig(), config.FileUsed(), configFormat)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the effective configuration",
	Long: `List every configuration value after defaults, the config file and
RBAK_ environment variables have been applied.`,
	Example: `  # List as YAML
  rbak config list

  # List as JSON for scripts
  rbak config list --format json

See Also: rbak config get`,
	Args: userArgs(cobra.NoArgs),
	RunE: func(cmd *cobra.Command, _ []string) error {
		return renderConfig(cmd.OutOrStdout(), currentConfig(), config.FileUsed(), configFormat)
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long:  `Print a single effective configuration value.`,
	Example: `  # Get the directory backup suffix
  rbak config get dir_suffix

See Also: rbak config list`,
	Args: userArgs(cobra.ExactArgs(1)),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConfigGet(cmd.OutOrStdout(), currentConfig(), args[0])
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the defaults",
	Long: `Write the default configuration to $XDG_CONFIG_HOME/rbak/config.yaml, or to
the path given with --config. An existing file is kept unless --force is set.`,
	Example: `  # Create the config file
  rbak config init

  # Reset a broken config file
  rbak config init --force

See Also: rbak config edit`,
	Args:        userArgs(cobra.NoArgs),
	Annotations: map[string]string{skipConfigCheck: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runConfigInit(cmd.OutOrStdout(), configTargetPath(), configInitForce)
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in $EDITOR",
	Long: `Open the config file in your editor.

Uses $VISUAL or $EDITOR, falling back to nano, then vi. If no config file
exists yet, run 'rbak config init' first.`,
	Example: `  # Open config in the default editor
  rbak config edit

  # Open with a specific editor
  EDITOR=nano rbak config edit

See Also: rbak config init`,
	Args:        userArgs(cobra.NoArgs),
	Annotations: map[string]string{skipConfigCheck: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		path := configTargetPath()
		if _, err := os.Stat(path); err != nil {
			return errors.NewUserError(
				errors.Wrapf(errors.ErrNotFound, "config file %s", path),
				"Run 'rbak config init' to create it")
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Location: %s\n", path)
		return editor.Open(cmd.Context(), path, cmd.OutOrStdout(), cmd.ErrOrStderr())
	},
}

// configTargetPath returns the file config init and config edit work on.
func configTargetPath() string {
	if configFile != "" {
		return paths.ExpandHome(configFile)
	}
	if used := config.FileUsed(); used != "" {
		return used
	}
	return config.DefaultPath()
}

// renderConfig writes cfg to w in the given format. YAML and TOML output
// start with a comment naming where the values came from.
func renderConfig(w io.Writer, cfg *config.Config, source, format string) error {
	origin := "# defaults (no config file)\n"
	if source != "" {
		origin = "# loaded from " + source + "\n"
	}

	var data []byte
	var err error
	switch strings.ToLower(format) {
	case "", "yaml", "yml":
		data, err = yaml.Marshal(cfg)
		data = append([]byte(origin), data...)
	case "toml":
		data, err = toml.Marshal(cfg)
		data = append([]byte(origin), data...)
	case "json":
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	default:
		return errors.NewUserError(errors.Newf("unknown format %q", format),
			"Valid formats: yaml, toml, json")
	}
	if err != nil {
		return errors.Wrap(err, "marshaling config")
	}

	_, err = w.Write(data)
	return errors.Wrap(err, "writing config")
}

// configValues returns the configuration as key/value pairs keyed by their
// config file names.
func configValues(cfg *config.Config) map[string]any {
	return map[string]any{
		"version":         cfg.Version,
		"file_extension":  cfg.FileExtension,
		"dir_suffix":      cfg.DirSuffix,
		"overwrite":       cfg.Overwrite,
		"on_unsupported":  cfg.OnUnsupported,
		"follow_symlinks": cfg.FollowSymlinks,
	}
}

func runConfigGet(w io.Writer, cfg *config.Config, key string) error {
	values := configValues(cfg)
	val, ok := values[strings.ToLower(key)]
	if !ok {
		keys := make([]string, 0, len(values))
		for k := range values {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		return errors.NewUserError(errors.Newf("unknown config key %q", key),
			"Valid keys: "+strings.Join(keys, ", "))
	}

	fmt.Fprintln(w, val)
	return nil
}

func runConfigInit(w io.Writer, path string, force bool) error {
	if err := config.WriteDefault(path, force); err != nil {
		return err
	}
	fmt.Fprintf(w, "Wrote default config to %s\n", path)
	return nil
}
