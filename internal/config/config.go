package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/thoreinstein/rbak/internal/backup"
	"github.com/thoreinstein/rbak/internal/errors"
	"github.com/thoreinstein/rbak/internal/paths"
	"github.com/thoreinstein/rbak/pkg/fileutil"
)

// AppName is the application name used for config file naming and the
// environment variable prefix.
const AppName = "rbak"

// CurrentVersion is the only supported config file version.
const CurrentVersion = 1

// Config represents the top-level configuration structure.
type Config struct {
	Version        int    `mapstructure:"version" yaml:"version" toml:"version" json:"version"`
	FileExtension  string `mapstructure:"file_extension" yaml:"file_extension" toml:"file_extension" json:"file_extension"`
	DirSuffix      string `mapstructure:"dir_suffix" yaml:"dir_suffix" toml:"dir_suffix" json:"dir_suffix"`
	Overwrite      bool   `mapstructure:"overwrite" yaml:"overwrite" toml:"overwrite" json:"overwrite"`
	OnUnsupported  string `mapstructure:"on_unsupported" yaml:"on_unsupported" toml:"on_unsupported" json:"on_unsupported"`
	FollowSymlinks bool   `mapstructure:"follow_symlinks" yaml:"follow_symlinks" toml:"follow_symlinks" json:"follow_symlinks"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Version:        CurrentVersion,
		FileExtension:  backup.DefaultFileExtension,
		DirSuffix:      backup.DefaultDirSuffix,
		Overwrite:      false,
		OnUnsupported:  string(backup.UnsupportedSkip),
		FollowSymlinks: false,
	}
}

// Dir returns the directory searched for config.yaml: $RBAK_CONFIG_DIR when
// set, otherwise $XDG_CONFIG_HOME/rbak.
func Dir() string {
	if dir := os.Getenv("RBAK_CONFIG_DIR"); dir != "" {
		return dir
	}
	return paths.ConfigDir()
}

// DefaultPath returns the path config init writes to and config edit opens
// when no file was loaded.
func DefaultPath() string {
	return filepath.Join(Dir(), paths.ConfigFileName)
}

// Init resets Viper and registers search paths, environment binding and
// defaults. Call this once at application startup before Load.
func Init() {
	viper.Reset()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// The working directory is not searched: it is usually the directory
	// being backed up.
	viper.AddConfigPath(Dir())

	viper.SetEnvPrefix("RBAK")
	viper.AutomaticEnv()

	def := Default()
	viper.SetDefault("version", def.Version)
	viper.SetDefault("file_extension", def.FileExtension)
	viper.SetDefault("dir_suffix", def.DirSuffix)
	viper.SetDefault("overwrite", def.Overwrite)
	viper.SetDefault("on_unsupported", def.OnUnsupported)
	viper.SetDefault("follow_symlinks", def.FollowSymlinks)
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file and a missing file is
// an error. If path is empty, the default locations are searched and a
// missing file means defaults are used.
// The loaded configuration is validated before it is returned.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(paths.ExpandHome(path))
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case errors.As(err, &notFound) && path == "":
			// Implicit load without a file falls back to defaults
		case errors.As(err, &notFound), os.IsNotExist(err):
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "config file not found at %s", path)
		default:
			return nil, errors.Mark(errors.Wrap(err, "reading config file"), errors.ErrInvalidConfig)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "unmarshaling config"), errors.ErrInvalidConfig)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, errors.Mark(errors.Wrap(errs[0], "validating config"), errors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// FileUsed returns the config file Viper read, or an empty string when
// defaults were used.
func FileUsed() string {
	return viper.ConfigFileUsed()
}

// WriteDefault writes the default configuration to path as YAML. An
// existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Lstat(path); err == nil {
			return errors.WithHint(
				errors.Wrapf(errors.ErrAlreadyExists, "config file %s", path),
				"Re-run with --force to replace it")
		}
	}

	if err := paths.EnsureDir(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "creating config directory")
	}

	return fileutil.WriteYAML(path, Default(), 0o644)
}
