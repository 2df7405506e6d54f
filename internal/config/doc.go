// Package config provides configuration management for the rbak CLI.
//
// Configuration is read with Viper from a YAML file, environment variables
// prefixed with RBAK_, and built-in defaults, in increasing order of
// precedence: defaults, file, environment. Command-line flags are applied on
// top by the commands themselves.
//
// # Configuration File
//
// The default location is <XDG_CONFIG_HOME>/rbak/config.yaml. The directory
// can be overridden with RBAK_CONFIG_DIR, and a specific file with --config.
//
//	version: 1
//	file_extension: bak      # notes.txt -> notes.bak
//	dir_suffix: _bak         # proj -> proj_bak
//	overwrite: false         # replace existing backups
//	on_unsupported: skip     # skip | fail for symlinks and special files
//	follow_symlinks: false   # follow symlinks inside directory trees
//
// # Loading Configuration
//
//	config.Init()
//	cfg, err := config.Load("")
//	if err != nil {
//	    return err
//	}
//
// Load validates the result; validation failures wrap
// [errors.ErrInvalidConfig].
package config
