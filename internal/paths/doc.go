// Package paths locates rbak's own files and expands home-relative paths.
//
// The configuration directory follows the XDG Base Directory layout through
// github.com/adrg/xdg, so on Linux the config file is
// ~/.config/rbak/config.yaml. [ExpandHome] lets paths from the --config
// flag or the config file use a leading "~" the way a shell would.
package paths
