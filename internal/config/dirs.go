// Package config resolves fly's on-disk configuration: the config and
// data directories, the config.yaml settings file, the roots file, and
// the ignore-pattern files. The core index never reads files itself; it
// receives roots and raw pattern lines from here.
package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// RootsFilename lists registered roots, one "<priority> <path>" per line.
	RootsFilename = ".flyRoots"
	// IgnoreFilename holds gitignore-style patterns; the copy in the
	// config directory applies globally, a copy inside a root applies to
	// that root only.
	IgnoreFilename = ".flyIgnore"
	// ConfigFilename is the optional YAML settings file.
	ConfigFilename = "config.yaml"
	// DatabaseFilename is the SQLite index file inside the data directory.
	DatabaseFilename = "index.sqlite"
)

// ConfigDir resolves the configuration directory:
// FLY_CONFIG_DIR, then $XDG_CONFIG_HOME/fly, then ~/.config/fly.
func ConfigDir() (string, error) {
	if dir := os.Getenv("FLY_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fly"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "fly"), nil
}

// DataDir resolves the data directory holding the index database:
// FLY_DATA_DIR, then $XDG_DATA_HOME/fly, then ~/.local/share/fly.
func DataDir() (string, error) {
	if dir := os.Getenv("FLY_DATA_DIR"); dir != "" {
		return dir, nil
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fly"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "fly"), nil
}

// DefaultDBPath is the database location used when config.yaml does not
// override it.
func DefaultDBPath() (string, error) {
	dir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DatabaseFilename), nil
}
