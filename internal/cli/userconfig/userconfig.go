// Package userconfig locates the user's backends file and keeps the selected
// backend in it.
package userconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bookify-dev/bookify/internal/cli/config"
)

const configDirName = "bookify"

// PathEnv overrides the location of the user config file
const PathEnv = "BOOKIFY_CONFIG"

// GetConfigPath returns the path to the user config file,
// ~/.config/bookify/config.yaml unless BOOKIFY_CONFIG is set
func GetConfigPath() (string, error) {
	if p := os.Getenv(PathEnv); p != "" {
		return p, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", configDirName, config.ConfigFileName), nil
}

// Load reads the user configuration file; a missing file is an empty config
func Load() (*config.Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

// Save writes the user configuration file
func Save(cfg *config.Config) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	return config.Save(path, cfg)
}

// SetSelectedBackend records alias as the backend in use
func SetSelectedBackend(alias string) error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	cfg.Selected = alias
	return Save(cfg)
}

// GetSelectedBackend returns the selected backend alias, or empty string if not set
func GetSelectedBackend() (string, error) {
	cfg, err := Load()
	if err != nil {
		return "", err
	}
	return cfg.Selected, nil
}
