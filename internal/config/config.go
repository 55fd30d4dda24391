// Package config loads and saves the persisted user configuration: the
// ordered list of glob ignore-patterns applied when no directory-local rule
// file overrides them.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const (
	appDirName     = "f2t2f"
	configFileName = "config.json"
)

// DefaultIgnorePatterns is used whenever no valid user configuration exists.
var DefaultIgnorePatterns = []string{
	"__pycache__",
	"*.egg-info",
	".git",
	".gitignore",
	".vscode",
	"build",
	"dist",
	".DS_Store",
}

// Config is the on-disk configuration shape.
type Config struct {
	IgnorePatterns []string `json:"ignore_patterns"`
}

// Path returns the config file location, creating its directory if needed.
func Path() (string, error) {
	return xdg.ConfigFile(filepath.Join(appDirName, configFileName))
}

// LoadIgnorePatterns returns the active global ignore patterns. A missing,
// unreadable or malformed config file falls back to the defaults; loading
// never fails.
func LoadIgnorePatterns() []string {
	path, err := Path()
	if err != nil {
		return DefaultIgnorePatterns
	}
	return loadFrom(path)
}

func loadFrom(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultIgnorePatterns
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultIgnorePatterns
	}
	if cfg.IgnorePatterns == nil {
		return DefaultIgnorePatterns
	}
	return cfg.IgnorePatterns
}

// SaveDefault writes the default configuration for the user to edit and
// returns its path.
func SaveDefault() (string, error) {
	path, err := Path()
	if err != nil {
		return "", fmt.Errorf("could not resolve config path: %w", err)
	}
	data, err := json.MarshalIndent(Config{IgnorePatterns: DefaultIgnorePatterns}, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return "", fmt.Errorf("could not write config file: %w", err)
	}
	return path, nil
}
