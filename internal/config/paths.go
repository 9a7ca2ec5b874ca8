package config

import (
	"os"
	"path/filepath"
)

// Paths contains commonly used file paths.
type Paths struct {
	Database string // Recipe cache
	Config   string // Config file
	Log      string // Log directory
}

// GetPaths returns all commonly used paths based on config.
func GetPaths(cfg *Config) Paths {
	return Paths{
		Database: filepath.Join(cfg.BaseDir, "pantry.db"),
		Config:   filepath.Join(cfg.BaseDir, "config.toml"),
		Log:      cfg.BaseDir,
	}
}

// DefaultBaseDir returns the default base directory (~/.pantry).
func DefaultBaseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".pantry"
	}
	return filepath.Join(home, ".pantry")
}
