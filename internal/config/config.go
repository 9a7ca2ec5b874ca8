// Package config handles application configuration management.
//
// Settings come from three layers, later ones winning: built-in defaults,
// the optional TOML file at ~/.pantry/config.toml, and environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	// Base directory for all Pantry data (~/.pantry). Not read from the file.
	BaseDir string `toml:"-"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `toml:"log_level"`

	API     APIConfig     `toml:"api"`
	Paging  PagingConfig  `toml:"paging"`
	Cache   CacheConfig   `toml:"cache"`
	Network NetworkConfig `toml:"network"`

	// Offline forces the offline prober (PANTRY_OFFLINE or --offline).
	Offline bool `toml:"-"`
}

// APIConfig holds remote catalog settings.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key,omitempty"`
	RateLimit      int    `toml:"rate_limit"` // requests per minute
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Timeout returns the HTTP timeout.
func (c APIConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// PagingConfig holds page sizes.
type PagingConfig struct {
	PageSize        int `toml:"page_size"`
	InitialLoadSize int `toml:"initial_load_size"`
}

// CacheConfig holds local cache settings.
type CacheConfig struct {
	RetentionHours int `toml:"retention_hours"`
}

// Retention returns the eviction horizon.
func (c CacheConfig) Retention() time.Duration {
	return time.Duration(c.RetentionHours) * time.Hour
}

// NetworkConfig holds reachability probe settings.
type NetworkConfig struct {
	ProbeAddress        string `toml:"probe_address"`
	ProbeTimeoutSeconds int    `toml:"probe_timeout_seconds"`
	// WatchIntervalSeconds is how often the interface table is compared
	// for changes. Zero disables the watcher.
	WatchIntervalSeconds int `toml:"watch_interval_seconds"`
}

// WatchInterval returns the interface watcher period.
func (c NetworkConfig) WatchInterval() time.Duration {
	return time.Duration(c.WatchIntervalSeconds) * time.Second
}

// ProbeTimeout returns the dial timeout for the reachability probe.
func (c NetworkConfig) ProbeTimeout() time.Duration {
	return time.Duration(c.ProbeTimeoutSeconds) * time.Second
}

// Load reads the config file under the base directory and applies
// environment overrides.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if dir := os.Getenv(EnvHome); dir != "" {
		cfg.BaseDir = dir
	}

	if err := ensureDirectories(cfg); err != nil {
		return nil, err
	}

	if err := cfg.loadFile(GetPaths(cfg).Config); err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile merges the TOML file at path into cfg. A missing file is not an error.
func (cfg *Config) loadFile(path string) error {
	_, err := toml.DecodeFile(path, cfg)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides file values with environment variables.
func (cfg *Config) applyEnv() error {
	if key := os.Getenv(EnvAPIKey); key != "" {
		cfg.API.APIKey = key
	}
	if u := os.Getenv(EnvBaseURL); u != "" {
		cfg.API.BaseURL = u
	}
	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		cfg.LogLevel = lvl
	}
	if v := os.Getenv(EnvOffline); v != "" {
		offline, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvOffline, err)
		}
		cfg.Offline = offline
	}
	return nil
}

// Validate rejects settings the engine cannot run with.
func (cfg *Config) Validate() error {
	switch {
	case cfg.Paging.PageSize <= 0:
		return fmt.Errorf("paging.page_size must be positive, got %d", cfg.Paging.PageSize)
	case cfg.Paging.InitialLoadSize < cfg.Paging.PageSize:
		return fmt.Errorf("paging.initial_load_size (%d) must be at least page_size (%d)",
			cfg.Paging.InitialLoadSize, cfg.Paging.PageSize)
	case cfg.Cache.RetentionHours <= 0:
		return fmt.Errorf("cache.retention_hours must be positive, got %d", cfg.Cache.RetentionHours)
	case cfg.API.TimeoutSeconds <= 0:
		return fmt.Errorf("api.timeout_seconds must be positive, got %d", cfg.API.TimeoutSeconds)
	case cfg.API.BaseURL == "":
		return errors.New("api.base_url must not be empty")
	}
	return nil
}

// Write encodes cfg as TOML. The API key is omitted.
func (cfg *Config) Write(w io.Writer) error {
	redacted := *cfg
	redacted.API.APIKey = ""
	if err := toml.NewEncoder(w).Encode(redacted); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// ensureDirectories creates required directories if they don't exist.
func ensureDirectories(cfg *Config) error {
	return os.MkdirAll(cfg.BaseDir, 0755)
}
