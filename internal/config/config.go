// Package config provides configuration management for the wallet core.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	Electrum ElectrumConfig `yaml:"electrum"`
	Wallet   WalletConfig   `yaml:"wallet"`
	Security SecurityConfig `yaml:"security"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`

	// Warnings accumulates non-fatal issues found while applying environment
	// overrides, surfaced by the caller rather than failing startup.
	Warnings []string `yaml:"-"`
}

// ElectrumConfig defines the connection to an Electrum server (§6).
type ElectrumConfig struct {
	Host string `yaml:"electrum_host"`
	Port int    `yaml:"electrum_port"`
	SSL  bool   `yaml:"electrum_ssl"`
}

// NetworkType selects coin-type 0 vs 1, HRP bc vs tb, and default servers.
type NetworkType string

const (
	Mainnet NetworkType = "mainnet"
	Testnet NetworkType = "testnet"
)

// WalletConfig defines discovery and pipeline behavior (§6, §4.5).
type WalletConfig struct {
	NetworkType       NetworkType `yaml:"network_type"`
	GapLimit          int         `yaml:"gap_limit"`
	AutoRotateReceive bool        `yaml:"auto_rotate_receive"`
	UseNewTxPipeline  bool        `yaml:"useNewTxPipeline"`
}

// SecurityConfig defines security settings.
type SecurityConfig struct {
	AutoLockSeconds     int     `yaml:"auto_lock_seconds"`
	RequireConfirmAbove float64 `yaml:"require_confirm_above"`
	MemoryLock          bool    `yaml:"memory_lock"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// GetHome returns the wallet home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// GetOutputFormat returns the default output format.
func (c *Config) GetOutputFormat() string {
	return c.Output.DefaultFormat
}

// IsVerbose returns true if verbose output is enabled.
func (c *Config) IsVerbose() bool {
	return c.Output.Verbose
}

// GetSecurity returns the security configuration.
func (c *Config) GetSecurity() SecurityConfig {
	return c.Security
}

// DefaultHome returns the default wallet home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".walletcore"
	}
	return filepath.Join(home, ".walletcore")
}
