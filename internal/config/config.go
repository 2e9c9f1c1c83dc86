package config

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config represents the top-level eventmate.yaml configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Uploads   UploadsConfig   `yaml:"uploads"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
}

// ServerConfig controls the HTTP API listener.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig locates the sqlite database file.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// UploadsConfig bounds statement/roster uploads.
type UploadsConfig struct {
	MaxFileSizeMB int64 `yaml:"max_file_size_mb"`
}

// ReconcileConfig tunes payment matching.
type ReconcileConfig struct {
	// AmountTolerance is the absolute difference below which a matched
	// transaction's amount counts as equal to the expected amount.
	// Stored as a string so the YAML round-trips exactly.
	AmountTolerance string `yaml:"amount_tolerance"`
}

// Tolerance parses the configured amount tolerance, falling back to the
// default when the field is empty or malformed.
func (c ReconcileConfig) Tolerance() decimal.Decimal {
	d, err := decimal.NewFromString(c.AmountTolerance)
	if err != nil || d.IsNegative() {
		return decimal.RequireFromString("0.01")
	}
	return d
}

// Load reads an eventmate.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new event.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 5000,
		},
		Database: DatabaseConfig{
			Path: "eventmate.db",
		},
		Uploads: UploadsConfig{
			MaxFileSizeMB: 10,
		},
		Reconcile: ReconcileConfig{
			AmountTolerance: "0.01",
		},
	}
}
