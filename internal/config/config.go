// Package config loads optional flare.yaml project configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "flare.yaml"

	// DefaultDevtoolsAddr is the default inspector listen address.
	DefaultDevtoolsAddr = "localhost:9229"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "flare"

	// DefaultMaxUpdateRounds bounds reactive propagation per flush.
	DefaultMaxUpdateRounds = 100
)

// Config represents the complete flare.yaml configuration.
type Config struct {
	// Runtime contains reactive runtime settings.
	Runtime RuntimeConfig `yaml:"runtime,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `yaml:"metrics,omitempty"`

	// Devtools contains inspector server settings.
	Devtools DevtoolsConfig `yaml:"devtools,omitempty"`

	// Snapshot contains state persistence settings.
	Snapshot SnapshotConfig `yaml:"snapshot,omitempty"`
}

// RuntimeConfig contains reactive runtime settings.
type RuntimeConfig struct {
	// MaxUpdateRounds bounds propagation rounds per flush before the
	// cycle guard aborts (default: 100).
	MaxUpdateRounds int `yaml:"max_update_rounds,omitempty"`

	// Debug enables verbose runtime logging.
	Debug bool `yaml:"debug,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "flare").
	Namespace string `yaml:"namespace,omitempty"`

	// Subsystem is the metrics subsystem.
	Subsystem string `yaml:"subsystem,omitempty"`
}

// DevtoolsConfig contains inspector server settings.
type DevtoolsConfig struct {
	// Enabled turns the inspector server on.
	Enabled bool `yaml:"enabled,omitempty"`

	// Addr is the inspector listen address (default: "localhost:9229").
	Addr string `yaml:"addr,omitempty"`
}

// SnapshotConfig contains state persistence settings.
type SnapshotConfig struct {
	// Store selects the snapshot backend: "memory" or "s3"
	// (default: "memory").
	Store string `yaml:"store,omitempty"`

	// Bucket is the S3 bucket name. Required when Store is "s3".
	Bucket string `yaml:"bucket,omitempty"`

	// Prefix is the S3 key prefix for snapshots.
	Prefix string `yaml:"prefix,omitempty"`
}

// Default returns the configuration used when no flare.yaml exists.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads configuration from dir. A missing file yields defaults.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", ConfigFileName, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ConfigFileName, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Runtime.MaxUpdateRounds == 0 {
		c.Runtime.MaxUpdateRounds = DefaultMaxUpdateRounds
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	if c.Devtools.Addr == "" {
		c.Devtools.Addr = DefaultDevtoolsAddr
	}
	if c.Snapshot.Store == "" {
		c.Snapshot.Store = "memory"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Runtime.MaxUpdateRounds < 1 {
		return fmt.Errorf("runtime.max_update_rounds must be positive, got %d", c.Runtime.MaxUpdateRounds)
	}
	switch c.Snapshot.Store {
	case "memory":
	case "s3":
		if c.Snapshot.Bucket == "" {
			return fmt.Errorf("snapshot.bucket is required when snapshot.store is %q", "s3")
		}
	default:
		return fmt.Errorf("snapshot.store must be %q or %q, got %q", "memory", "s3", c.Snapshot.Store)
	}
	return nil
}
