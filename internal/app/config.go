// Package app wires configuration, counters and the dispatcher into a
// single counterpush run.
package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ethpandaops/counterpush/internal/dispatch"
	"github.com/ethpandaops/counterpush/internal/naming"
	"github.com/ethpandaops/counterpush/internal/telemetry"
	"github.com/ethpandaops/counterpush/internal/transport"
)

// Config is the top-level configuration for counterpush.
type Config struct {
	// LogLevel sets the logging verbosity (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// Collector configures the Graphite collector connection.
	Collector transport.Config `yaml:"collector"`

	// Prefix is prepended to every metric name.
	Prefix string `yaml:"prefix"`

	// Rules name counters. The first matching rule wins.
	Rules []naming.Rule `yaml:"rules"`

	// Retries is how many extra attempts follow a failed send.
	// Defaults to 0.
	Retries int `yaml:"retries"`

	// RetryInterval is the pause between attempts. Defaults to 1s.
	RetryInterval time.Duration `yaml:"retry_interval"`

	// Metrics configures pushing run metrics to a Pushgateway.
	Metrics telemetry.Config `yaml:"metrics"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:      "info",
		Collector:     transport.DefaultConfig(),
		RetryInterval: time.Second,
	}
}

// LoadConfig reads a configuration file. Files ending in .toml are parsed
// as TOML, everything else as YAML.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg *Config

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		cfg, err = parseTOML(data)
	} else {
		cfg, err = parseYAML(data)
	}

	if err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func parseYAML(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for required fields and consistency.
func (c *Config) Validate() error {
	if c.Retries < 0 {
		return fmt.Errorf("retries must not be negative")
	}

	if c.RetryInterval < 0 {
		return fmt.Errorf("retry_interval must not be negative")
	}

	return c.Dispatch(0).Validate()
}

// Dispatch returns the dispatcher configuration for a batch stamped
// with timestamp.
func (c *Config) Dispatch(timestamp int64) dispatch.Config {
	return dispatch.Config{
		Collector: c.Collector,
		Prefix:    c.Prefix,
		Rules:     c.Rules,
		Timestamp: timestamp,
	}
}
