package app

import (
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ethpandaops/counterpush/internal/naming"
	"github.com/ethpandaops/counterpush/internal/telemetry"
	"github.com/ethpandaops/counterpush/internal/transport"
)

// Duration wraps time.Duration for TOML parsing.
// Accepts values like "500ms", "5s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	value := strings.TrimSpace(string(text))
	if value == "" {
		d.Duration = 0

		return nil
	}

	parsed, err := time.ParseDuration(value)
	if err != nil {
		return err
	}

	d.Duration = parsed

	return nil
}

type tomlCollector struct {
	Host        string             `toml:"host"`
	Port        int                `toml:"port"`
	Protocol    transport.Protocol `toml:"protocol"`
	Timeout     *Duration          `toml:"timeout"`
	SendBuffer  int                `toml:"send_buffer"`
	Path        string             `toml:"path"`
	Compression string             `toml:"compression"`
	Headers     map[string]string  `toml:"headers"`
}

type tomlConfig struct {
	LogLevel      string           `toml:"log_level"`
	Collector     tomlCollector    `toml:"collector"`
	Prefix        string           `toml:"prefix"`
	Rules         []naming.Rule    `toml:"rules"`
	Retries       int              `toml:"retries"`
	RetryInterval *Duration        `toml:"retry_interval"`
	Metrics       telemetry.Config `toml:"metrics"`
}

// parseTOML decodes data over the defaults. Fields absent from the file
// keep their default value.
func parseTOML(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	raw := tomlConfig{
		LogLevel: cfg.LogLevel,
		Collector: tomlCollector{
			Port:        cfg.Collector.Port,
			Protocol:    cfg.Collector.Protocol,
			Path:        cfg.Collector.Path,
			Compression: cfg.Collector.Compression,
		},
	}

	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	cfg.LogLevel = raw.LogLevel
	cfg.Collector.Host = raw.Collector.Host
	cfg.Collector.Port = raw.Collector.Port
	cfg.Collector.Protocol = raw.Collector.Protocol
	cfg.Collector.SendBuffer = raw.Collector.SendBuffer
	cfg.Collector.Path = raw.Collector.Path
	cfg.Collector.Compression = raw.Collector.Compression
	cfg.Collector.Headers = raw.Collector.Headers
	cfg.Prefix = raw.Prefix
	cfg.Rules = raw.Rules
	cfg.Retries = raw.Retries
	cfg.Metrics = raw.Metrics

	if raw.Collector.Timeout != nil {
		cfg.Collector.Timeout = raw.Collector.Timeout.Duration
	}

	if raw.RetryInterval != nil {
		cfg.RetryInterval = raw.RetryInterval.Duration
	}

	return cfg, nil
}
