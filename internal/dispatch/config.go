package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethpandaops/counterpush/internal/naming"
	"github.com/ethpandaops/counterpush/internal/transport"
)

// ErrConfiguration matches every *ConfigError via errors.Is.
var ErrConfiguration = errors.New("configuration error")

// ConfigError reports an invalid dispatch configuration. It is always
// returned before any network I/O takes place.
type ConfigError struct {
	Err error
}

func (e *ConfigError) Error() string {
	return "invalid configuration: " + e.Err.Error()
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is reports ErrConfiguration as a match.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// Config is the immutable input of one dispatch.
type Config struct {
	// Collector is where the batch goes.
	Collector transport.Config

	// Prefix is prepended, dot-separated, to every metric name.
	Prefix string

	// Rules are evaluated in order; the first match names the metric.
	Rules []naming.Rule

	// Timestamp is the batch time in epoch seconds, shared by every line.
	Timestamp int64
}

// Validate checks the configuration without touching the network.
func (c Config) Validate() error {
	_, err := c.compile()

	return err
}

// compile validates c and returns the compiled rule set.
func (c Config) compile() (*naming.Mapper, error) {
	// A missing host is reported before any other problem.
	if strings.TrimSpace(c.Collector.Host) == "" {
		return nil, &ConfigError{Err: errors.New("collector host is required")}
	}

	collector := c.Collector
	collector.ApplyDefaults()

	if err := collector.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}

	if c.Prefix != "" && !naming.ValidName(c.Prefix) {
		return nil, &ConfigError{Err: fmt.Errorf("prefix %q is not a valid metric name", c.Prefix)}
	}

	if c.Timestamp < 0 {
		return nil, &ConfigError{Err: fmt.Errorf("timestamp %d is negative", c.Timestamp)}
	}

	mapper, err := naming.Compile(c.Rules)
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("compiling rules: %w", err)}
	}

	return mapper, nil
}

// metricName joins the prefix and the resolved name.
func (c Config) metricName(name string) string {
	if c.Prefix == "" {
		return name
	}

	return c.Prefix + "." + name
}
