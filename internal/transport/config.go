package transport

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Protocol selects how a payload reaches the collector.
type Protocol string

// Supported protocols.
const (
	ProtocolUDP  Protocol = "udp"
	ProtocolTCP  Protocol = "tcp"
	ProtocolHTTP Protocol = "http"
)

// DefaultPort is the Graphite plaintext listener port.
const DefaultPort = 2003

// Config configures delivery to the collector.
type Config struct {
	// Host is the collector host name or address. Required.
	Host string `yaml:"host" toml:"host"`

	// Port is the collector port. Defaults to 2003.
	Port int `yaml:"port" toml:"port"`

	// Protocol is one of udp, tcp or http. Defaults to udp.
	Protocol Protocol `yaml:"protocol" toml:"protocol"`

	// Timeout bounds dialing and writing. Defaults to 5s.
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`

	// SendBuffer sets SO_SNDBUF in bytes on the UDP socket. Zero keeps
	// the OS default.
	SendBuffer int `yaml:"send_buffer" toml:"send_buffer"`

	// Path is the request path for the http protocol. Defaults to "/".
	Path string `yaml:"path" toml:"path"`

	// Compression applies to the http protocol only.
	// Valid values: none, gzip, zstd, zlib, snappy. Defaults to none.
	Compression string `yaml:"compression" toml:"compression"`

	// Headers are additional HTTP headers for the http protocol.
	Headers map[string]string `yaml:"headers" toml:"headers"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Port:        DefaultPort,
		Protocol:    ProtocolUDP,
		Timeout:     5 * time.Second,
		Path:        "/",
		Compression: CompressionNone,
	}
}

// ApplyDefaults applies default values to unset fields.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()

	c.Protocol = Protocol(strings.ToLower(strings.TrimSpace(string(c.Protocol))))
	if c.Protocol == "" {
		c.Protocol = defaults.Protocol
	}

	if c.Port == 0 {
		c.Port = defaults.Port
	}

	if c.Timeout <= 0 {
		c.Timeout = defaults.Timeout
	}

	if c.Path == "" {
		c.Path = defaults.Path
	}

	if c.Compression == "" {
		c.Compression = defaults.Compression
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("collector host is required")
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("collector port %d out of range", c.Port)
	}

	switch c.Protocol {
	case ProtocolUDP, ProtocolTCP, ProtocolHTTP:
		// Valid.
	default:
		return fmt.Errorf("invalid protocol: %q", c.Protocol)
	}

	if c.SendBuffer < 0 {
		return errors.New("send_buffer must not be negative")
	}

	switch c.Compression {
	case "", CompressionNone, CompressionGzip, CompressionZstd,
		CompressionZlib, CompressionSnappy:
		// Valid.
	default:
		return errors.New("invalid compression type: " + c.Compression)
	}

	return nil
}

// Endpoint returns the host:port address of the collector.
func (c *Config) Endpoint() string {
	return net.JoinHostPort(strings.TrimSpace(c.Host), strconv.Itoa(c.Port))
}
