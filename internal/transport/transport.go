// Package transport delivers encoded payloads to a metrics collector.
//
// Every Send acquires its socket or connection, writes the whole payload
// once and releases it before returning. Nothing is pooled or retried.
package transport

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrTransport matches every *Error via errors.Is.
var ErrTransport = errors.New("transport error")

// Sender delivers one payload per call.
type Sender interface {
	// Send writes payload to the collector in a single operation.
	Send(ctx context.Context, payload []byte) error
}

// Error describes a failed delivery.
type Error struct {
	Protocol Protocol
	Endpoint string
	// Op is the failing step: dial, write, request or status.
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s %s: %v", e.Protocol, e.Op, e.Endpoint, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports ErrTransport as a match.
func (e *Error) Is(target error) bool {
	return target == ErrTransport
}

// New returns the Sender for cfg.Protocol.
func New(log logrus.FieldLogger, cfg Config) (Sender, error) {
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch cfg.Protocol {
	case ProtocolUDP:
		return newUDPSender(log, cfg), nil
	case ProtocolTCP:
		return newTCPSender(log, cfg), nil
	case ProtocolHTTP:
		return newHTTPSender(log, cfg), nil
	default:
		return nil, fmt.Errorf("unsupported protocol: %s", cfg.Protocol)
	}
}
