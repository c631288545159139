package transport

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// MaxDatagramSize is the largest UDP payload over IPv4.
const MaxDatagramSize = 65507

// udpSender sends each payload as one datagram. Delivery is not
// acknowledged.
type udpSender struct {
	log        logrus.FieldLogger
	endpoint   string
	timeout    time.Duration
	sendBuffer int
}

func newUDPSender(log logrus.FieldLogger, cfg Config) *udpSender {
	return &udpSender{
		log:        log.WithField("component", "udp_sender"),
		endpoint:   cfg.Endpoint(),
		timeout:    cfg.Timeout,
		sendBuffer: cfg.SendBuffer,
	}
}

func (s *udpSender) Send(ctx context.Context, payload []byte) error {
	if len(payload) > MaxDatagramSize {
		return s.fail("write", fmt.Errorf(
			"payload of %d bytes exceeds max datagram size %d",
			len(payload), MaxDatagramSize,
		))
	}

	dialer := net.Dialer{
		Timeout: s.timeout,
		Control: sendBufferControl(s.sendBuffer),
	}

	conn, err := dialer.DialContext(ctx, "udp", s.endpoint)
	if err != nil {
		return s.fail("dial", err)
	}
	defer conn.Close()

	if err := conn.SetWriteDeadline(writeDeadline(ctx, s.timeout)); err != nil {
		return s.fail("write", err)
	}

	n, err := conn.Write(payload)
	if err != nil {
		return s.fail("write", err)
	}

	if n != len(payload) {
		return s.fail("write", fmt.Errorf("short write: %d of %d bytes", n, len(payload)))
	}

	s.log.WithFields(logrus.Fields{
		"endpoint": s.endpoint,
		"bytes":    n,
	}).Debug("Sent datagram")

	return nil
}

func (s *udpSender) fail(op string, err error) error {
	return &Error{Protocol: ProtocolUDP, Endpoint: s.endpoint, Op: op, Err: err}
}
