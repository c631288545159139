package transport

import (
	"context"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

// tcpSender opens a connection per payload, writes it and closes.
type tcpSender struct {
	log      logrus.FieldLogger
	endpoint string
	timeout  time.Duration
}

func newTCPSender(log logrus.FieldLogger, cfg Config) *tcpSender {
	return &tcpSender{
		log:      log.WithField("component", "tcp_sender"),
		endpoint: cfg.Endpoint(),
		timeout:  cfg.Timeout,
	}
}

func (s *tcpSender) Send(ctx context.Context, payload []byte) (err error) {
	dialer := net.Dialer{Timeout: s.timeout}

	conn, err := dialer.DialContext(ctx, "tcp", s.endpoint)
	if err != nil {
		return s.fail("dial", err)
	}

	defer func() {
		// Close errors are reported only when the write succeeded.
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = s.fail("close", cerr)
		}
	}()

	if err := conn.SetWriteDeadline(writeDeadline(ctx, s.timeout)); err != nil {
		return s.fail("write", err)
	}

	n, err := conn.Write(payload)
	if err != nil {
		return s.fail("write", err)
	}

	s.log.WithFields(logrus.Fields{
		"endpoint": s.endpoint,
		"bytes":    n,
	}).Debug("Wrote payload to stream")

	return nil
}

func (s *tcpSender) fail(op string, err error) error {
	return &Error{Protocol: ProtocolTCP, Endpoint: s.endpoint, Op: op, Err: err}
}

// writeDeadline is now+timeout, or the context deadline if earlier.
func writeDeadline(ctx context.Context, timeout time.Duration) time.Time {
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	return deadline
}
