package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/counterpush/internal/version"
)

// httpSender POSTs the plaintext payload to an HTTP-fronted relay.
type httpSender struct {
	log         logrus.FieldLogger
	endpoint    string
	url         string
	compression string
	headers     map[string]string
	timeout     time.Duration
}

func newHTTPSender(log logrus.FieldLogger, cfg Config) *httpSender {
	u := url.URL{Scheme: "http", Host: cfg.Endpoint(), Path: cfg.Path}

	return &httpSender{
		log:         log.WithField("component", "http_sender"),
		endpoint:    cfg.Endpoint(),
		url:         u.String(),
		compression: cfg.Compression,
		headers:     cfg.Headers,
		timeout:     cfg.Timeout,
	}
}

func (s *httpSender) Send(ctx context.Context, payload []byte) error {
	body, encoding, err := compress(s.compression, payload)
	if err != nil {
		return s.fail("request", fmt.Errorf("compressing data: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return s.fail("request", fmt.Errorf("creating request: %w", err))
	}

	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("User-Agent", version.UserAgent())

	if encoding != "" {
		req.Header.Set("Content-Encoding", encoding)
	}

	for k, v := range s.headers {
		req.Header.Set(k, v)
	}

	// A dedicated client without keep-alives, so the connection does not
	// outlive this call.
	client := &http.Client{
		Timeout:   s.timeout,
		Transport: &http.Transport{DisableKeepAlives: true},
	}
	defer client.CloseIdleConnections()

	resp, err := client.Do(req)
	if err != nil {
		return s.fail("request", fmt.Errorf("sending request: %w", err))
	}

	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return s.fail("status", fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	s.log.WithFields(logrus.Fields{
		"url":        s.url,
		"bytes":      len(payload),
		"compressed": len(body),
	}).Debug("Posted payload")

	return nil
}

func (s *httpSender) fail(op string, err error) error {
	return &Error{Protocol: ProtocolHTTP, Endpoint: s.endpoint, Op: op, Err: err}
}
