// Package dispatch turns a job's final counters into one Graphite batch
// and sends it.
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/counterpush/internal/counter"
	"github.com/ethpandaops/counterpush/internal/graphite"
	"github.com/ethpandaops/counterpush/internal/naming"
	"github.com/ethpandaops/counterpush/internal/telemetry"
	"github.com/ethpandaops/counterpush/internal/transport"
)

// SenderFactory builds the transport for one dispatch.
type SenderFactory func(log logrus.FieldLogger, cfg transport.Config) (transport.Sender, error)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithSenderFactory replaces transport.New, e.g. with an in-memory sender.
func WithSenderFactory(f SenderFactory) Option {
	return func(d *Dispatcher) {
		d.newSender = f
	}
}

// WithMetrics records dispatch outcomes on m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// Dispatcher runs the counter-to-collector pipeline. It keeps no state
// between calls.
type Dispatcher struct {
	log       logrus.FieldLogger
	newSender SenderFactory
	metrics   *telemetry.Metrics
}

// New creates a Dispatcher.
func New(log logrus.FieldLogger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		log:       log.WithField("component", "dispatcher"),
		newSender: transport.New,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// batch is the mapped form of a counter source.
type batch struct {
	metrics []graphite.Metric
	read    int
	skipped int
}

// Dispatch validates cfg, maps every counter of src and sends the
// resulting batch in one transport operation. Nothing is sent when no
// counter carries a value. Configuration errors are returned before
// any socket is opened; transport errors are returned after the single
// send attempt.
func (d *Dispatcher) Dispatch(ctx context.Context, cfg Config, src counter.Source) error {
	mapper, err := cfg.compile()
	if err != nil {
		d.recordResult(telemetry.ResultConfigError)

		return err
	}

	b := buildBatch(cfg, mapper, src)
	d.recordCounts(b)

	log := d.log.WithFields(logrus.Fields{
		"rules":    mapper.Len(),
		"counters": b.read,
		"skipped":  b.skipped,
		"metrics":  len(b.metrics),
	})

	if b.skipped > 0 {
		log.Debug("Skipped counters without value")
	}

	payload := graphite.Encode(b.metrics)
	if len(payload) == 0 {
		d.recordResult(telemetry.ResultEmpty)
		log.Info("No counter values to send")

		return nil
	}

	log.WithField("lines", graphite.Lines(payload)).Debug("Encoded batch")

	sender, err := d.newSender(d.log, cfg.Collector)
	if err != nil {
		d.recordResult(telemetry.ResultConfigError)

		return &ConfigError{Err: fmt.Errorf("creating sender: %w", err)}
	}

	collector := cfg.Collector
	collector.ApplyDefaults()
	protocol := string(collector.Protocol)

	start := time.Now()
	err = sender.Send(ctx, payload)

	if d.metrics != nil {
		d.metrics.ObserveSend(protocol, time.Since(start))
		d.metrics.PayloadBytes.Observe(float64(len(payload)))
	}

	if err != nil {
		d.recordResult(telemetry.ResultTransportError)

		return fmt.Errorf("sending batch: %w", err)
	}

	d.recordResult(telemetry.ResultSuccess)

	if d.metrics != nil {
		d.metrics.MetricsSent.Add(float64(len(b.metrics)))
		d.metrics.LastSuccess.SetToCurrentTime()
	}

	log.WithFields(logrus.Fields{
		"protocol": protocol,
		"bytes":    len(payload),
	}).Info("Dispatched batch")

	return nil
}

// BuildMetrics validates cfg and returns the metrics Dispatch would
// send, in counter source order.
func BuildMetrics(cfg Config, src counter.Source) ([]graphite.Metric, error) {
	mapper, err := cfg.compile()
	if err != nil {
		return nil, err
	}

	return buildBatch(cfg, mapper, src).metrics, nil
}

// BuildPayload validates cfg and returns the payload Dispatch would send.
func BuildPayload(cfg Config, src counter.Source) ([]byte, error) {
	metrics, err := BuildMetrics(cfg, src)
	if err != nil {
		return nil, err
	}

	return graphite.Encode(metrics), nil
}

func buildBatch(cfg Config, mapper *naming.Mapper, src counter.Source) batch {
	var b batch

	for _, grp := range src.Groups() {
		for _, c := range grp.Counters {
			b.read++

			name, ok := mapper.Resolve(grp.Name, c.Name, c.Value)
			if !ok {
				b.skipped++

				continue
			}

			b.metrics = append(b.metrics, graphite.Metric{
				Name:      cfg.metricName(name),
				Value:     *c.Value,
				Timestamp: cfg.Timestamp,
			})
		}
	}

	return b
}

func (d *Dispatcher) recordResult(result string) {
	if d.metrics == nil {
		return
	}

	d.metrics.Dispatches.WithLabelValues(result).Inc()
}

func (d *Dispatcher) recordCounts(b batch) {
	if d.metrics == nil {
		return
	}

	d.metrics.CountersRead.Add(float64(b.read))
	d.metrics.CountersSkipped.Add(float64(b.skipped))
}
