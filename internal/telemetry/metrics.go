// Package telemetry holds the self-metrics of counterpush runs.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/sirupsen/logrus"
)

const namespace = "counterpush"

// Dispatch results used as the "result" label.
const (
	ResultSuccess        = "success"
	ResultEmpty          = "empty"
	ResultConfigError    = "config_error"
	ResultTransportError = "transport_error"
)

// Config configures optional metric pushing.
type Config struct {
	// Pushgateway is the Prometheus Pushgateway URL. Empty disables pushing.
	Pushgateway string `yaml:"pushgateway" toml:"pushgateway"`

	// Job is the Pushgateway job label. Defaults to "counterpush".
	Job string `yaml:"job" toml:"job"`
}

// Metrics records dispatch outcomes.
type Metrics struct {
	log      logrus.FieldLogger
	registry *prometheus.Registry

	Dispatches      *prometheus.CounterVec // result
	CountersRead    prometheus.Counter
	CountersSkipped prometheus.Counter
	MetricsSent     prometheus.Counter
	PayloadBytes    prometheus.Histogram
	SendDuration    *prometheus.HistogramVec // protocol
	LastSuccess     prometheus.Gauge
}

// NewMetrics creates and registers the dispatch metrics on a private
// registry.
func NewMetrics(log logrus.FieldLogger) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		log:      log.WithField("component", "telemetry"),
		registry: reg,

		Dispatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dispatches_total",
				Help:      "Total dispatch attempts by result.",
			},
			[]string{"result"},
		),
		CountersRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counters_read_total",
			Help:      "Total job counters read from the counter source.",
		}),
		CountersSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counters_skipped_total",
			Help:      "Total job counters skipped for lack of a value.",
		}),
		MetricsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "metrics_sent_total",
			Help:      "Total metric lines handed to the transport successfully.",
		}),
		PayloadBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "payload_bytes",
			Help:      "Size of encoded payloads in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8), // 64B-1MB
		}),
		SendDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "send_duration_seconds",
				Help:      "Time spent in a single transport send by protocol.",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}, // 1ms-5s
			},
			[]string{"protocol"},
		),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful dispatch.",
		}),
	}

	reg.MustRegister(
		m.Dispatches,
		m.CountersRead,
		m.CountersSkipped,
		m.MetricsSent,
		m.PayloadBytes,
		m.SendDuration,
		m.LastSuccess,
	)

	return m
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveSend records one transport send.
func (m *Metrics) ObserveSend(protocol string, elapsed time.Duration) {
	m.SendDuration.WithLabelValues(protocol).Observe(elapsed.Seconds())
}

// Push sends the current metric values to a Pushgateway. It is a no-op
// when cfg.Pushgateway is empty.
func (m *Metrics) Push(ctx context.Context, cfg Config) error {
	if cfg.Pushgateway == "" {
		return nil
	}

	job := cfg.Job
	if job == "" {
		job = namespace
	}

	if err := push.New(cfg.Pushgateway, job).
		Gatherer(m.registry).
		PushContext(ctx); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", cfg.Pushgateway, err)
	}

	m.log.WithFields(logrus.Fields{
		"pushgateway": cfg.Pushgateway,
		"job":         job,
	}).Debug("Pushed metrics")

	return nil
}
