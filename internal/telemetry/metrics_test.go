package telemetry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() logrus.FieldLogger {
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)

	return log
}

func TestMetrics_CounterIncrement(t *testing.T) {
	m := NewMetrics(testLog())

	m.Dispatches.WithLabelValues(ResultSuccess).Inc()
	m.Dispatches.WithLabelValues(ResultTransportError).Inc()
	m.Dispatches.WithLabelValues(ResultSuccess).Inc()
	m.CountersRead.Add(3)
	m.MetricsSent.Add(2)
	m.ObserveSend("udp", 10*time.Millisecond)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Dispatches.WithLabelValues(ResultSuccess)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Dispatches.WithLabelValues(ResultTransportError)))
	assert.Equal(t, float64(3), testutil.ToFloat64(m.CountersRead))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.MetricsSent))
	assert.Equal(t, 1, testutil.CollectAndCount(m.SendDuration))
}

func TestMetrics_Registry(t *testing.T) {
	m := NewMetrics(testLog())

	m.Dispatches.WithLabelValues(ResultSuccess).Inc()
	m.ObserveSend("tcp", time.Millisecond)

	count, err := testutil.GatherAndCount(m.Registry(),
		"counterpush_dispatches_total",
		"counterpush_send_duration_seconds",
		"counterpush_last_success_timestamp_seconds",
	)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// Registries are private to each Metrics value.
	other := NewMetrics(testLog())
	assert.NotSame(t, m.Registry(), other.Registry())

	count, err = testutil.GatherAndCount(other.Registry(), "counterpush_dispatches_total")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMetrics_PushDisabled(t *testing.T) {
	m := NewMetrics(testLog())

	assert.NoError(t, m.Push(context.Background(), Config{}))
}

func TestMetrics_Push(t *testing.T) {
	var (
		method string
		path   string
		body   []byte
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		path = r.URL.Path
		body, _ = io.ReadAll(r.Body)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewMetrics(testLog())
	m.MetricsSent.Add(5)

	require.NoError(t, m.Push(context.Background(), Config{Pushgateway: server.URL, Job: "wordcount"}))

	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/wordcount", path)
	assert.NotEmpty(t, body)
}

func TestMetrics_PushDefaultJob(t *testing.T) {
	var path string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewMetrics(testLog())

	require.NoError(t, m.Push(context.Background(), Config{Pushgateway: server.URL}))
	assert.Equal(t, "/metrics/job/counterpush", path)
}

func TestMetrics_PushError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	m := NewMetrics(testLog())

	err := m.Push(context.Background(), Config{Pushgateway: server.URL})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pushing metrics to")
}
