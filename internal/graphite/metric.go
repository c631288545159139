// Package graphite encodes metrics in the Graphite plaintext protocol:
//
//	<dotted-metric-name> <int64-value> <int64-epoch-seconds>\n
package graphite

import (
	"bytes"
	"strconv"
)

// Metric is one named value ready for encoding.
type Metric struct {
	Name      string
	Value     int64
	Timestamp int64
}

// AppendLine appends the plaintext line for m, including the
// terminating newline.
func AppendLine(dst []byte, m Metric) []byte {
	dst = append(dst, m.Name...)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, m.Value, 10)
	dst = append(dst, ' ')
	dst = strconv.AppendInt(dst, m.Timestamp, 10)

	return append(dst, '\n')
}

// Encode renders metrics as consecutive lines in input order. An empty
// input yields a nil payload.
func Encode(metrics []Metric) []byte {
	if len(metrics) == 0 {
		return nil
	}

	// Rough per-line estimate: name plus two integers and separators.
	buf := make([]byte, 0, len(metrics)*64)

	for _, m := range metrics {
		buf = AppendLine(buf, m)
	}

	return buf
}

// Lines splits a payload into its lines without the trailing newlines.
func Lines(payload []byte) []string {
	trimmed := bytes.TrimSuffix(payload, []byte{'\n'})
	if len(trimmed) == 0 {
		return nil
	}

	parts := bytes.Split(trimmed, []byte{'\n'})
	lines := make([]string, 0, len(parts))

	for _, p := range parts {
		lines = append(lines, string(p))
	}

	return lines
}
