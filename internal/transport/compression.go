package transport

import (
	"bytes"
	"compress/gzip"
	"compress/zlib"
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Compression type constants.
const (
	CompressionNone   = "none"
	CompressionGzip   = "gzip"
	CompressionZstd   = "zstd"
	CompressionZlib   = "zlib"
	CompressionSnappy = "snappy"
)

// compress encodes payload with the given algorithm and returns the
// matching Content-Encoding value (empty for none).
func compress(algorithm string, payload []byte) ([]byte, string, error) {
	switch algorithm {
	case CompressionNone, "":
		return payload, "", nil
	case CompressionGzip:
		out, err := compressGzip(payload)

		return out, "gzip", err
	case CompressionZstd:
		out, err := compressZstd(payload)

		return out, "zstd", err
	case CompressionZlib:
		out, err := compressZlib(payload)

		return out, "deflate", err
	case CompressionSnappy:
		return snappy.Encode(nil, payload), "snappy", nil
	default:
		return nil, "", fmt.Errorf("unsupported compression algorithm: %s", algorithm)
	}
}

func compressGzip(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := gzip.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("gzip write: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}

	return buf.Bytes(), nil
}

// compressZstd uses an encoder scoped to this call.
func compressZstd(data []byte) ([]byte, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	defer encoder.Close()

	return encoder.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func compressZlib(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w := zlib.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib write: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}

	return buf.Bytes(), nil
}
