package utils

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

// Compression is the codec selected by a file name suffix
type Compression int

const (
	CompressionNone Compression = iota
	CompressionGzip
	CompressionXz
	CompressionZstd
)

// CompressionFor picks the codec from the suffix of name
func CompressionFor(name string) Compression {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return CompressionGzip
	case strings.HasSuffix(name, ".xz"):
		return CompressionXz
	case strings.HasSuffix(name, ".zst"):
		return CompressionZstd
	}
	return CompressionNone
}

// Compress encodes data for a file called name. Names without a known
// suffix are returned as is.
func Compress(name string, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	var w io.WriteCloser
	var err error

	switch CompressionFor(name) {
	case CompressionGzip:
		w = gzip.NewWriter(&buf)
	case CompressionXz:
		w, err = xz.NewWriter(&buf)
	case CompressionZstd:
		w, err = zstd.NewWriter(&buf)
	default:
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create writer for %s: %w", name, err)
	}

	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewReader wraps r with the decoder matching the suffix of name. The
// returned closer releases the decoder, not r.
func NewReader(name string, r io.Reader) (io.ReadCloser, error) {
	switch CompressionFor(name) {
	case CompressionGzip:
		return gzip.NewReader(r)
	case CompressionXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	}
	return io.NopCloser(r), nil
}

// Decompress decodes the content of a file called name
func Decompress(name string, data []byte) ([]byte, error) {
	r, err := NewReader(name, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return io.ReadAll(r)
}
