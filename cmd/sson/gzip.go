package main

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// gzipReader wraps r so the caller reads decompressed bytes, closing the
// underlying reader once the gzip reader itself is closed.
func gzipReader(r io.ReadCloser) (io.ReadCloser, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening gzip input: %w", err)
	}
	return &gzipReadCloser{gz: gz, underlying: r}, nil
}

type gzipReadCloser struct {
	gz         *gzip.Reader
	underlying io.ReadCloser
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.gz.Read(p) }

func (g *gzipReadCloser) Close() error {
	if err := g.gz.Close(); err != nil {
		g.underlying.Close()
		return err
	}
	return g.underlying.Close()
}

// gzipWriter wraps w so bytes written to it arrive gzip-compressed,
// flushing and closing the gzip stream (then the underlying writer) on
// Close.
func gzipWriter(w io.WriteCloser) io.WriteCloser {
	return &gzipWriteCloser{gz: gzip.NewWriter(w), underlying: w}
}

type gzipWriteCloser struct {
	gz         *gzip.Writer
	underlying io.WriteCloser
}

func (g *gzipWriteCloser) Write(p []byte) (int, error) { return g.gz.Write(p) }

func (g *gzipWriteCloser) Close() error {
	if err := g.gz.Close(); err != nil {
		g.underlying.Close()
		return err
	}
	return g.underlying.Close()
}
