package handler

import (
	"io"

	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// Output is a non-converting handler that writes each matched element's raw
// bytes to an io.Writer as they stream in, optionally prefixing the
// element's canonical path and appending a record separator once it ends.
// The writer is pluggable: a plain file, a gzip.Writer, or a WebhookSink.
type Output struct {
	w           io.Writer
	includePath bool
	separator   []byte
}

// NewOutput returns an Output handler writing to w.
func NewOutput(w io.Writer, includePath bool, separator []byte) *Output {
	return &Output{w: w, includePath: includePath, separator: separator}
}

func (o *Output) IsConverter() bool { return false }

func (o *Output) Start(p path.Path, _ int, _ token.Token) ([]byte, error) {
	if !o.includePath {
		return nil, nil
	}
	if _, err := io.WriteString(o.w, p.String()); err != nil {
		return nil, Wrap("output: write path prefix", err)
	}
	if _, err := o.w.Write([]byte(": ")); err != nil {
		return nil, Wrap("output: write path prefix", err)
	}
	return nil, nil
}

func (o *Output) Feed(b []byte, _ int) ([]byte, error) {
	if _, err := o.w.Write(b); err != nil {
		return nil, Wrap("output: write", err)
	}
	return nil, nil
}

func (o *Output) End(path.Path, int, token.Token) ([]byte, error) {
	if len(o.separator) == 0 {
		return nil, nil
	}
	if _, err := o.w.Write(o.separator); err != nil {
		return nil, Wrap("output: write separator", err)
	}
	return nil, nil
}
