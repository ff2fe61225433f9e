package handler

import (
	"bytes"
	"encoding/json"

	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// Unstringify is a converter handler for the common "JSON embedded as a
// JSON string" shape: it expects the matched element to be a quoted string
// and emits its unescaped contents as raw bytes, unwrapping one layer of
// string encoding (typically so a downstream tool can re-tokenize it as
// JSON in its own right).
type Unstringify struct {
	buf bytes.Buffer
}

// NewUnstringify returns an Unstringify handler.
func NewUnstringify() *Unstringify {
	return &Unstringify{}
}

func (u *Unstringify) IsConverter() bool { return true }

func (u *Unstringify) Start(path.Path, int, token.Token) ([]byte, error) {
	u.buf.Reset()
	return nil, nil
}

func (u *Unstringify) Feed(b []byte, _ int) ([]byte, error) {
	u.buf.Write(b)
	return nil, nil
}

func (u *Unstringify) End(path.Path, int, token.Token) ([]byte, error) {
	data := u.buf.Bytes()
	if len(data) < 2 || data[0] != '"' {
		return nil, &Error{Msg: "unstringify: matched value is not a quoted string"}
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, Wrap("unstringify: decode string", err)
	}
	return []byte(s), nil
}
