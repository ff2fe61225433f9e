package handler

import (
	"bytes"

	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// Shorten is a converter handler that truncates an overly long element to
// max+1 bytes followed by a terminator, leaving shorter elements untouched.
type Shorten struct {
	max        int
	terminator []byte
	buf        bytes.Buffer
}

// NewShorten returns a Shorten handler with the given byte budget.
func NewShorten(max int, terminator []byte) *Shorten {
	return &Shorten{max: max, terminator: terminator}
}

func (s *Shorten) IsConverter() bool { return true }

func (s *Shorten) Start(path.Path, int, token.Token) ([]byte, error) {
	s.buf.Reset()
	return nil, nil
}

func (s *Shorten) Feed(b []byte, _ int) ([]byte, error) {
	s.buf.Write(b)
	return nil, nil
}

func (s *Shorten) End(path.Path, int, token.Token) ([]byte, error) {
	data := s.buf.Bytes()
	if len(data) <= s.max {
		return append([]byte(nil), data...), nil
	}
	out := make([]byte, 0, s.max+1+len(s.terminator))
	out = append(out, data[:s.max+1]...)
	out = append(out, s.terminator...)
	return out, nil
}
