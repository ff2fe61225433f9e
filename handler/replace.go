package handler

import (
	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// Replace is a converter handler that substitutes a matched element,
// wholesale, with a fixed byte sequence. It ignores the element's original
// content entirely, so it does not implement Feeder.
type Replace struct {
	bytes []byte
}

// NewReplace returns a Replace handler that emits b for every match.
func NewReplace(b []byte) *Replace {
	return &Replace{bytes: b}
}

func (r *Replace) IsConverter() bool { return true }

func (r *Replace) End(path.Path, int, token.Token) ([]byte, error) {
	return r.bytes, nil
}
