package handler

import (
	"bytes"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// PathTokenCount is one element's model-token tally, as produced by
// TokenCount.
type PathTokenCount struct {
	Path   string
	Tokens int
}

// TokenCount is a non-converting handler that measures each matched
// element's raw bytes against a tiktoken encoding, useful for estimating
// LLM context usage of individual fields before sending a document
// onward.
type TokenCount struct {
	enc     *tiktoken.Tiktoken
	buf     bytes.Buffer
	curPath string
	Counts  []PathTokenCount
}

// NewTokenCount returns a TokenCount handler using the named tiktoken
// encoding (e.g. "cl100k_base").
func NewTokenCount(encoding string) (*TokenCount, error) {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, Wrap("tokencount: load encoding", err)
	}
	return &TokenCount{enc: enc}, nil
}

func (t *TokenCount) IsConverter() bool { return false }

func (t *TokenCount) Start(p path.Path, _ int, _ token.Token) ([]byte, error) {
	t.curPath = p.String()
	t.buf.Reset()
	return nil, nil
}

func (t *TokenCount) Feed(b []byte, _ int) ([]byte, error) {
	t.buf.Write(b)
	return nil, nil
}

func (t *TokenCount) End(path.Path, int, token.Token) ([]byte, error) {
	n := len(t.enc.Encode(t.buf.String(), nil, nil))
	t.Counts = append(t.Counts, PathTokenCount{Path: t.curPath, Tokens: n})
	return nil, nil
}
