package strategy

import (
	"github.com/sson-dev/sson/matcher"
	"github.com/sson-dev/sson/token"
)

// Item is one sub-document Extract yields: the matched element's raw bytes
// and, if exportPath was requested, its canonical path at emission time.
type Item struct {
	Path    string
	HasPath bool
	Bytes   []byte
}

type extractActive struct {
	depth int
	buf   []byte
}

// Extract is the strategy that yields matched sub-documents rather than
// transforming or observing them in place. At most one match is active at
// a time (outermost wins); it never produces passthrough output.
type Extract struct {
	m          matcher.Matcher
	exportPath bool
	tz         *token.Tokenizer

	raw     []byte
	lastOff int
	depth   int
	active  *extractActive
}

// NewExtract returns an Extract strategy. Combine multiple matchers with
// matcher.Or before passing them here.
func NewExtract(m matcher.Matcher, exportPath bool) *Extract {
	return &Extract{m: m, exportPath: exportPath, tz: token.New()}
}

// Process feeds b to the tokenizer and returns every item yielded before
// the tokenizer reports Pending.
func (e *Extract) Process(b []byte) ([]Item, error) {
	e.raw = append(e.raw, b...)
	e.tz.Feed(b)
	var items []Item
	for {
		tok, err := e.tz.Read()
		if err != nil {
			return items, err
		}
		if tok.Type == token.Pending {
			return items, nil
		}
		item, dispatchErr := e.dispatch(tok)
		if item != nil {
			items = append(items, *item)
		}
		if dispatchErr != nil {
			return items, dispatchErr
		}
	}
}

func (e *Extract) dispatch(tok token.Token) (*Item, error) {
	switch tok.Type {
	case token.Start:
		e.depth++
		gap := e.raw[e.lastOff:tok.Offset]
		e.lastOff = tok.Offset
		if e.active == nil {
			p := e.tz.CurrentPath()
			if e.m.Match(p, tok.Kind) {
				e.active = &extractActive{depth: e.depth}
			}
		} else {
			e.active.buf = append(e.active.buf, gap...)
		}

	case token.Separator:
		if e.active != nil {
			gap := e.raw[e.lastOff:tok.Offset]
			e.lastOff = tok.Offset
			e.active.buf = append(e.active.buf, gap...)
		}

	case token.End:
		gap := e.raw[e.lastOff:tok.Offset]
		e.lastOff = tok.Offset
		if e.active != nil {
			e.active.buf = append(e.active.buf, gap...)
			if e.active.depth == e.depth {
				item := Item{Bytes: e.active.buf}
				if e.exportPath {
					item.HasPath = true
					item.Path = e.tz.CurrentPath().String()
				}
				e.active = nil
				e.depth--
				return &item, nil
			}
		}
		e.depth--
	}
	return nil, nil
}

// Terminate signals end of input, yielding the tokenizer's own bare-scalar
// flush if applicable. It fails with token.InputTerminatedError if a document is
// still open.
func (e *Extract) Terminate() ([]Item, error) {
	tok, atBoundary, err := e.tz.Terminate()
	if err != nil {
		return nil, err
	}
	var items []Item
	if !atBoundary {
		item, dispatchErr := e.dispatch(tok)
		if item != nil {
			items = append(items, *item)
		}
		if dispatchErr != nil {
			return items, dispatchErr
		}
	}
	if e.depth != 0 {
		return items, &InputTerminatedError{Offset: e.lastOff}
	}
	return items, nil
}
