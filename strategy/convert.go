package strategy

import (
	"github.com/sson-dev/sson/handler"
	"github.com/sson-dev/sson/token"
)

type convertActive struct {
	matcherIdx int
	handler    handler.Handler
	depth      int // nesting depth at which this match will End
}

// Convert is the transforming, non-nested strategy: at most one match is
// active at a time. Outermost wins; a matcher firing inside an already
// active region is ignored. Passthrough bytes and the active handler's
// output are interleaved into a DocStart/Data/DocEnd frame stream.
type Convert struct {
	bindings []Binding
	tz       *token.Tokenizer

	raw     []byte
	lastOff int
	depth   int
	active  *convertActive
}

// NewConvert returns a Convert strategy over the given bindings.
func NewConvert(bindings ...Binding) *Convert {
	return &Convert{bindings: bindings, tz: token.New()}
}

// Process feeds b to the tokenizer and returns every frame produced before
// the tokenizer reports Pending.
func (c *Convert) Process(b []byte) ([]Frame, error) {
	c.raw = append(c.raw, b...)
	c.tz.Feed(b)
	var frames []Frame
	for {
		tok, err := c.tz.Read()
		if err != nil {
			return frames, err
		}
		if tok.Type == token.Pending {
			return frames, nil
		}
		out, err := c.dispatch(tok)
		frames = append(frames, out...)
		if err != nil {
			return frames, err
		}
	}
}

func (c *Convert) dispatch(tok token.Token) ([]Frame, error) {
	var out []Frame
	switch tok.Type {
	case token.Start:
		c.depth++
		if c.depth == 1 {
			out = append(out, Frame{Kind: DocStart})
		}
		gap := c.raw[c.lastOff:tok.Offset]
		c.lastOff = tok.Offset
		if c.active == nil {
			if f, ok := dataFrame(gap); ok {
				out = append(out, f)
			}
			p := c.tz.CurrentPath()
			for idx, bnd := range c.bindings {
				if !bnd.Matcher.Match(p, tok.Kind) {
					continue
				}
				c.active = &convertActive{matcherIdx: idx, handler: bnd.Handler, depth: c.depth}
				if st, ok := bnd.Handler.(handler.Starter); ok {
					startOut, err := st.Start(p, idx, tok)
					if err != nil {
						return out, err
					}
					if f, ok := dataFrame(startOut); ok {
						out = append(out, f)
					}
				}
				break
			}
		} else {
			fed, err := c.feedActive(gap)
			if err != nil {
				return out, err
			}
			if f, ok := dataFrame(fed); ok {
				out = append(out, f)
			}
		}

	case token.End:
		gap := c.raw[c.lastOff:tok.Offset]
		c.lastOff = tok.Offset
		if c.active == nil {
			if f, ok := dataFrame(gap); ok {
				out = append(out, f)
			}
		} else {
			fed, err := c.feedActive(gap)
			if err != nil {
				return out, err
			}
			if f, ok := dataFrame(fed); ok {
				out = append(out, f)
			}
			if c.active.depth == c.depth {
				p := c.tz.CurrentPath()
				if en, ok := c.active.handler.(handler.Ender); ok {
					endOut, err := en.End(p, c.active.matcherIdx, tok)
					if err != nil {
						return out, err
					}
					if f, ok := dataFrame(endOut); ok {
						out = append(out, f)
					}
				}
				c.active = nil
			}
		}
		c.depth--
		if c.depth == 0 {
			out = append(out, Frame{Kind: DocEnd})
		}
	}
	return out, nil
}

func (c *Convert) feedActive(gap []byte) ([]byte, error) {
	if len(gap) == 0 || c.active == nil {
		return nil, nil
	}
	fd, ok := c.active.handler.(handler.Feeder)
	if !ok {
		return nil, nil
	}
	return fd.Feed(gap, c.active.matcherIdx)
}

// Terminate signals end of input, returning any frames the tokenizer's own
// bare-scalar flush produces. It fails with token.InputTerminatedError if a
// document is still open.
func (c *Convert) Terminate() ([]Frame, error) {
	tok, atBoundary, err := c.tz.Terminate()
	if err != nil {
		return nil, err
	}
	var frames []Frame
	if !atBoundary {
		out, dispatchErr := c.dispatch(tok)
		frames = append(frames, out...)
		if dispatchErr != nil {
			return frames, dispatchErr
		}
	}
	if c.depth != 0 {
		return frames, &InputTerminatedError{Offset: c.lastOff}
	}
	return frames, nil
}
