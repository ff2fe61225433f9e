package strategy

import (
	"github.com/sson-dev/sson/handler"
	"github.com/sson-dev/sson/token"
)

// All is the strategy that runs a single handler over every element in the
// document, matched or not (matcherIdx is always 0). If the handler is a
// converter its output replaces the original bytes; otherwise it only
// observes, and the original bytes pass through unchanged.
type All struct {
	handler     handler.Handler
	isConverter bool
	tz          *token.Tokenizer

	raw     []byte
	lastOff int
	depth   int
}

// NewAll returns an All strategy running h over every element.
func NewAll(h handler.Handler) *All {
	return &All{handler: h, isConverter: h.IsConverter(), tz: token.New()}
}

// Process feeds b to the tokenizer and returns every frame produced before
// the tokenizer reports Pending.
func (a *All) Process(b []byte) ([]Frame, error) {
	a.raw = append(a.raw, b...)
	a.tz.Feed(b)
	var frames []Frame
	for {
		tok, err := a.tz.Read()
		if err != nil {
			return frames, err
		}
		if tok.Type == token.Pending {
			return frames, nil
		}
		out, err := a.dispatch(tok)
		frames = append(frames, out...)
		if err != nil {
			return frames, err
		}
	}
}

func (a *All) feed(gap []byte) ([]byte, error) {
	if len(gap) == 0 {
		return nil, nil
	}
	fd, ok := a.handler.(handler.Feeder)
	if !ok {
		return nil, nil
	}
	return fd.Feed(gap, 0)
}

func (a *All) dispatch(tok token.Token) ([]Frame, error) {
	var out []Frame
	gap := a.raw[a.lastOff:tok.Offset]
	a.lastOff = tok.Offset

	switch tok.Type {
	case token.Start:
		a.depth++
		if a.depth == 1 {
			out = append(out, Frame{Kind: DocStart})
		}
		fed, err := a.feed(gap)
		if err != nil {
			return out, err
		}
		if a.isConverter {
			if f, ok := dataFrame(fed); ok {
				out = append(out, f)
			}
		} else if f, ok := dataFrame(gap); ok {
			out = append(out, f)
		}

		p := a.tz.CurrentPath()
		if st, ok := a.handler.(handler.Starter); ok {
			startOut, err := st.Start(p, 0, tok)
			if err != nil {
				return out, err
			}
			if a.isConverter {
				if f, ok := dataFrame(startOut); ok {
					out = append(out, f)
				}
			}
		}

	case token.End:
		fed, err := a.feed(gap)
		if err != nil {
			return out, err
		}
		if a.isConverter {
			if f, ok := dataFrame(fed); ok {
				out = append(out, f)
			}
		} else if f, ok := dataFrame(gap); ok {
			out = append(out, f)
		}

		p := a.tz.CurrentPath()
		if en, ok := a.handler.(handler.Ender); ok {
			endOut, err := en.End(p, 0, tok)
			if err != nil {
				return out, err
			}
			if a.isConverter {
				if f, ok := dataFrame(endOut); ok {
					out = append(out, f)
				}
			}
		}
		a.depth--
		if a.depth == 0 {
			out = append(out, Frame{Kind: DocEnd})
			if jf, ok := a.handler.(handler.JSONFinisher); ok {
				if _, err := jf.JSONFinished(); err != nil {
					return out, err
				}
			}
		}

	case token.Separator:
		fed, err := a.feed(gap)
		if err != nil {
			return out, err
		}
		if a.isConverter {
			if f, ok := dataFrame(fed); ok {
				out = append(out, f)
			}
		} else if f, ok := dataFrame(gap); ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// Terminate signals end of input, returning any frames the tokenizer's own
// bare-scalar flush produces. It fails with token.InputTerminatedError if a
// document is still open.
func (a *All) Terminate() ([]Frame, error) {
	tok, atBoundary, err := a.tz.Terminate()
	if err != nil {
		return nil, err
	}
	var frames []Frame
	if !atBoundary {
		out, dispatchErr := a.dispatch(tok)
		frames = append(frames, out...)
		if dispatchErr != nil {
			return frames, dispatchErr
		}
	}
	if a.depth != 0 {
		return frames, &InputTerminatedError{Offset: a.lastOff}
	}
	if inf, ok := a.handler.(handler.InputFinisher); ok {
		if _, err := inf.InputFinished(); err != nil {
			return frames, err
		}
	}
	return frames, nil
}
