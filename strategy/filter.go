package strategy

import (
	"github.com/sson-dev/sson/handler"
	"github.com/sson-dev/sson/token"
)

type filterActive struct {
	matcherIdx    int
	handler       handler.Handler
	depth         int
	wasFirstChild bool
}

// Filter is the transforming strategy that removes matched regions from
// the output while keeping the result syntactically valid JSON: removing a
// non-first child swallows the comma that preceded it; removing a first
// child (with later siblings) swallows the comma that follows it instead;
// removing an only child simply leaves the parent empty.
type Filter struct {
	bindings []Binding
	tz       *token.Tokenizer

	raw       []byte
	flushedTo int
	depth     int

	// childCount[i] counts how many children container at nesting depth
	// i+1 has seen so far (including any that were themselves filtered).
	childCount []int

	pendingSeparator     bool
	swallowNextSeparator bool

	active *filterActive
}

// NewFilter returns a Filter strategy over the given bindings.
func NewFilter(bindings ...Binding) *Filter {
	return &Filter{bindings: bindings, tz: token.New()}
}

// Process feeds b to the tokenizer and returns every frame produced before
// the tokenizer reports Pending.
func (f *Filter) Process(b []byte) ([]Frame, error) {
	f.raw = append(f.raw, b...)
	f.tz.Feed(b)
	var frames []Frame
	for {
		tok, err := f.tz.Read()
		if err != nil {
			return frames, err
		}
		if tok.Type == token.Pending {
			return frames, nil
		}
		out, err := f.dispatch(tok)
		frames = append(frames, out...)
		if err != nil {
			return frames, err
		}
	}
}

func (f *Filter) parentChildCount() int {
	if len(f.childCount) == 0 {
		return 0
	}
	return f.childCount[len(f.childCount)-1]
}

func (f *Filter) dispatch(tok token.Token) ([]Frame, error) {
	if f.active != nil {
		return f.dispatchActive(tok)
	}
	return f.dispatchPassthrough(tok)
}

func (f *Filter) dispatchPassthrough(tok token.Token) ([]Frame, error) {
	var out []Frame
	switch tok.Type {
	case token.Start:
		f.depth++
		if f.depth == 1 {
			out = append(out, Frame{Kind: DocStart})
		}
		isFirstChild := f.parentChildCount() == 0
		f.bumpParentChildCount()

		p := f.tz.CurrentPath()
		var matchedIdx = -1
		var matchedHandler handler.Handler
		for idx, bnd := range f.bindings {
			if bnd.Matcher.Match(p, tok.Kind) {
				matchedIdx, matchedHandler = idx, bnd.Handler
				break
			}
		}

		if matchedIdx < 0 {
			// Not filtered: ordinary passthrough, restoring any held
			// comma from a prior Separator.
			if fr, ok2 := dataFrame(f.raw[f.flushedTo:tok.Offset]); ok2 {
				out = append(out, fr)
			}
			f.flushedTo = tok.Offset
			f.pendingSeparator = false
			f.childCount = append(f.childCount, 0)
			break
		}

		if !isFirstChild {
			// Swallow the preceding comma: discard everything back to the
			// last flush point, including the held separator.
			f.flushedTo = tok.Offset
		} else {
			if fr, ok2 := dataFrame(f.raw[f.flushedTo:tok.Offset]); ok2 {
				out = append(out, fr)
			}
			f.flushedTo = tok.Offset
		}
		f.pendingSeparator = false
		f.active = &filterActive{matcherIdx: matchedIdx, handler: matchedHandler, depth: f.depth, wasFirstChild: isFirstChild}
		if st, ok := matchedHandler.(handler.Starter); ok {
			if _, err := st.Start(p, matchedIdx, tok); err != nil {
				return out, err
			}
		}
		f.childCount = append(f.childCount, 0)

	case token.Separator:
		if f.swallowNextSeparator {
			f.flushedTo = tok.Offset + 1
			f.swallowNextSeparator = false
			f.pendingSeparator = false
			break
		}
		if fr, ok := dataFrame(f.raw[f.flushedTo:tok.Offset]); ok {
			out = append(out, fr)
		}
		f.flushedTo = tok.Offset
		f.pendingSeparator = true

	case token.End:
		if f.swallowNextSeparator {
			f.swallowNextSeparator = false
		}
		if fr, ok := dataFrame(f.raw[f.flushedTo:tok.Offset]); ok {
			out = append(out, fr)
		}
		f.flushedTo = tok.Offset
		f.pendingSeparator = false
		if len(f.childCount) > 0 {
			f.childCount = f.childCount[:len(f.childCount)-1]
		}
		f.depth--
		if f.depth == 0 {
			out = append(out, Frame{Kind: DocEnd})
		}
	}
	return out, nil
}

func (f *Filter) dispatchActive(tok token.Token) ([]Frame, error) {
	gap := f.raw[f.flushedTo:tok.Offset]
	f.flushedTo = tok.Offset

	switch tok.Type {
	case token.Start:
		f.depth++
		if fd, ok := f.active.handler.(handler.Feeder); ok && len(gap) > 0 {
			if _, err := fd.Feed(gap, f.active.matcherIdx); err != nil {
				return nil, err
			}
		}
		p := f.tz.CurrentPath()
		if st, ok := f.active.handler.(handler.Starter); ok {
			if _, err := st.Start(p, f.active.matcherIdx, tok); err != nil {
				return nil, err
			}
		}
		f.childCount = append(f.childCount, 0)

	case token.Separator:
		if fd, ok := f.active.handler.(handler.Feeder); ok && len(gap) > 0 {
			if _, err := fd.Feed(gap, f.active.matcherIdx); err != nil {
				return nil, err
			}
		}

	case token.End:
		if fd, ok := f.active.handler.(handler.Feeder); ok && len(gap) > 0 {
			if _, err := fd.Feed(gap, f.active.matcherIdx); err != nil {
				return nil, err
			}
		}
		if len(f.childCount) > 0 {
			f.childCount = f.childCount[:len(f.childCount)-1]
		}
		if f.active.depth == f.depth {
			p := f.tz.CurrentPath()
			if en, ok := f.active.handler.(handler.Ender); ok {
				if _, err := en.End(p, f.active.matcherIdx, tok); err != nil {
					return nil, err
				}
			}
			f.swallowNextSeparator = f.active.wasFirstChild
			f.active = nil
		}
		f.depth--
		if f.depth == 0 {
			return []Frame{{Kind: DocEnd}}, nil
		}
	}
	return nil, nil
}

func (f *Filter) bumpParentChildCount() {
	if len(f.childCount) == 0 {
		return
	}
	f.childCount[len(f.childCount)-1]++
}

// Terminate signals end of input, returning any frames the tokenizer's own
// bare-scalar flush produces. It fails with token.InputTerminatedError if a
// document is still open.
func (f *Filter) Terminate() ([]Frame, error) {
	tok, atBoundary, err := f.tz.Terminate()
	if err != nil {
		return nil, err
	}
	var frames []Frame
	if !atBoundary {
		out, dispatchErr := f.dispatch(tok)
		frames = append(frames, out...)
		if dispatchErr != nil {
			return frames, dispatchErr
		}
	}
	if f.depth != 0 {
		return frames, &InputTerminatedError{Offset: f.flushedTo}
	}
	return frames, nil
}
