package strategy

import (
	"github.com/sson-dev/sson/handler"
	"github.com/sson-dev/sson/token"
)

// Trigger is the observing strategy: for every matched element it invokes
// the bound handler's lifecycle methods, emitting no transformed output of
// its own. It is the fastest strategy since it never buffers for replay,
// only for handler feeding.
type Trigger struct {
	bindings []Binding
	tz       *token.Tokenizer

	raw     []byte
	lastOff int

	// matchStack has one entry per currently open element; each entry
	// lists the indices of bindings whose matcher fired for that element.
	matchStack [][]int
}

// NewTrigger returns a Trigger strategy over the given bindings.
func NewTrigger(bindings ...Binding) *Trigger {
	return &Trigger{bindings: bindings, tz: token.New()}
}

// Process feeds b to the tokenizer and dispatches every token it yields.
// It returns when the tokenizer reports Pending.
func (s *Trigger) Process(b []byte) error {
	s.raw = append(s.raw, b...)
	s.tz.Feed(b)
	for {
		tok, err := s.tz.Read()
		if err != nil {
			return err
		}
		if tok.Type == token.Pending {
			return nil
		}
		if err := s.dispatch(tok); err != nil {
			return err
		}
	}
}

func (s *Trigger) dispatch(tok token.Token) error {
	switch tok.Type {
	case token.Start:
		if err := s.feedActive(s.raw[s.lastOff:tok.Offset]); err != nil {
			return err
		}
		s.lastOff = tok.Offset
		p := s.tz.CurrentPath()
		var frame []int
		for idx, bnd := range s.bindings {
			if !bnd.Matcher.Match(p, tok.Kind) {
				continue
			}
			frame = append(frame, idx)
			if st, ok := bnd.Handler.(handler.Starter); ok {
				if _, err := st.Start(p, idx, tok); err != nil {
					return err
				}
			}
		}
		s.matchStack = append(s.matchStack, frame)

	case token.End:
		if err := s.feedActive(s.raw[s.lastOff:tok.Offset]); err != nil {
			return err
		}
		s.lastOff = tok.Offset
		p := s.tz.CurrentPath()
		top := s.matchStack[len(s.matchStack)-1]
		for _, idx := range top {
			bnd := s.bindings[idx]
			if en, ok := bnd.Handler.(handler.Ender); ok {
				if _, err := en.End(p, idx, tok); err != nil {
					return err
				}
			}
		}
		s.matchStack = s.matchStack[:len(s.matchStack)-1]
		if len(s.matchStack) == 0 {
			for _, bnd := range s.bindings {
				if jf, ok := bnd.Handler.(handler.JSONFinisher); ok {
					if _, err := jf.JSONFinished(); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// feedActive feeds gap to every handler referenced anywhere on the match
// stack, each called at most once: outermost open element first, and in
// matcher declaration order within one element.
func (s *Trigger) feedActive(gap []byte) error {
	if len(gap) == 0 {
		return nil
	}
	seen := make(map[int]bool)
	for _, frame := range s.matchStack {
		for _, idx := range frame {
			if seen[idx] {
				continue
			}
			seen[idx] = true
			if fd, ok := s.bindings[idx].Handler.(handler.Feeder); ok {
				if _, err := fd.Feed(gap, idx); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// Terminate signals end of input. It fails with token.InputTerminatedError if a
// document is still open (ignoring the tokenizer's own bare-scalar flush,
// which Terminate applies first).
func (s *Trigger) Terminate() error {
	tok, atBoundary, err := s.tz.Terminate()
	if err != nil {
		return err
	}
	if !atBoundary {
		if err := s.dispatch(tok); err != nil {
			return err
		}
	}
	if len(s.matchStack) != 0 {
		return &InputTerminatedError{Offset: s.lastOff}
	}
	for _, bnd := range s.bindings {
		if inf, ok := bnd.Handler.(handler.InputFinisher); ok {
			if _, err := inf.InputFinished(); err != nil {
				return err
			}
		}
	}
	return nil
}
