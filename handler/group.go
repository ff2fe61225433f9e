package handler

import (
	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// Group composes an ordered pipeline of handlers behind a single Handler
// value. Converters in the chain rewrite the in-flight bytes; each
// converter's output is fed forward into the remaining chain's Feed methods
// before the next stage runs, so a later converter sees an earlier
// converter's transformed bytes rather than the original input.
// Non-converters observe whatever bytes are current but cannot mutate them.
type Group struct {
	children []Handler
}

// NewGroup builds a Group from handlers in pipeline order.
func NewGroup(children ...Handler) *Group {
	return &Group{children: children}
}

// IsConverter reports true if any child is a converter.
func (g *Group) IsConverter() bool {
	for _, c := range g.children {
		if c.IsConverter() {
			return true
		}
	}
	return false
}

// propagate feeds out through every handler after index i that implements
// Feeder, threading each converter's transformed bytes into the next. It
// returns the bytes that emerge from the tail of the chain.
func (g *Group) propagate(i int, out []byte, matcherIdx int) ([]byte, error) {
	cur := out
	for _, later := range g.children[i+1:] {
		f, ok := later.(Feeder)
		if !ok {
			continue
		}
		next, err := f.Feed(cur, matcherIdx)
		if err != nil {
			return nil, err
		}
		if later.IsConverter() && next != nil {
			cur = next
		}
	}
	return cur, nil
}

func (g *Group) Start(p path.Path, matcherIdx int, tok token.Token) ([]byte, error) {
	var out []byte
	for i, c := range g.children {
		s, ok := c.(Starter)
		if !ok {
			continue
		}
		childOut, err := s.Start(p, matcherIdx, tok)
		if err != nil {
			return nil, err
		}
		if childOut == nil {
			continue
		}
		final, err := g.propagate(i, childOut, matcherIdx)
		if err != nil {
			return nil, err
		}
		out = final
	}
	return out, nil
}

func (g *Group) Feed(b []byte, matcherIdx int) ([]byte, error) {
	cur := b
	for _, c := range g.children {
		f, ok := c.(Feeder)
		if !ok {
			continue
		}
		out, err := f.Feed(cur, matcherIdx)
		if err != nil {
			return nil, err
		}
		if c.IsConverter() && out != nil {
			cur = out
		}
	}
	return cur, nil
}

func (g *Group) End(p path.Path, matcherIdx int, tok token.Token) ([]byte, error) {
	var pending []byte
	for i, c := range g.children {
		e, ok := c.(Ender)
		if !ok {
			continue
		}
		childOut, err := e.End(p, matcherIdx, tok)
		if err != nil {
			return nil, err
		}
		if childOut == nil {
			continue
		}
		final, err := g.propagate(i, childOut, matcherIdx)
		if err != nil {
			return nil, err
		}
		pending = final
	}
	return pending, nil
}

func (g *Group) InputFinished() ([]byte, error) {
	var pending []byte
	for _, c := range g.children {
		f, ok := c.(InputFinisher)
		if !ok {
			continue
		}
		out, err := f.InputFinished()
		if err != nil {
			return nil, err
		}
		pending = append(pending, out...)
	}
	return pending, nil
}

func (g *Group) JSONFinished() ([]byte, error) {
	var pending []byte
	for _, c := range g.children {
		f, ok := c.(JSONFinisher)
		if !ok {
			continue
		}
		out, err := f.JSONFinished()
		if err != nil {
			return nil, err
		}
		pending = append(pending, out...)
	}
	return pending, nil
}
