package matcher

import (
	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// Combinator is a Matcher built from other Matchers via boolean algebra.
// Not, And, and Or all return values that satisfy Combinator as well as
// Matcher, so combinators nest arbitrarily deep.
type Combinator interface {
	Matcher
	isCombinator()
}

type notMatcher struct{ m Matcher }

func (n notMatcher) Match(p path.Path, k token.Kind) bool { return !n.m.Match(p, k) }
func (notMatcher) isCombinator()                          {}

// Not returns a Matcher that matches iff m does not.
func Not(m Matcher) Combinator { return notMatcher{m} }

type andMatcher struct{ l, r Matcher }

func (a andMatcher) Match(p path.Path, k token.Kind) bool {
	// Short-circuit: only evaluate r if l already matched.
	return a.l.Match(p, k) && a.r.Match(p, k)
}
func (andMatcher) isCombinator() {}

// And returns a Matcher that matches iff both l and r match, short-circuit
// evaluated left to right.
func And(l, r Matcher) Combinator { return andMatcher{l, r} }

type orMatcher struct{ l, r Matcher }

func (o orMatcher) Match(p path.Path, k token.Kind) bool {
	return o.l.Match(p, k) || o.r.Match(p, k)
}
func (orMatcher) isCombinator() {}

// Or returns a Matcher that matches iff either l or r matches, short-circuit
// evaluated left to right.
func Or(l, r Matcher) Combinator { return orMatcher{l, r} }

// AnyOf is a convenience for Or-ing an arbitrary number of matchers.
// AnyOf() with no arguments matches nothing.
func AnyOf(ms ...Matcher) Matcher {
	if len(ms) == 0 {
		return MatcherFunc(func(path.Path, token.Kind) bool { return false })
	}
	acc := ms[0]
	for _, m := range ms[1:] {
		acc = Or(acc, m)
	}
	return acc
}
