// Package matcher implements path-pattern predicates used to decide whether
// a handler should fire on the element currently being traversed. Matchers
// are closed under boolean composition (And, Or, Not).
package matcher

import (
	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// Matcher decides whether an element at the given path, of the given kind,
// should be considered a match.
type Matcher interface {
	Match(p path.Path, kind token.Kind) bool
}

// MatcherFunc adapts a plain function to the Matcher interface.
type MatcherFunc func(p path.Path, kind token.Kind) bool

func (f MatcherFunc) Match(p path.Path, kind token.Kind) bool { return f(p, kind) }

type allMatcher struct{}

func (allMatcher) Match(path.Path, token.Kind) bool { return true }

// All returns a Matcher that matches every path. It backs the matcher-free
// All strategy and is also useful as a base case inside a Combinator.
func All() Matcher { return allMatcher{} }
