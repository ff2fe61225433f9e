package matcher

import (
	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

type segKind int

const (
	segKey segKind = iota
	segAnyKey      // {}
	segIndex       // [n]
	segIndexRange  // [n-m]
	segIndexSet    // [n,m,...]
	segAnyIndex    // []
	segAny         // ?
	segWildcard    // *
)

type segment struct {
	kind    segKind
	key     string
	lo, hi  int
	indices []int
}

func (s segment) matches(e path.Element) bool {
	switch s.kind {
	case segKey:
		return e.IsKey() && e.Key() == s.key
	case segAnyKey:
		return e.IsKey()
	case segIndex:
		return e.IsIndex() && e.Index() == s.lo
	case segIndexRange:
		return e.IsIndex() && e.Index() >= s.lo && e.Index() <= s.hi
	case segIndexSet:
		if !e.IsIndex() {
			return false
		}
		for _, n := range s.indices {
			if e.Index() == n {
				return true
			}
		}
		return false
	case segAnyIndex:
		return e.IsIndex()
	case segAny:
		return true
	default:
		return false
	}
}

type simpleMatcher struct {
	pattern  string
	segments []segment
}

func (m simpleMatcher) Match(p path.Path, _ token.Kind) bool {
	return matchSegments(m.segments, p.Elements())
}

// matchSegments walks the pattern and the candidate path in lockstep,
// expanding '*' greedily with backtracking, standard glob-matching style.
func matchSegments(pat []segment, elems []path.Element) bool {
	return matchFrom(pat, elems, 0, 0)
}

func matchFrom(pat []segment, elems []path.Element, pi, ei int) bool {
	for pi < len(pat) {
		seg := pat[pi]
		if seg.kind == segWildcard {
			for k := ei; k <= len(elems); k++ {
				if matchFrom(pat, elems, pi+1, k) {
					return true
				}
			}
			return false
		}
		if ei >= len(elems) {
			return false
		}
		if !seg.matches(elems[ei]) {
			return false
		}
		pi++
		ei++
	}
	return ei == len(elems)
}

// Simple returns a Matcher for the canonical pattern language: literal
// `{"key"}` and `[n]` segments, `{}`/`[]` for any-one-key/any-one-index,
// `?` for any single element, and `*` for zero or more elements (greedy).
func Simple(pattern string) (Matcher, error) {
	segs, err := parseSimple(pattern)
	if err != nil {
		return nil, err
	}
	return simpleMatcher{pattern: pattern, segments: segs}, nil
}

// MustSimple is like Simple but panics on a malformed pattern. Intended for
// matchers built from constants, not user input.
func MustSimple(pattern string) Matcher {
	m, err := Simple(pattern)
	if err != nil {
		panic(err)
	}
	return m
}
