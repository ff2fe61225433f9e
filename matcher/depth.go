package matcher

import (
	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

type depthMatcher struct {
	min int
	max *int // nil means unbounded
}

func (d depthMatcher) Match(p path.Path, _ token.Kind) bool {
	depth := p.Depth()
	if depth < d.min {
		return false
	}
	if d.max != nil && depth > *d.max {
		return false
	}
	return true
}

// Depth returns a Matcher matching every path whose depth (number of
// elements, root excluded) falls in [min, max]. A nil max means unbounded.
func Depth(min int, max *int) Matcher {
	return depthMatcher{min: min, max: max}
}

// DepthExactly returns a Matcher matching paths of exactly depth n.
func DepthExactly(n int) Matcher {
	return depthMatcher{min: n, max: &n}
}

// DepthAtLeast returns a Matcher matching paths of depth >= n.
func DepthAtLeast(n int) Matcher {
	return depthMatcher{min: n}
}
