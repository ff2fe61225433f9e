package matcher

import (
	"regexp"

	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

type regexMatcher struct{ re *regexp.Regexp }

func (r regexMatcher) Match(p path.Path, _ token.Kind) bool {
	return r.re.MatchString(p.String())
}

// Regex returns a Matcher that matches a path iff the given regular
// expression finds a match anywhere in the path's canonical string form.
func Regex(pattern string) (Matcher, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, &ParseError{Definition: pattern, Msg: err.Error()}
	}
	return regexMatcher{re}, nil
}

// MustRegex is like Regex but panics on a malformed pattern. Intended for
// matchers built from constants, not user input.
func MustRegex(pattern string) Matcher {
	m, err := Regex(pattern)
	if err != nil {
		panic(err)
	}
	return m
}
