package matcher_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sson-dev/sson/matcher"
	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

func mustPath(t *testing.T, s string) path.Path {
	t.Helper()
	p, err := path.Parse(s)
	require.NoError(t, err)
	return p
}

func TestSimpleLiteralMatch(t *testing.T) {
	m, err := matcher.Simple(`{"users"}[0]{"name"}`)
	require.NoError(t, err)
	assert.True(t, m.Match(mustPath(t, `{"users"}[0]{"name"}`), token.Str))
	assert.False(t, m.Match(mustPath(t, `{"users"}[1]{"name"}`), token.Str))
}

func TestSimpleWildcards(t *testing.T) {
	cases := []struct {
		pattern, candidate string
		want               bool
	}{
		{`{"users"}[]`, `{"users"}[3]`, true},
		{`{"users"}[]`, `{"users"}{"x"}`, false},
		{`{}{"a"}`, `{"anything"}{"a"}`, true},
		{`[0-2]`, `[1]`, true},
		{`[0-2]`, `[3]`, false},
		{`[1,3,5]`, `[3]`, true},
		{`[1,3,5]`, `[4]`, false},
		{`?{"a"}`, `[0]{"a"}`, true},
		{`?{"a"}`, `{"k"}{"a"}`, true},
		{`*{"a"}`, `{"x"}{"y"}{"a"}`, true},
		{`*{"a"}`, `{"a"}`, true},
		{`{"x"}*`, `{"x"}{"y"}[0]`, true},
		{`*`, `{"x"}[0]{"y"}`, true},
	}
	for _, c := range cases {
		m, err := matcher.Simple(c.pattern)
		require.NoError(t, err)
		got := m.Match(mustPath(t, c.candidate), token.Str)
		assert.Equal(t, c.want, got, "pattern %q vs %q", c.pattern, c.candidate)
	}
}

func TestSimpleReplacingSegmentsStillMatches(t *testing.T) {
	// Invariant 9: replacing any literal segment with {}/[]/? still matches.
	literal := mustPath(t, `{"a"}[2]{"b"}`)
	patterns := []string{
		`{"a"}[2]{"b"}`,
		`{}[2]{"b"}`,
		`{"a"}[]{"b"}`,
		`{"a"}[2]{}`,
		`?[2]{"b"}`,
		`{"a"}?{"b"}`,
		`{"a"}[2]?`,
	}
	for _, p := range patterns {
		m, err := matcher.Simple(p)
		require.NoError(t, err)
		assert.True(t, m.Match(literal, token.Str), "pattern %q", p)
	}
}

func TestDepthMatcher(t *testing.T) {
	max := 2
	m := matcher.Depth(1, &max)
	assert.False(t, m.Match(path.Root(), token.Obj))
	assert.True(t, m.Match(mustPath(t, `{"a"}`), token.Obj))
	assert.True(t, m.Match(mustPath(t, `{"a"}{"b"}`), token.Obj))
	assert.False(t, m.Match(mustPath(t, `{"a"}{"b"}{"c"}`), token.Obj))

	unbounded := matcher.DepthAtLeast(2)
	assert.True(t, unbounded.Match(mustPath(t, `{"a"}{"b"}{"c"}{"d"}`), token.Obj))
}

func TestRegexMatcher(t *testing.T) {
	m, err := matcher.Regex(`^\{"u`)
	require.NoError(t, err)
	assert.True(t, m.Match(mustPath(t, `{"users"}[0]`), token.Str))
	assert.False(t, m.Match(mustPath(t, `{"groups"}[0]`), token.Str))
}

func TestCombinatorAlgebra(t *testing.T) {
	a := matcher.MustSimple(`{"a"}`)
	b := matcher.MustSimple(`{"b"}`)
	pa := mustPath(t, `{"a"}`)
	pb := mustPath(t, `{"b"}`)
	pc := mustPath(t, `{"c"}`)

	or := matcher.Or(a, b)
	assert.True(t, or.Match(pa, token.Str))
	assert.True(t, or.Match(pb, token.Str))
	assert.False(t, or.Match(pc, token.Str))

	and := matcher.And(a, b)
	assert.False(t, and.Match(pa, token.Str))

	notA := matcher.Not(a)
	assert.False(t, notA.Match(pa, token.Str))
	assert.True(t, notA.Match(pb, token.Str))

	// De Morgan's: Not(And(a,b)) == Or(Not(a), Not(b))
	deMorgan := matcher.Or(matcher.Not(a), matcher.Not(b))
	notAnd := matcher.Not(matcher.And(a, b))
	for _, p := range []path.Path{pa, pb, pc} {
		assert.Equal(t, notAnd.Match(p, token.Str), deMorgan.Match(p, token.Str))
	}

	// Not(Not(m)) == m
	doubleNot := matcher.Not(matcher.Not(a))
	for _, p := range []path.Path{pa, pb, pc} {
		assert.Equal(t, a.Match(p, token.Str), doubleNot.Match(p, token.Str))
	}

	// And/Or commutative
	assert.Equal(t, matcher.And(a, b).Match(pa, token.Str), matcher.And(b, a).Match(pa, token.Str))
	assert.Equal(t, matcher.Or(a, b).Match(pa, token.Str), matcher.Or(b, a).Match(pa, token.Str))
}

func TestAllMatcher(t *testing.T) {
	m := matcher.All()
	assert.True(t, m.Match(path.Root(), token.Obj))
	assert.True(t, m.Match(mustPath(t, `{"a"}[9]`), token.Str))
}

func TestParseDefinitions(t *testing.T) {
	cases := []string{
		`simple:{"users"}[]`,
		`s:{"a"}`,
		`depth:2-3`,
		`d:4`,
		`regex:^\{"u"\}$`,
		`x:.*`,
		`all`,
	}
	for _, c := range cases {
		_, err := matcher.Parse(c)
		require.NoError(t, err, c)
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	_, err := matcher.Parse("bogus:xyz")
	require.Error(t, err)
	var parseErr *matcher.ParseError
	require.ErrorAs(t, err, &parseErr)
}
