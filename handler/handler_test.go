package handler_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sson-dev/sson/handler"
	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

func mustPath(t *testing.T, s string) path.Path {
	t.Helper()
	p, err := path.Parse(s)
	require.NoError(t, err)
	return p
}

func TestReplace(t *testing.T) {
	h := handler.NewReplace([]byte(`"***"`))
	assert.True(t, h.IsConverter())
	out, err := h.End(path.Root(), 0, token.Token{Type: token.End, Kind: token.Str})
	require.NoError(t, err)
	assert.Equal(t, `"***"`, string(out))
}

func TestBufferQueuesCompleteElements(t *testing.T) {
	b := handler.NewBuffer(0)
	_, err := b.Start(mustPath(t, `{"a"}`), 0, token.Token{Type: token.Start, Kind: token.Str})
	require.NoError(t, err)
	_, err = b.Feed([]byte(`"hello"`), 0)
	require.NoError(t, err)
	_, err = b.End(mustPath(t, `{"a"}`), 0, token.Token{Type: token.End, Kind: token.Str})
	require.NoError(t, err)

	item, ok := b.Pop()
	require.True(t, ok)
	assert.Equal(t, `{"a"}`, item.Path.String())
	assert.Equal(t, `"hello"`, string(item.Data))
	_, ok = b.Pop()
	assert.False(t, ok)
}

func TestBufferRejectsOversizedElement(t *testing.T) {
	b := handler.NewBuffer(4)
	_, _ = b.Start(path.Root(), 0, token.Token{})
	_, err := b.Feed([]byte("12345"), 0)
	require.Error(t, err)
}

func TestRegexSubstitution(t *testing.T) {
	h := handler.NewRegex()
	require.NoError(t, h.AddRule(`\d+`, "#", 0))
	_, _ = h.Start(path.Root(), 0, token.Token{})
	_, _ = h.Feed([]byte(`"order 42 and 43"`), 0)
	out, err := h.End(path.Root(), 0, token.Token{})
	require.NoError(t, err)
	assert.Equal(t, `"order # and #"`, string(out))
}

func TestRegexSubstitutionLimit(t *testing.T) {
	h := handler.NewRegex()
	require.NoError(t, h.AddRule(`\d+`, "#", 1))
	_, _ = h.Start(path.Root(), 0, token.Token{})
	_, _ = h.Feed([]byte(`"42 43 44"`), 0)
	out, err := h.End(path.Root(), 0, token.Token{})
	require.NoError(t, err)
	assert.Equal(t, `"# 43 44"`, string(out))
}

func TestShortenPassesShortValuesThrough(t *testing.T) {
	h := handler.NewShorten(10, []byte("..."))
	_, _ = h.Start(path.Root(), 0, token.Token{})
	_, _ = h.Feed([]byte("short"), 0)
	out, err := h.End(path.Root(), 0, token.Token{})
	require.NoError(t, err)
	assert.Equal(t, "short", string(out))
}

func TestShortenTruncatesLongValues(t *testing.T) {
	h := handler.NewShorten(5, []byte("..."))
	_, _ = h.Start(path.Root(), 0, token.Token{})
	_, _ = h.Feed([]byte("0123456789"), 0)
	out, err := h.End(path.Root(), 0, token.Token{})
	require.NoError(t, err)
	assert.Equal(t, "012345...", string(out))
}

func TestUnstringify(t *testing.T) {
	h := handler.NewUnstringify()
	_, _ = h.Start(path.Root(), 0, token.Token{})
	_, _ = h.Feed([]byte(`"{\"a\":1}"`), 0)
	out, err := h.End(path.Root(), 0, token.Token{})
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(out))
}

func TestUnstringifyRejectsNonString(t *testing.T) {
	h := handler.NewUnstringify()
	_, _ = h.Start(path.Root(), 0, token.Token{})
	_, _ = h.Feed([]byte(`42`), 0)
	_, err := h.End(path.Root(), 0, token.Token{})
	require.Error(t, err)
}

func TestOutputWritesPathAndSeparator(t *testing.T) {
	var buf bytes.Buffer
	h := handler.NewOutput(&buf, true, []byte("\n"))
	p := mustPath(t, `{"a"}`)
	_, err := h.Start(p, 0, token.Token{})
	require.NoError(t, err)
	_, err = h.Feed([]byte("1"), 0)
	require.NoError(t, err)
	_, err = h.End(p, 0, token.Token{})
	require.NoError(t, err)
	assert.Equal(t, `{"a"}: 1`+"\n", buf.String())
}

func TestAnalyserNormalizesIndices(t *testing.T) {
	a := handler.NewAnalyser(false)
	_, _ = a.Start(path.Root(), 0, token.Token{})
	_, _ = a.Start(mustPath(t, `{"users"}[0]`), 0, token.Token{})
	_, _ = a.Start(mustPath(t, `{"users"}[1]`), 0, token.Token{})

	counts := a.Counts()
	byPath := map[string]int{}
	for _, c := range counts {
		byPath[c.Path] = c.Count
	}
	assert.Equal(t, 1, byPath[""])
	assert.Equal(t, 2, byPath[`{"users"}[]`])
}

func TestCsvAssemblesRowAcrossColumns(t *testing.T) {
	h := handler.NewCsv([]handler.CsvColumn{{MatcherIdx: 0, Name: "name"}, {MatcherIdx: 1, Name: "age"}}, true)

	header, err := h.Start(mustPath(t, `{"name"}`), 0, token.Token{Type: token.Start, Kind: token.Str})
	require.NoError(t, err)
	assert.Equal(t, "\"name\",\"age\"\n", string(header))
	_, err = h.Feed([]byte(`"alice"`), 0)
	require.NoError(t, err)
	_, err = h.End(mustPath(t, `{"name"}`), 0, token.Token{Type: token.End, Kind: token.Str})
	require.NoError(t, err)

	_, err = h.Start(mustPath(t, `{"age"}`), 1, token.Token{Type: token.Start, Kind: token.Num})
	require.NoError(t, err)
	_, err = h.Feed([]byte(`30`), 1)
	require.NoError(t, err)
	_, err = h.End(mustPath(t, `{"age"}`), 1, token.Token{Type: token.End, Kind: token.Num})
	require.NoError(t, err)

	row, err := h.JSONFinished()
	require.NoError(t, err)
	assert.Equal(t, "\"alice\",\"30\"\n", string(row))

	// a second document with only the first column present renders the
	// missing column as an empty field.
	_, _ = h.Start(mustPath(t, `{"name"}`), 0, token.Token{Type: token.Start, Kind: token.Str})
	_, _ = h.Feed([]byte(`"bob"`), 0)
	_, _ = h.End(mustPath(t, `{"name"}`), 0, token.Token{Type: token.End, Kind: token.Str})
	row2, err := h.JSONFinished()
	require.NoError(t, err)
	assert.Equal(t, "\"bob\",\"\"\n", string(row2))
}

func TestCsvIgnoresStructuredMatches(t *testing.T) {
	h := handler.NewCsv([]handler.CsvColumn{{MatcherIdx: 0, Name: "obj"}}, false)
	out, err := h.Start(path.Root(), 0, token.Token{Type: token.Start, Kind: token.Obj})
	require.NoError(t, err)
	assert.Nil(t, out)
	_, err = h.JSONFinished()
	require.NoError(t, err)
}

func TestGroupChainsConverterOutputForward(t *testing.T) {
	replace := handler.NewReplace([]byte("AA"))
	regex := handler.NewRegex()
	require.NoError(t, regex.AddRule("A", "B", 0))
	g := handler.NewGroup(replace, regex)
	assert.True(t, g.IsConverter())

	_, err := g.Start(path.Root(), 0, token.Token{})
	require.NoError(t, err)
	out, err := g.End(path.Root(), 0, token.Token{})
	require.NoError(t, err)
	// replace.End emits "AA"; propagated into regex.Feed, then regex.End
	// substitutes A -> B, so the group's final output is "BB".
	assert.Equal(t, "BB", string(out))
}

func TestGroupNonConverterDoesNotMutate(t *testing.T) {
	buf := handler.NewBuffer(0)
	g := handler.NewGroup(buf)
	assert.False(t, g.IsConverter())
	p := mustPath(t, `{"a"}`)
	_, err := g.Start(p, 0, token.Token{})
	require.NoError(t, err)
	_, err = g.Feed([]byte(`"x"`), 0)
	require.NoError(t, err)
	_, err = g.End(p, 0, token.Token{})
	require.NoError(t, err)
	item, ok := buf.Pop()
	require.True(t, ok)
	assert.Equal(t, `"x"`, string(item.Data))
}
