package strategy_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sson-dev/sson/handler"
	"github.com/sson-dev/sson/matcher"
	"github.com/sson-dev/sson/strategy"
	"github.com/sson-dev/sson/token"
)

func flattenItems(items []strategy.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = string(it.Bytes)
	}
	return out
}

// S1: Extract yields every outermost match as its own sub-document.
func TestExtractYieldsOutermostMatches(t *testing.T) {
	usersArr, err := matcher.Simple(`{"users"}[]`)
	require.NoError(t, err)
	groupsArr, err := matcher.Simple(`{"groups"}[]`)
	require.NoError(t, err)

	e := strategy.NewExtract(matcher.Or(usersArr, groupsArr), true)

	input := []byte(`{"users": ["mike","john"], "groups": ["admin", "staff"]}`)
	items, err := e.Process(input)
	require.NoError(t, err)
	more, err := e.Terminate()
	require.NoError(t, err)
	items = append(items, more...)

	require.Len(t, items, 4)
	assert.Equal(t, []string{`"mike"`, `"john"`, `"admin"`, `"staff"`}, flattenItems(items))
	assert.Equal(t, `{"users"}[0]`, items[0].Path)
	assert.Equal(t, `{"users"}[1]`, items[1].Path)
	assert.Equal(t, `{"groups"}[0]`, items[2].Path)
	assert.Equal(t, `{"groups"}[1]`, items[3].Path)
}

// Nested matches inside an already-matched region are not yielded
// separately; the outermost match subsumes them.
func TestExtractOutermostSubsumesNested(t *testing.T) {
	m, err := matcher.Simple(`{"a"}`)
	require.NoError(t, err)
	e := strategy.NewExtract(m, false)

	input := []byte(`{"a": {"b": 1, "c": [1,2]}, "d": 2}`)
	items, err := e.Process(input)
	require.NoError(t, err)
	more, err := e.Terminate()
	require.NoError(t, err)
	items = append(items, more...)

	require.Len(t, items, 1)
	assert.Equal(t, `{"b": 1, "c": [1,2]}`, string(items[0].Bytes))
}

// S2: Convert runs a handler over a single matched region and leaves the
// rest of the document untouched.
func TestConvertReplacesMatchedRegion(t *testing.T) {
	m, err := matcher.Simple(`{"name"}`)
	require.NoError(t, err)
	h := handler.NewReplace([]byte(`"REDACTED"`))

	c := strategy.NewConvert(strategy.Binding{Matcher: m, Handler: h})

	input := []byte(`{"name": "mike", "age": 30}`)
	frames, err := c.Process(input)
	require.NoError(t, err)
	more, err := c.Terminate()
	require.NoError(t, err)
	frames = append(frames, more...)

	got := string(strategy.Flatten(frames))
	assert.Equal(t, `{"name": "REDACTED", "age": 30}`, got)
}

// A match nested inside an already active Convert region is ignored;
// outermost wins.
func TestConvertOutermostWinsOverNested(t *testing.T) {
	outer, err := matcher.Simple(`{"a"}`)
	require.NoError(t, err)
	inner, err := matcher.Simple(`{"a"}{"b"}`)
	require.NoError(t, err)
	h := handler.NewReplace([]byte(`0`))

	c := strategy.NewConvert(
		strategy.Binding{Matcher: outer, Handler: h},
		strategy.Binding{Matcher: inner, Handler: handler.NewReplace([]byte(`99`))},
	)

	input := []byte(`{"a": {"b": 1}}`)
	frames, err := c.Process(input)
	require.NoError(t, err)
	more, err := c.Terminate()
	require.NoError(t, err)
	frames = append(frames, more...)

	assert.Equal(t, `{"a": 0}`, string(strategy.Flatten(frames)))
}

// S3: Filter removes a matched first array child while preserving valid
// JSON, swallowing the trailing comma that followed it.
func TestFilterRemovesFirstArrayChild(t *testing.T) {
	m, err := matcher.Simple(`{"users"}[0]`)
	require.NoError(t, err)

	f := strategy.NewFilter(strategy.Binding{Matcher: m})

	input := []byte(`{"users": [{"uid": 1}, {"uid": 2}, {"uid": 3}], "groups": [{"gid": 1}, {"gid": 2}], "void": {}}`)
	frames, err := f.Process(input)
	require.NoError(t, err)
	more, err := f.Terminate()
	require.NoError(t, err)
	frames = append(frames, more...)

	want := `{"users": [ {"uid": 2}, {"uid": 3}], "groups": [{"gid": 1}, {"gid": 2}], "void": {}}`
	assert.Equal(t, want, string(strategy.Flatten(frames)))
}

// Removing the only child of a container leaves it empty.
func TestFilterRemovesOnlyChild(t *testing.T) {
	m, err := matcher.Simple(`{"a"}[0]`)
	require.NoError(t, err)
	f := strategy.NewFilter(strategy.Binding{Matcher: m})

	input := []byte(`{"a": [1], "b": 2}`)
	frames, err := f.Process(input)
	require.NoError(t, err)
	more, err := f.Terminate()
	require.NoError(t, err)
	frames = append(frames, more...)

	assert.Equal(t, `{"a": [], "b": 2}`, string(strategy.Flatten(frames)))
}

// Removing a middle child swallows the comma that preceded it.
func TestFilterRemovesMiddleChild(t *testing.T) {
	m, err := matcher.Simple(`{"a"}[1]`)
	require.NoError(t, err)
	f := strategy.NewFilter(strategy.Binding{Matcher: m})

	input := []byte(`{"a": [1, 2, 3]}`)
	frames, err := f.Process(input)
	require.NoError(t, err)
	more, err := f.Terminate()
	require.NoError(t, err)
	frames = append(frames, more...)

	assert.Equal(t, `{"a": [1, 3]}`, string(strategy.Flatten(frames)))
}

// Removing the last child swallows the preceding comma too.
func TestFilterRemovesLastChild(t *testing.T) {
	m, err := matcher.Simple(`{"a"}[2]`)
	require.NoError(t, err)
	f := strategy.NewFilter(strategy.Binding{Matcher: m})

	input := []byte(`{"a": [1, 2, 3]}`)
	frames, err := f.Process(input)
	require.NoError(t, err)
	more, err := f.Terminate()
	require.NoError(t, err)
	frames = append(frames, more...)

	assert.Equal(t, `{"a": [1, 2]}`, string(strategy.Flatten(frames)))
}

// Invariant: a matcher that never matches leaves Filter's output identical
// to the input.
func TestFilterNeverMatchingIsIdentity(t *testing.T) {
	m, err := matcher.Simple(`{"nonexistent"}`)
	require.NoError(t, err)
	f := strategy.NewFilter(strategy.Binding{Matcher: m})

	input := []byte(`{"a": [1, 2, 3], "b": {"c": "d"}}`)
	frames, err := f.Process(input)
	require.NoError(t, err)
	more, err := f.Terminate()
	require.NoError(t, err)
	frames = append(frames, more...)

	assert.Equal(t, string(input), string(strategy.Flatten(frames)))
}

// Invariant: a matcher that never matches leaves Convert's output
// identical to the input too, whatever the bound handler is.
func TestConvertNeverMatchingIsIdentity(t *testing.T) {
	m, err := matcher.Simple(`{"nonexistent"}`)
	require.NoError(t, err)
	h := handler.NewReplace([]byte(`"x"`))
	c := strategy.NewConvert(strategy.Binding{Matcher: m, Handler: h})

	input := []byte(`{"a": [1, 2, 3]}`)
	frames, err := c.Process(input)
	require.NoError(t, err)
	more, err := c.Terminate()
	require.NoError(t, err)
	frames = append(frames, more...)

	assert.Equal(t, string(input), string(strategy.Flatten(frames)))
}

// S4: Analyser run under All tallies every distinct normalized path.
func TestAllDrivesAnalyser(t *testing.T) {
	an := handler.NewAnalyser(false)
	a := strategy.NewAll(an)

	input := []byte(`{"users": [{"id": 1}, {"id": 2}]}`)
	_, err := a.Process(input)
	require.NoError(t, err)
	_, err = a.Terminate()
	require.NoError(t, err)

	counts := map[string]int{}
	for _, c := range an.Counts() {
		counts[c.Path] = c.Count
	}
	assert.Equal(t, 1, counts[""])
	assert.Equal(t, 1, counts[`{"users"}`])
	assert.Equal(t, 2, counts[`{"users"}[]`])
	assert.Equal(t, 2, counts[`{"users"}[]{"id"}`])
}

// Whitespace sitting between a value's End and the following comma must
// pass through All unchanged rather than being swallowed by the
// Separator token's offset advancing past it.
func TestAllPreservesWhitespaceBeforeSeparator(t *testing.T) {
	a := strategy.NewAll(handler.NewAnalyser(false))

	input := []byte(`{"a": 1 , "b": 2}`)
	frames, err := a.Process(input)
	require.NoError(t, err)
	more, err := a.Terminate()
	require.NoError(t, err)
	frames = append(frames, more...)

	assert.Equal(t, input, strategy.Flatten(frames))
}

// S5: Indenter run under All is idempotent — reformatting already
// reformatted output changes nothing further.
func TestAllIndenterIsIdempotent(t *testing.T) {
	spaces := 2
	first := strategy.NewAll(handler.NewIndenter(&spaces))

	input := []byte(`{"a":[1,2,{"b":3}],"c":"x"}`)
	frames, err := first.Process(input)
	require.NoError(t, err)
	more, err := first.Terminate()
	require.NoError(t, err)
	frames = append(frames, more...)
	once := strategy.Flatten(frames)

	second := strategy.NewAll(handler.NewIndenter(&spaces))
	frames2, err := second.Process(once)
	require.NoError(t, err)
	more2, err := second.Terminate()
	require.NoError(t, err)
	frames2 = append(frames2, more2...)
	twice := strategy.Flatten(frames2)

	assert.Equal(t, string(once), string(twice))
}

// S6: feeding the same document one byte at a time produces the same
// result as feeding it whole, proving chunk-boundary robustness.
func TestFilterIsChunkBoundaryRobust(t *testing.T) {
	m, err := matcher.Simple(`{"a"}[0]`)
	require.NoError(t, err)
	input := []byte(`{"a": [1, 2, 3], "b": 4}`)

	whole := strategy.NewFilter(strategy.Binding{Matcher: m})
	wholeFrames, err := whole.Process(input)
	require.NoError(t, err)
	more, err := whole.Terminate()
	require.NoError(t, err)
	wholeFrames = append(wholeFrames, more...)

	chunked := strategy.NewFilter(strategy.Binding{Matcher: m})
	var chunkedFrames []strategy.Frame
	for i := range input {
		out, err := chunked.Process(input[i : i+1])
		require.NoError(t, err)
		chunkedFrames = append(chunkedFrames, out...)
	}
	more, err = chunked.Terminate()
	require.NoError(t, err)
	chunkedFrames = append(chunkedFrames, more...)

	assert.Equal(t, string(strategy.Flatten(wholeFrames)), string(strategy.Flatten(chunkedFrames)))
}

// Trigger never transforms output; it only calls handler lifecycle
// methods. Here a Buffer handler collects every matched element.
func TestTriggerFeedsMatchedElementsToHandler(t *testing.T) {
	m, err := matcher.Simple(`{"items"}[]`)
	require.NoError(t, err)
	buf := handler.NewBuffer(0)

	tr := strategy.NewTrigger(strategy.Binding{Matcher: m, Handler: buf})

	input := []byte(`{"items": [1, 2, 3]}`)
	require.NoError(t, tr.Process(input))
	require.NoError(t, tr.Terminate())

	var got []string
	for {
		item, ok := buf.Pop()
		if !ok {
			break
		}
		got = append(got, string(item.Data))
	}
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

// Feeding an incomplete document and terminating without closing every
// open element reports InputTerminatedError.
func TestTerminateOnOpenDocumentFails(t *testing.T) {
	tr := strategy.NewTrigger()
	require.NoError(t, tr.Process([]byte(`{"a": [1, 2`)))
	err := tr.Terminate()
	require.Error(t, err)
	var terminated *token.InputTerminatedError
	assert.ErrorAs(t, err, &terminated)
}
