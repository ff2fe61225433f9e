package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitArgument(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want argSpec
	}{
		{
			name: "bare kind",
			raw:  "buffer",
			want: argSpec{Name: "buffer"},
		},
		{
			name: "kind with group",
			raw:  "simple.users",
			want: argSpec{Name: "simple", Group: "users"},
		},
		{
			name: "kind with definition",
			raw:  "replace:REDACTED",
			want: argSpec{Name: "replace", Definition: "REDACTED", HasDef: true},
		},
		{
			name: "kind, group, and definition",
			raw:  "regex.pii:/foo/bar/0",
			want: argSpec{Name: "regex", Group: "pii", Definition: "/foo/bar/0", HasDef: true},
		},
		{
			name: "definition containing colons",
			raw:  "file.out:/tmp/out:stream.ndjson",
			want: argSpec{Name: "file", Group: "out", Definition: "/tmp/out:stream.ndjson", HasDef: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitArgument(tt.raw))
		})
	}
}

func TestArgSpecReassemble(t *testing.T) {
	assert.Equal(t, "buffer", argSpec{Name: "buffer"}.reassemble())
	assert.Equal(t, "buffer:128", argSpec{Name: "buffer", Definition: "128", HasDef: true}.reassemble())
	assert.Equal(t, "simple", argSpec{Name: "simple", Group: "users"}.reassemble())
}

func TestMatcherGroupsCombinesSameGroupWithOr(t *testing.T) {
	groups, err := matcherGroups([]string{
		`simple.targets:{"users"}`,
		`simple.targets:{"groups"}`,
	})
	require.NoError(t, err)
	require.Len(t, groups, 1)

	m, ok := groups["targets"]
	require.True(t, ok)
	assert.NotNil(t, m)
}

func TestMatcherGroupsRejectsMalformedDefinition(t *testing.T) {
	_, err := matcherGroups([]string{"unknownkind:x"})
	assert.Error(t, err)
}

func TestBindingsPairsMatchingGroups(t *testing.T) {
	matchers, err := matcherGroups([]string{`simple.a:{"x"}`, `simple.b:{"y"}`})
	require.NoError(t, err)
	handlers, err := handlerGroups(cliContext(), []string{"buffer.a"})
	require.NoError(t, err)

	binds := bindings(matchers, handlers)
	require.Len(t, binds, 2)

	var sawBound, sawUnbound bool
	for _, b := range binds {
		if b.Handler != nil {
			sawBound = true
		} else {
			sawUnbound = true
		}
	}
	assert.True(t, sawBound)
	assert.True(t, sawUnbound)
}
