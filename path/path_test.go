package path_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sson-dev/sson/path"
)

func TestStringCanonicalForm(t *testing.T) {
	p := path.Root().Push(path.Key("users")).Push(path.Index(0)).Push(path.Key("name"))
	assert.Equal(t, `{"users"}[0]{"name"}`, p.String())
	assert.Equal(t, "", path.Root().String())
}

func TestDepthAndPrefix(t *testing.T) {
	p := path.New(path.Key("a"), path.Key("b"))
	assert.Equal(t, 2, p.Depth())
	assert.True(t, p.HasPrefix(path.New(path.Key("a"))))
	assert.True(t, p.HasPrefix(path.Root()))
	assert.False(t, p.HasPrefix(path.New(path.Key("x"))))
}

func TestPushPopImmutable(t *testing.T) {
	root := path.Root()
	child := root.Push(path.Key("a"))
	assert.Equal(t, 0, root.Depth())
	assert.Equal(t, 1, child.Depth())
	assert.Equal(t, root.String(), child.Pop().String())
}

func TestParseRoundTrip(t *testing.T) {
	cases := []string{
		"",
		`{"users"}[0]{"name"}`,
		"[3]",
		`{"a"}{"b"}`,
		`{"weird \"quote\" key"}`,
	}
	for _, c := range cases {
		p, err := path.Parse(c)
		require.NoError(t, err)
		assert.Equal(t, c, p.String())
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"{",
		`{"unterminated`,
		"[",
		"[abc]",
		"[-1]",
		"x",
		`{"a"`,
	}
	for _, c := range cases {
		_, err := path.Parse(c)
		assert.Error(t, err, "input %q", c)
		var parseErr *path.ParseError
		assert.ErrorAs(t, err, &parseErr)
	}
}

func TestElementEqual(t *testing.T) {
	assert.True(t, path.Key("a").Equal(path.Key("a")))
	assert.False(t, path.Key("a").Equal(path.Key("b")))
	assert.False(t, path.Key("a").Equal(path.Index(0)))
	assert.True(t, path.Index(2).Equal(path.Index(2)))
}
