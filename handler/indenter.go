package handler

import (
	"strings"

	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// Indenter is a converter handler that reformats every element it sees,
// reconstructing structural punctuation (braces, brackets, commas, object
// key prefixes) from scratch rather than passing through whatever
// whitespace the source document used. It is meant to run under the All
// strategy, which calls it once per element at every nesting level.
//
// It uses an internal stack of "has this container emitted a child yet"
// flags to decide when a comma is needed and whether an empty container
// collapses to "{}"/"[]" on one line. Scalar payloads (string, number,
// bool, null literal bytes, including the surrounding quotes for strings)
// pass through Feed verbatim; every other gap between tokens is structural
// filler that Indenter discards and regenerates itself.
type Indenter struct {
	spaces    *int // nil means fully compact: no newlines, no spaces
	hasChild  []bool
	inScalar  bool
}

// NewIndenter returns an Indenter using spacesPerLevel spaces per
// indentation level. A nil spacesPerLevel produces fully compact output
// with no inserted whitespace at all.
func NewIndenter(spacesPerLevel *int) *Indenter {
	return &Indenter{spaces: spacesPerLevel}
}

func (i *Indenter) IsConverter() bool { return true }

func (i *Indenter) newline(depth int) string {
	if i.spaces == nil {
		return ""
	}
	return "\n" + strings.Repeat(" ", *i.spaces*depth)
}

func (i *Indenter) Start(p path.Path, _ int, tok token.Token) ([]byte, error) {
	var b strings.Builder
	depth := p.Depth()
	if depth > 0 {
		parentIdx := len(i.hasChild) - 1
		if parentIdx >= 0 {
			if i.hasChild[parentIdx] {
				b.WriteByte(',')
			}
			i.hasChild[parentIdx] = true
		}
		b.WriteString(i.newline(depth))
		if el, ok := p.Last(); ok && el.IsKey() {
			b.WriteByte('"')
			b.WriteString(el.Key())
			b.WriteByte('"')
			b.WriteByte(':')
			if i.spaces != nil {
				b.WriteByte(' ')
			}
		}
	}
	switch tok.Kind {
	case token.Obj:
		b.WriteByte('{')
		i.hasChild = append(i.hasChild, false)
	case token.Arr:
		b.WriteByte('[')
		i.hasChild = append(i.hasChild, false)
	default:
		i.inScalar = true
	}
	return []byte(b.String()), nil
}

func (i *Indenter) Feed(b []byte, _ int) ([]byte, error) {
	if !i.inScalar {
		return nil, nil
	}
	return append([]byte(nil), b...), nil
}

func (i *Indenter) End(p path.Path, _ int, tok token.Token) ([]byte, error) {
	switch tok.Kind {
	case token.Obj, token.Arr:
		last := len(i.hasChild) - 1
		hadChild := i.hasChild[last]
		i.hasChild = i.hasChild[:last]
		var b strings.Builder
		if hadChild {
			b.WriteString(i.newline(p.Depth()))
		}
		if tok.Kind == token.Obj {
			b.WriteByte('}')
		} else {
			b.WriteByte(']')
		}
		return []byte(b.String()), nil
	default:
		i.inScalar = false
		return nil, nil
	}
}
