// Package path represents the navigational address of the cursor inside a
// JSON document being scanned: an ordered sequence of object keys and array
// indices, along with its canonical textual form.
package path

import (
	"strconv"
	"strings"
)

// Kind distinguishes the two ways a Path can descend into a value.
type Kind int

const (
	// KeyKind descends into an object member.
	KeyKind Kind = iota
	// IndexKind descends into an array position.
	IndexKind
)

// Element is one segment of a Path: either an object key or an array index.
// The zero value is not meaningful; construct with Key or Index.
type Element struct {
	kind  Kind
	key   string
	index int
}

// Key returns an Element addressing an object member named s. s is stored
// byte-for-byte as it appeared in the source JSON, including any escapes;
// Element never unescapes it.
func Key(s string) Element {
	return Element{kind: KeyKind, key: s}
}

// Index returns an Element addressing the i-th (zero-based) array member.
func Index(i int) Element {
	return Element{kind: IndexKind, index: i}
}

// IsKey reports whether the element is an object key.
func (e Element) IsKey() bool { return e.kind == KeyKind }

// IsIndex reports whether the element is an array index.
func (e Element) IsIndex() bool { return e.kind == IndexKind }

// Key returns the raw key bytes for a key element, or "" for an index.
func (e Element) Key() string { return e.key }

// Index returns the array position for an index element, or -1 for a key.
func (e Element) Index() int {
	if e.kind != IndexKind {
		return -1
	}
	return e.index
}

// String renders the element in its canonical form: `{"key"}` or `[n]`.
func (e Element) String() string {
	if e.kind == KeyKind {
		var b strings.Builder
		b.Grow(len(e.key) + 4)
		b.WriteString(`{"`)
		b.WriteString(e.key)
		b.WriteString(`"}`)
		return b.String()
	}
	return "[" + strconv.Itoa(e.index) + "]"
}

// Equal reports whether two elements address the same location.
func (e Element) Equal(o Element) bool {
	if e.kind != o.kind {
		return false
	}
	if e.kind == KeyKind {
		return e.key == o.key
	}
	return e.index == o.index
}

// Path is an ordered, immutable sequence of Elements. The zero value is the
// root path (the empty path, whose canonical string is "").
type Path struct {
	elements []Element
}

// Root returns the empty path.
func Root() Path {
	return Path{}
}

// New builds a Path from the given elements, copying the slice so the
// caller may reuse or mutate it afterwards.
func New(elements ...Element) Path {
	if len(elements) == 0 {
		return Path{}
	}
	cp := make([]Element, len(elements))
	copy(cp, elements)
	return Path{elements: cp}
}

// Push returns a new Path with e appended. The receiver is left unchanged.
func (p Path) Push(e Element) Path {
	next := make([]Element, len(p.elements)+1)
	copy(next, p.elements)
	next[len(p.elements)] = e
	return Path{elements: next}
}

// Pop returns a new Path with the last element removed. Calling Pop on the
// root path returns the root path.
func (p Path) Pop() Path {
	if len(p.elements) == 0 {
		return p
	}
	return Path{elements: p.elements[:len(p.elements)-1 : len(p.elements)-1]}
}

// Depth is the number of elements in the path, i.e. the number of
// descents from the document root. The root path has depth 0.
func (p Path) Depth() int { return len(p.elements) }

// Elements returns the path's elements. The caller must not mutate the
// returned slice.
func (p Path) Elements() []Element { return p.elements }

// Last returns the final element of the path and true, or the zero Element
// and false if the path is the root.
func (p Path) Last() (Element, bool) {
	if len(p.elements) == 0 {
		return Element{}, false
	}
	return p.elements[len(p.elements)-1], true
}

// IsRoot reports whether the path addresses the document root.
func (p Path) IsRoot() bool { return len(p.elements) == 0 }

// String renders the path in its canonical textual form, the concatenation
// of each element's canonical form in order. The root path renders as "".
func (p Path) String() string {
	if len(p.elements) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range p.elements {
		b.WriteString(e.String())
	}
	return b.String()
}

// Equal reports whether two paths address the same location.
func (p Path) Equal(o Path) bool {
	if len(p.elements) != len(o.elements) {
		return false
	}
	for i := range p.elements {
		if !p.elements[i].Equal(o.elements[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a leading sub-sequence of p's
// elements, i.e. whether p addresses a location inside or equal to prefix.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix.elements) > len(p.elements) {
		return false
	}
	for i := range prefix.elements {
		if !p.elements[i].Equal(prefix.elements[i]) {
			return false
		}
	}
	return true
}
