package token

import (
	"unicode/utf8"

	"github.com/sson-dev/sson/path"
)

type stateKind uint8

const (
	sRemoveWhitespace stateKind = iota
	sValue
	sStr
	sNumber
	sBool
	sNull
	sArray
	sObject
	sObjectKeyInit
	sObjectKeyParse
	sColon
)

// frame is one entry of the scanner's explicit state stack. Not every field
// applies to every kind; see the comments on each field.
type frame struct {
	kind stateKind

	// sValue: the path element to push onto the current path if this
	// value turns out to begin an element (everything but an empty
	// container's sentinel close).
	element    path.Element
	hasElement bool

	// sStr, sObjectKeyParse: whether the previous byte was an unconsumed
	// backslash, i.e. whether the next byte is escaped.
	escaped bool

	// sObjectKeyParse: raw (still-escaped) key bytes accumulated so far.
	keyBuf []byte

	// sArray: the index of the element currently being parsed (the next
	// sibling after a comma gets index+1). Unused by sObject.
	index int
}

// Tokenizer is a resumable JSON scanner. The zero value is ready to use.
type Tokenizer struct {
	buf  []byte
	base int

	stack []frame
	elems []path.Element

	pendingPop bool

	err error
}

// New returns a Tokenizer ready to scan from the start of a document.
func New() *Tokenizer {
	return &Tokenizer{}
}

// Feed appends bytes to the scanner's pending input. It never blocks and
// never scans; call Read to consume the new bytes.
func (t *Tokenizer) Feed(b []byte) {
	if len(b) == 0 {
		return
	}
	t.buf = append(t.buf, b...)
}

// CurrentPath returns the path of the element currently open: after a Start
// and before its matching End, the path includes that element's key or
// index. The returned Path is a snapshot; later mutation of the tokenizer
// does not affect it.
func (t *Tokenizer) CurrentPath() path.Path {
	return path.New(t.elems...)
}

// AtDocumentBoundary reports whether the scanner is between two top-level
// documents (i.e. the most recently emitted token, if any, closed a
// top-level element and no new one has started yet).
func (t *Tokenizer) AtDocumentBoundary() bool {
	// A bottom frame of sValue means the next top-level value has been
	// scheduled by Read but has not begun.
	return len(t.stack) == 0 || t.stack[0].kind == sValue
}

func (t *Tokenizer) offset() int { return t.base }

func (t *Tokenizer) peek() (byte, bool) {
	if len(t.buf) == 0 {
		return 0, false
	}
	return t.buf[0], true
}

func (t *Tokenizer) consume() byte {
	b := t.buf[0]
	t.buf = t.buf[1:]
	t.base++
	return b
}

func (t *Tokenizer) push(f frame) { t.stack = append(t.stack, f) }
func (t *Tokenizer) pop()         { t.stack = t.stack[:len(t.stack)-1] }

func isAlpha(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isWhitespace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// Read returns the next token from the bytes fed so far, or Pending if more
// input is required. After Pending, Read may be called again (without an
// intervening Feed) and will again return Pending.
func (t *Tokenizer) Read() (Token, error) {
	if t.err != nil {
		return Token{Type: Pending}, t.err
	}
	if t.pendingPop {
		t.elems = t.elems[:len(t.elems)-1]
		t.pendingPop = false
	}
	if len(t.stack) == 0 {
		// Either the very first call, or we just finished a top-level
		// document: start scanning the next one.
		t.push(frame{kind: sValue})
		t.push(frame{kind: sRemoveWhitespace})
	}

	for {
		top := &t.stack[len(t.stack)-1]
		switch top.kind {
		case sRemoveWhitespace:
			for {
				b, ok := t.peek()
				if !ok {
					return Token{Type: Pending}, nil
				}
				if !isWhitespace(b) {
					break
				}
				t.consume()
			}
			t.pop()

		case sValue:
			b, ok := t.peek()
			if !ok {
				return Token{Type: Pending}, nil
			}
			el, hasEl := top.element, top.hasElement
			switch {
			case b == ']' || b == '}':
				// Empty container: the Array/Object frame underneath
				// handles the closing bracket itself.
				t.pop()

			case b == '"':
				idx := t.offset()
				t.consume()
				t.pop()
				t.push(frame{kind: sStr, hasElement: hasEl})
				if hasEl {
					t.elems = append(t.elems, el)
				}
				return Token{Type: Start, Offset: idx, Kind: Str}, nil

			case isDigit(b):
				idx := t.offset()
				t.pop()
				t.push(frame{kind: sNumber, hasElement: hasEl})
				if hasEl {
					t.elems = append(t.elems, el)
				}
				return Token{Type: Start, Offset: idx, Kind: Num}, nil

			case b == 't' || b == 'f':
				idx := t.offset()
				t.pop()
				t.push(frame{kind: sBool, hasElement: hasEl})
				if hasEl {
					t.elems = append(t.elems, el)
				}
				return Token{Type: Start, Offset: idx, Kind: Bool}, nil

			case b == 'n':
				idx := t.offset()
				t.pop()
				t.push(frame{kind: sNull, hasElement: hasEl})
				if hasEl {
					t.elems = append(t.elems, el)
				}
				return Token{Type: Start, Offset: idx, Kind: Null}, nil

			case b == '[':
				idx := t.offset()
				t.consume()
				t.pop()
				t.push(frame{kind: sArray, hasElement: hasEl, index: 0})
				t.push(frame{kind: sRemoveWhitespace})
				t.push(frame{kind: sValue, hasElement: true, element: path.Index(0)})
				t.push(frame{kind: sRemoveWhitespace})
				if hasEl {
					t.elems = append(t.elems, el)
				}
				return Token{Type: Start, Offset: idx, Kind: Arr}, nil

			case b == '{':
				idx := t.offset()
				t.consume()
				t.pop()
				t.push(frame{kind: sObject, hasElement: hasEl})
				t.push(frame{kind: sRemoveWhitespace})
				t.push(frame{kind: sObjectKeyInit})
				t.push(frame{kind: sRemoveWhitespace})
				if hasEl {
					t.elems = append(t.elems, el)
				}
				return Token{Type: Start, Offset: idx, Kind: Obj}, nil

			default:
				err := &ScanError{Byte: b, Offset: t.offset()}
				t.err = err
				return Token{}, err
			}

		case sStr:
			for {
				b, ok := t.peek()
				if !ok {
					return Token{Type: Pending}, nil
				}
				if top.escaped {
					t.consume()
					top.escaped = false
					continue
				}
				if b == '\\' {
					t.consume()
					top.escaped = true
					continue
				}
				if b == '"' {
					t.consume()
					idx := t.offset()
					hasEl := top.hasElement
					t.pop()
					if hasEl {
						t.pendingPop = true
					}
					return Token{Type: End, Offset: idx, Kind: Str}, nil
				}
				t.consume()
			}

		case sNumber:
			for {
				b, ok := t.peek()
				if !ok {
					return Token{Type: Pending}, nil
				}
				if isDigit(b) || b == '.' {
					t.consume()
					continue
				}
				break
			}
			idx := t.offset()
			hasEl := top.hasElement
			t.pop()
			if hasEl {
				t.pendingPop = true
			}
			return Token{Type: End, Offset: idx, Kind: Num}, nil

		case sBool:
			for {
				b, ok := t.peek()
				if !ok {
					return Token{Type: Pending}, nil
				}
				if isAlpha(b) {
					t.consume()
					continue
				}
				break
			}
			idx := t.offset()
			hasEl := top.hasElement
			t.pop()
			if hasEl {
				t.pendingPop = true
			}
			return Token{Type: End, Offset: idx, Kind: Bool}, nil

		case sNull:
			for {
				b, ok := t.peek()
				if !ok {
					return Token{Type: Pending}, nil
				}
				if isAlpha(b) {
					t.consume()
					continue
				}
				break
			}
			idx := t.offset()
			hasEl := top.hasElement
			t.pop()
			if hasEl {
				t.pendingPop = true
			}
			return Token{Type: End, Offset: idx, Kind: Null}, nil

		case sArray:
			b, ok := t.peek()
			if !ok {
				return Token{Type: Pending}, nil
			}
			switch b {
			case ']':
				t.consume()
				idx := t.offset()
				hasEl := top.hasElement
				t.pop()
				if hasEl {
					t.pendingPop = true
				}
				return Token{Type: End, Offset: idx, Kind: Arr}, nil
			case ',':
				idx := t.offset()
				t.consume()
				hasEl := top.hasElement
				nextIndex := top.index + 1
				t.pop()
				t.push(frame{kind: sArray, hasElement: hasEl, index: nextIndex})
				t.push(frame{kind: sRemoveWhitespace})
				t.push(frame{kind: sValue, hasElement: true, element: path.Index(nextIndex)})
				t.push(frame{kind: sRemoveWhitespace})
				return Token{Type: Separator, Offset: idx}, nil
			default:
				err := &ScanError{Byte: b, Offset: t.offset()}
				t.err = err
				return Token{}, err
			}

		case sObject:
			b, ok := t.peek()
			if !ok {
				return Token{Type: Pending}, nil
			}
			switch b {
			case '}':
				t.consume()
				idx := t.offset()
				hasEl := top.hasElement
				t.pop()
				if hasEl {
					t.pendingPop = true
				}
				return Token{Type: End, Offset: idx, Kind: Obj}, nil
			case ',':
				idx := t.offset()
				t.consume()
				hasEl := top.hasElement
				t.pop()
				t.push(frame{kind: sObject, hasElement: hasEl})
				t.push(frame{kind: sRemoveWhitespace})
				t.push(frame{kind: sObjectKeyInit})
				t.push(frame{kind: sRemoveWhitespace})
				return Token{Type: Separator, Offset: idx}, nil
			default:
				err := &ScanError{Byte: b, Offset: t.offset()}
				t.err = err
				return Token{}, err
			}

		case sObjectKeyInit:
			b, ok := t.peek()
			if !ok {
				return Token{Type: Pending}, nil
			}
			switch {
			case b == '}':
				// Empty object: the Object frame underneath closes it.
				t.pop()
			case b == '"':
				t.consume()
				t.pop()
				t.push(frame{kind: sObjectKeyParse})
			default:
				err := &ScanError{Byte: b, Offset: t.offset()}
				t.err = err
				return Token{}, err
			}

		case sObjectKeyParse:
			done := false
			for !done {
				b, ok := t.peek()
				if !ok {
					return Token{Type: Pending}, nil
				}
				switch {
				case top.escaped:
					top.keyBuf = append(top.keyBuf, b)
					t.consume()
					top.escaped = false
				case b == '\\':
					top.keyBuf = append(top.keyBuf, b)
					t.consume()
					top.escaped = true
				case b == '"':
					t.consume()
					if !utf8.Valid(top.keyBuf) {
						err := &UTF8Error{Offset: t.offset()}
						t.err = err
						return Token{}, err
					}
					key := string(top.keyBuf)
					t.pop()
					t.push(frame{kind: sValue, hasElement: true, element: path.Key(key)})
					t.push(frame{kind: sRemoveWhitespace})
					t.push(frame{kind: sColon})
					t.push(frame{kind: sRemoveWhitespace})
					done = true
				default:
					top.keyBuf = append(top.keyBuf, b)
					t.consume()
				}
			}

		case sColon:
			b, ok := t.peek()
			if !ok {
				return Token{Type: Pending}, nil
			}
			if b != ':' {
				err := &ScanError{Byte: b, Offset: t.offset()}
				t.err = err
				return Token{}, err
			}
			t.consume()
			t.pop()
		}
	}
}

// Terminate signals that no more bytes will ever be fed. If the scanner is
// sitting on a complete document boundary, it returns ok=true with nothing
// more to do. If the scanner is in the middle of a bare top-level scalar
// (e.g. trailing "true" with nothing after it, which would otherwise stay
// Pending forever), Terminate synthesizes the final End token, treating
// end-of-input as a scalar terminator. Otherwise the document is genuinely
// incomplete (an open object or array, or a value nested within one) and
// Terminate returns InputTerminatedError.
func (t *Tokenizer) Terminate() (Token, bool, error) {
	if t.err != nil {
		return Token{}, false, t.err
	}
	if t.AtDocumentBoundary() {
		return Token{}, true, nil
	}
	if len(t.stack) == 1 {
		top := &t.stack[0]
		var kind Kind
		switch top.kind {
		case sNumber:
			kind = Num
		case sBool:
			kind = Bool
		case sNull:
			kind = Null
		default:
			kind = 0
		}
		if top.kind == sNumber || top.kind == sBool || top.kind == sNull {
			idx := t.offset()
			t.stack = t.stack[:0]
			return Token{Type: End, Offset: idx, Kind: kind}, false, nil
		}
	}
	err := &InputTerminatedError{Offset: t.offset()}
	t.err = err
	return Token{}, false, err
}
