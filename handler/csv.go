package handler

import (
	"strconv"
	"strings"

	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// CsvColumn names one output column of a Csv handler: MatcherIdx is the
// binding index Trigger/All pass to Start/Feed/End (the position of the
// matcher this column reads from in the strategy's binding list), Name is
// its header label.
type CsvColumn struct {
	MatcherIdx int
	Name       string
}

// Csv is a converting handler that assembles matched scalar values from
// several bindings into CSV rows, one row per completed top-level
// document, mirroring streamson-lib's handler::csv::Csv. Bind it once per
// column to a distinct matcher, sharing the same Csv instance across all
// of them, so End/JSONFinished see every column before a row is emitted.
// Structured (object/array) matches are ignored; only scalar values fill
// columns.
type Csv struct {
	columns     []CsvColumn
	writeHeader bool

	matched     bool
	matchedPath path.Path
	buf         strings.Builder

	current map[int]string
	hasData bool
}

// NewCsv returns a Csv handler with one output column per entry of
// columns, in order, emitting a header row before the first record if
// writeHeader is set.
func NewCsv(columns []CsvColumn, writeHeader bool) *Csv {
	return &Csv{columns: columns, writeHeader: writeHeader, current: map[int]string{}}
}

func (c *Csv) IsConverter() bool { return true }

func csvQuote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// csvScalarString converts a matched element's raw bytes to its CSV field
// value given its kind: strings are unquoted, null becomes empty, bools
// and numbers pass through as written.
func csvScalarString(raw string, kind token.Kind) (string, error) {
	switch kind {
	case token.Str:
		if len(raw) >= 2 {
			return raw[1 : len(raw)-1], nil
		}
		return raw, nil
	case token.Null:
		return "", nil
	case token.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return "", &Error{Msg: "csv: invalid bool " + raw}
		}
		return strconv.FormatBool(b), nil
	case token.Num:
		return raw, nil
	default:
		return "", nil
	}
}

func (c *Csv) Start(p path.Path, _ int, tok token.Token) ([]byte, error) {
	if c.matched {
		return nil, nil // only one match at a time, same as streamson-lib
	}
	if tok.Kind == token.Obj || tok.Kind == token.Arr {
		return nil, nil
	}

	var out []byte
	if c.writeHeader {
		c.writeHeader = false
		names := make([]string, len(c.columns))
		for i, col := range c.columns {
			names[i] = csvQuote(col.Name)
		}
		out = []byte(strings.Join(names, ",") + "\n")
	}
	c.matched = true
	c.matchedPath = p
	c.buf.Reset()
	return out, nil
}

func (c *Csv) Feed(data []byte, _ int) ([]byte, error) {
	if c.matched {
		c.buf.Write(data)
	}
	return nil, nil
}

func (c *Csv) End(p path.Path, matcherIdx int, tok token.Token) ([]byte, error) {
	if !c.matched || !c.matchedPath.Equal(p) {
		return nil, nil
	}
	c.matched = false
	value, err := csvScalarString(c.buf.String(), tok.Kind)
	c.buf.Reset()
	if err != nil {
		return nil, err
	}
	c.current[matcherIdx] = value
	c.hasData = true
	return nil, nil
}

// JSONFinished emits the accumulated row, in column order, once per
// top-level document; a column whose matcher never fired for this
// document renders as an empty field.
func (c *Csv) JSONFinished() ([]byte, error) {
	if !c.hasData {
		return nil, nil
	}
	fields := make([]string, len(c.columns))
	for i, col := range c.columns {
		fields[i] = csvQuote(c.current[col.MatcherIdx])
	}
	c.current = map[int]string{}
	c.hasData = false
	return []byte(strings.Join(fields, ",") + "\n"), nil
}
