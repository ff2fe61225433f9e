package handler

import (
	"sort"
	"strings"

	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

// PathCount is one entry of an Analyser's tally: a normalized path (array
// indices collapsed to "[]") and how many times an element was seen there.
type PathCount struct {
	Path  string
	Count int
}

// Analyser is a non-converting handler that tallies how many times each
// distinct path shape occurs, meant for running under the All strategy to
// build a structural profile of a document. Optionally groups counts by
// element kind too, so e.g. `{"id"}<Str>` and `{"id"}<Num>` tally
// separately.
type Analyser struct {
	groupKinds bool
	counts     map[string]int

	// OnInputFinished and OnJSONFinished, if set, are invoked with the
	// current tally when the corresponding event fires.
	OnInputFinished func([]PathCount)
	OnJSONFinished  func([]PathCount)
}

// NewAnalyser returns an empty Analyser.
func NewAnalyser(groupKinds bool) *Analyser {
	return &Analyser{groupKinds: groupKinds, counts: map[string]int{}}
}

func (a *Analyser) IsConverter() bool { return false }

func normalizePath(p path.Path) string {
	var b strings.Builder
	for _, e := range p.Elements() {
		if e.IsKey() {
			b.WriteString(e.String())
		} else {
			b.WriteString("[]")
		}
	}
	return b.String()
}

func (a *Analyser) Start(p path.Path, _ int, tok token.Token) ([]byte, error) {
	key := normalizePath(p)
	if a.groupKinds {
		key += "<" + tok.Kind.String() + ">"
	}
	a.counts[key]++
	return nil, nil
}

// Counts returns the current tally, sorted by path for stable output.
func (a *Analyser) Counts() []PathCount {
	out := make([]PathCount, 0, len(a.counts))
	for k, v := range a.counts {
		out = append(out, PathCount{Path: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

func (a *Analyser) InputFinished() ([]byte, error) {
	if a.OnInputFinished != nil {
		a.OnInputFinished(a.Counts())
	}
	return nil, nil
}

func (a *Analyser) JSONFinished() ([]byte, error) {
	if a.OnJSONFinished != nil {
		a.OnJSONFinished(a.Counts())
	}
	return nil, nil
}
