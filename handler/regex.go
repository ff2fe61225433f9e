package handler

import (
	"bytes"
	"regexp"

	"github.com/sson-dev/sson/path"
	"github.com/sson-dev/sson/token"
)

type regexRule struct {
	re          *regexp.Regexp
	replacement string
	limit       int // 0 means unlimited
}

// Regex is a converter handler that buffers a matched element's raw bytes
// and, once it ends, applies an ordered list of regular-expression
// substitutions to the buffered text.
type Regex struct {
	rules []regexRule
	buf   bytes.Buffer
}

// NewRegex returns an empty Regex handler; add substitution rules with
// AddRule before use.
func NewRegex() *Regex {
	return &Regex{}
}

// AddRule appends a substitution rule. limit <= 0 applies the rule to every
// match; otherwise only the first limit matches are replaced.
func (r *Regex) AddRule(pattern, replacement string, limit int) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Wrap("regex handler: compile rule", err)
	}
	r.rules = append(r.rules, regexRule{re: re, replacement: replacement, limit: limit})
	return nil
}

func (r *Regex) IsConverter() bool { return true }

func (r *Regex) Start(path.Path, int, token.Token) ([]byte, error) {
	r.buf.Reset()
	return nil, nil
}

func (r *Regex) Feed(b []byte, _ int) ([]byte, error) {
	r.buf.Write(b)
	return nil, nil
}

func (r *Regex) End(path.Path, int, token.Token) ([]byte, error) {
	out := r.buf.String()
	for _, rule := range r.rules {
		if rule.limit <= 0 {
			out = rule.re.ReplaceAllString(out, rule.replacement)
			continue
		}
		n := 0
		out = rule.re.ReplaceAllStringFunc(out, func(m string) string {
			if n >= rule.limit {
				return m
			}
			n++
			return rule.re.ReplaceAllString(m, rule.replacement)
		})
	}
	return []byte(out), nil
}
