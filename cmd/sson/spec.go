// Package main implements the sson command-line front end: subcommands for
// each processing strategy, config loading, batch mode, a live TUI, and an
// MCP server exposing the same strategies as tools.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sson-dev/sson/handler"
	"github.com/sson-dev/sson/matcher"
	"github.com/sson-dev/sson/strategy"
)

// argSpec is one parsed "-m"/"-H" flag value: NAME[.GROUP][:DEFINITION].
type argSpec struct {
	Name       string
	Group      string
	Definition string
	HasDef     bool
}

// splitArgument parses streamson-bin's own NAME[.GROUP][:DEFINITION]
// syntax. The definition, if present, may itself contain colons (e.g. a
// regex pattern or a Windows path), so only the first colon is
// significant as a separator; everything after it is the definition
// verbatim.
func splitArgument(raw string) argSpec {
	namePart, def, hasDef := strings.Cut(raw, ":")
	name, group, _ := strings.Cut(namePart, ".")
	return argSpec{Name: name, Group: group, Definition: def, HasDef: hasDef}
}

// reassemble turns a parsed argSpec back into the "kind[:definition]" form
// that matcher.Parse and handler.Parse expect.
func (a argSpec) reassemble() string {
	if !a.HasDef {
		return a.Name
	}
	return a.Name + ":" + a.Definition
}

// matcherGroups parses every -m flag value into its group, combining
// multiple matchers in the same group with Or, matching streamson-bin's
// own per-group combinator behavior.
func matcherGroups(raws []string) (map[string]matcher.Matcher, error) {
	groups := map[string]matcher.Matcher{}
	for _, raw := range raws {
		spec := splitArgument(raw)
		m, err := matcher.Parse(spec.reassemble())
		if err != nil {
			return nil, fmt.Errorf("parsing matcher %q: %w", raw, err)
		}
		if existing, ok := groups[spec.Group]; ok {
			groups[spec.Group] = matcher.Or(existing, m)
		} else {
			groups[spec.Group] = m
		}
	}
	return groups, nil
}

// handlerGroups parses every -H flag value into its group, wrapping each
// group's handlers (in flag order) in a handler.Group pipeline.
func handlerGroups(ctx context.Context, raws []string) (map[string]handler.Handler, error) {
	children := map[string][]handler.Handler{}
	var order []string
	for _, raw := range raws {
		spec := splitArgument(raw)
		h, err := handler.Parse(ctx, spec.reassemble())
		if err != nil {
			return nil, fmt.Errorf("parsing handler %q: %w", raw, err)
		}
		if _, ok := children[spec.Group]; !ok {
			order = append(order, spec.Group)
		}
		children[spec.Group] = append(children[spec.Group], h)
	}
	groups := map[string]handler.Handler{}
	for _, g := range order {
		groups[g] = handler.NewGroup(children[g]...)
	}
	return groups, nil
}

// bindings pairs up matcher groups and handler groups by group name: the
// default (empty-string) group of each always pairs together, and any
// named group present in both pairs too. A matcher group with no
// corresponding handler group is paired with a nil handler, valid for
// Trigger and Filter (whose handler is optional) but not Convert.
func bindings(matchers map[string]matcher.Matcher, handlers map[string]handler.Handler) []strategy.Binding {
	out := make([]strategy.Binding, 0, len(matchers))
	for group, m := range matchers {
		out = append(out, strategy.Binding{Matcher: m, Handler: handlers[group]})
	}
	return out
}
