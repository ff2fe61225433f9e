package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"
	"sigs.k8s.io/yaml"

	"github.com/sson-dev/sson/handler"
	"github.com/sson-dev/sson/matcher"
	"github.com/sson-dev/sson/strategy"
)

// runFlags are the flags every strategy subcommand shares.
type runFlags struct {
	matchers []string
	handlers []string
	input    string
	output   string
	gzip     bool
	debug    bool
	tui      bool
}

func addRunFlags(flags *pflag.FlagSet, f *runFlags) {
	flags.StringArrayVarP(&f.matchers, "matcher", "m", nil, "NAME[.GROUP][:DEFINITION] path matcher, repeatable")
	flags.StringArrayVarP(&f.handlers, "handler", "H", nil, "NAME[.GROUP][:DEFINITION] handler, repeatable")
	flags.StringVarP(&f.input, "input", "i", "-", `input file, or "-" for stdin`)
	flags.StringVarP(&f.output, "output", "o", "-", `output file, or "-" for stdout`)
	flags.BoolVarP(&f.gzip, "gzip", "z", false, "transparently gzip-decompress input and gzip-compress output")
	flags.BoolVar(&f.debug, "debug", false, "write a YAML run report to debug.yaml")
	flags.BoolVar(&f.tui, "tui", false, "show a live progress view while processing")
}

// debugReport is what --debug dumps to debug.yaml, mirroring the
// teacher's own WithDebug: every interesting piece of run state, written
// by writeDebugReport once the run has finished, whether or not it ended
// in an error.
type debugReport struct {
	Strategy     string         `json:"1_strategy"`
	Matchers     []string       `json:"2_matchers"`
	Handlers     []string       `json:"3_handlers"`
	BytesIn      int            `json:"4_bytesIn"`
	FramesOut    int            `json:"5_framesOut,omitempty"`
	ItemsOut     int            `json:"6_itemsOut,omitempty"`
	AnalyserData []AnalyserDump `json:"7_analyser,omitempty"`
	LastError    string         `json:"8_lastError,omitempty"`
}

// AnalyserDump is the debug report's view of an Analyser's tally, if one
// of the bound handlers was an Analyser.
type AnalyserDump struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

func writeDebugReport(report *debugReport) {
	if out, err := yaml.Marshal(report); err == nil {
		_ = os.WriteFile("debug.yaml", out, 0o644)
	}
}

func openInput(f *runFlags) (io.ReadCloser, error) {
	var r io.ReadCloser
	if f.input == "-" {
		r = io.NopCloser(os.Stdin)
	} else {
		file, err := os.Open(f.input)
		if err != nil {
			return nil, fmt.Errorf("opening input: %w", err)
		}
		r = file
	}
	if f.gzip {
		return gzipReader(r)
	}
	return r, nil
}

func openOutput(f *runFlags) (io.WriteCloser, error) {
	var w io.WriteCloser
	if f.output == "-" {
		w = nopWriteCloser{os.Stdout}
	} else {
		file, err := os.Create(f.output)
		if err != nil {
			return nil, fmt.Errorf("opening output: %w", err)
		}
		w = file
	}
	if f.gzip {
		return gzipWriter(w), nil
	}
	return w, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// buildStrategyInputs parses this run's -m/-H flags into matcher groups
// and a handler.Handler per matching group name, then fills in any group
// from appConfig.Matchers/Handlers that the flags didn't already supply —
// flags always take precedence over the config file.
func buildStrategyInputs(ctx context.Context, f *runFlags) (map[string]matcher.Matcher, map[string]handler.Handler, error) {
	matchers, err := matcherGroups(f.matchers)
	if err != nil {
		return nil, nil, err
	}
	for group, def := range appConfig.Matchers {
		if _, ok := matchers[group]; ok {
			continue
		}
		m, err := matcher.Parse(def)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing config matcher %q: %w", group, err)
		}
		matchers[group] = m
	}

	handlers, err := handlerGroups(ctx, f.handlers)
	if err != nil {
		return nil, nil, err
	}
	for group, def := range appConfig.Handlers {
		if _, ok := handlers[group]; ok {
			continue
		}
		h, err := handler.Parse(ctx, def)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing config handler %q: %w", group, err)
		}
		handlers[group] = h
	}
	return matchers, handlers, nil
}

// readAll reads the whole input up front. sson's strategies are built to
// be fed incrementally (Process accepts arbitrarily small chunks — see
// TestFilterIsChunkBoundaryRobust), but the CLI itself processes one file
// per invocation to completion, so a single bulk read keeps this layer
// simple; --tui reports progress against the resulting byte count.
func readAll(r io.Reader) ([]byte, error) {
	return io.ReadAll(r)
}

func flattenFrames(frames []strategy.Frame) []byte {
	return strategy.Flatten(frames)
}
