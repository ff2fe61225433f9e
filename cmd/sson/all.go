package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sson-dev/sson/handler"
	"github.com/sson-dev/sson/strategy"
)

var allFlags = &runFlags{}

var allCmd = &cobra.Command{
	Use:   "all",
	Short: "Run a handler over every element of the document",
	RunE:  runAll,
}

func init() {
	addRunFlags(allCmd.Flags(), allFlags)
}

// singleHandler builds the one handler.Handler that All drives: every -H
// flag's handler, in flag order, wrapped in a handler.Group regardless of
// any .GROUP suffix (All has no concept of matcher groups to pair them
// against). A single -H handler is returned as is, without a Group.
func singleHandler(ctx context.Context, raws []string) (handler.Handler, error) {
	if len(raws) == 0 {
		return nil, fmt.Errorf("all: at least one -H handler is required")
	}
	children := make([]handler.Handler, 0, len(raws))
	for _, raw := range raws {
		spec := splitArgument(raw)
		h, err := handler.Parse(ctx, spec.reassemble())
		if err != nil {
			return nil, fmt.Errorf("parsing handler %q: %w", raw, err)
		}
		children = append(children, h)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return handler.NewGroup(children...), nil
}

// unwrapAnalyser looks through a possible countingHandler wrapper for an
// underlying *handler.Analyser, so --debug can dump its tally regardless of
// whether --tui was also requested.
func unwrapAnalyser(h handler.Handler) (*handler.Analyser, bool) {
	if c, ok := h.(countingHandler); ok {
		h = c.inner
	}
	a, ok := h.(*handler.Analyser)
	return a, ok
}

func analyserDump(a *handler.Analyser) []AnalyserDump {
	counts := a.Counts()
	out := make([]AnalyserDump, 0, len(counts))
	for _, c := range counts {
		out = append(out, AnalyserDump{Path: c.Path, Count: c.Count})
	}
	return out
}

func runAll(cmd *cobra.Command, _ []string) error {
	f := allFlags
	ctx := cliContext()

	h, err := singleHandler(ctx, f.handlers)
	if err != nil {
		return err
	}

	var matches int64
	if f.tui {
		h = withMatchCounter(h, &matches)
	}

	al := strategy.NewAll(h)

	in, err := openInput(f)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := openOutput(f)
	if err != nil {
		return err
	}
	defer out.Close()

	data, err := readAll(in)
	if err != nil {
		return err
	}

	var processed int64
	var stopTUI func()
	if f.tui {
		stopTUI = runTUI(int64(len(data)), &processed, &matches)
	}

	var allFrames []strategy.Frame
	report := &debugReport{Strategy: "all", Handlers: f.handlers, BytesIn: len(data)}
	runErr := feedChunks(data, &processed, func(chunk []byte) error {
		frames, err := al.Process(chunk)
		allFrames = append(allFrames, frames...)
		return err
	})
	if runErr == nil {
		var frames []strategy.Frame
		frames, runErr = al.Terminate()
		allFrames = append(allFrames, frames...)
	}
	if stopTUI != nil {
		stopTUI()
	}

	report.FramesOut = len(allFrames)
	if runErr != nil {
		report.LastError = runErr.Error()
	}
	if analyser, ok := unwrapAnalyser(h); ok {
		report.AnalyserData = analyserDump(analyser)
	}
	if f.debug {
		writeDebugReport(report)
	}
	if _, werr := out.Write(flattenFrames(allFrames)); werr != nil && runErr == nil {
		return werr
	}
	return runErr
}
