package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sson-dev/sson/strategy"
)

var convertFlags = &runFlags{}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Replace each matched region's bytes with a converter handler's output",
	RunE:  runConvert,
}

func init() {
	addRunFlags(convertCmd.Flags(), convertFlags)
}

func runConvert(cmd *cobra.Command, _ []string) error {
	f := convertFlags
	ctx := cliContext()

	matchers, handlers, err := buildStrategyInputs(ctx, f)
	if err != nil {
		return err
	}

	var matches int64
	if f.tui {
		for g, h := range handlers {
			handlers[g] = withMatchCounter(h, &matches)
		}
	}

	for group := range matchers {
		if handlers[group] == nil {
			return fmt.Errorf("convert: matcher group %q has no bound handler", group)
		}
	}
	cv := strategy.NewConvert(bindings(matchers, handlers)...)

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
	report := &debugReport{Strategy: "convert", Matchers: f.matchers, Handlers: f.handlers, BytesIn: len(data)}
	runErr := feedChunks(data, &processed, func(chunk []byte) error {
		frames, err := cv.Process(chunk)
		allFrames = append(allFrames, frames...)
		return err
	})
	if runErr == nil {
		var frames []strategy.Frame
		frames, runErr = cv.Terminate()
		allFrames = append(allFrames, frames...)
	}
	if stopTUI != nil {
		stopTUI()
	}

	report.FramesOut = len(allFrames)
	if runErr != nil {
		report.LastError = runErr.Error()
	}
	if f.debug {
		writeDebugReport(report)
	}
	if _, werr := out.Write(flattenFrames(allFrames)); werr != nil && runErr == nil {
		return werr
	}
	return runErr
}
