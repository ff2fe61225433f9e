package main

import (
	"github.com/spf13/cobra"

	"github.com/sson-dev/sson/strategy"
)

var triggerFlags = &runFlags{}

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Run handlers on every matched element without transforming the output",
	RunE:  runTrigger,
}

func init() {
	addRunFlags(triggerCmd.Flags(), triggerFlags)
}

func runTrigger(cmd *cobra.Command, _ []string) error {
	f := triggerFlags
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

	tr := strategy.NewTrigger(bindings(matchers, handlers)...)

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

	report := &debugReport{Strategy: "trigger", Matchers: f.matchers, Handlers: f.handlers, BytesIn: len(data)}
	runErr := feedChunks(data, &processed, tr.Process)
	if runErr == nil {
		runErr = tr.Terminate()
	}
	if stopTUI != nil {
		stopTUI()
	}
	if runErr != nil {
		report.LastError = runErr.Error()
	}
	if f.debug {
		writeDebugReport(report)
	}
	if _, werr := out.Write(data); werr != nil && runErr == nil {
		return werr
	}
	return runErr
}
