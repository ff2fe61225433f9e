package main

import (
	"encoding/json"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/sson-dev/sson/matcher"
	"github.com/sson-dev/sson/strategy"
)

var extractFlags = &runFlags{}
var extractExportPath bool

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Yield each matched region as its own JSON sub-document",
	RunE:  runExtract,
}

func init() {
	addRunFlags(extractCmd.Flags(), extractFlags)
	extractCmd.Flags().BoolVar(&extractExportPath, "export-path", false, "include each item's path alongside its bytes")
}

// extractRecord is one line of extract's newline-delimited JSON output.
type extractRecord struct {
	Path string          `json:"path,omitempty"`
	Data json.RawMessage `json:"data"`
}

func runExtract(cmd *cobra.Command, _ []string) error {
	f := extractFlags
	ctx := cliContext()

	matchers, _, err := buildStrategyInputs(ctx, f)
	if err != nil {
		return err
	}
	if len(matchers) == 0 {
		return fmt.Errorf("extract: at least one -m matcher is required")
	}
	var combined matcher.Matcher
	for _, m := range matchers {
		if combined == nil {
			combined = m
		} else {
			combined = matcher.Or(combined, m)
		}
	}

	ex := strategy.NewExtract(combined, extractExportPath)

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
	var matches int64
	var stopTUI func()
	if f.tui {
		stopTUI = runTUI(int64(len(data)), &processed, &matches)
	}

	var allItems []strategy.Item
	report := &debugReport{Strategy: "extract", Matchers: f.matchers, BytesIn: len(data)}
	runErr := feedChunks(data, &processed, func(chunk []byte) error {
		items, err := ex.Process(chunk)
		allItems = append(allItems, items...)
		atomic.AddInt64(&matches, int64(len(items)))
		return err
	})
	if runErr == nil {
		var items []strategy.Item
		items, runErr = ex.Terminate()
		allItems = append(allItems, items...)
		atomic.AddInt64(&matches, int64(len(items)))
	}
	if stopTUI != nil {
		stopTUI()
	}

	report.ItemsOut = len(allItems)
	if runErr != nil {
		report.LastError = runErr.Error()
	}
	if f.debug {
		writeDebugReport(report)
	}

	for _, item := range allItems {
		rec := extractRecord{Data: json.RawMessage(item.Bytes)}
		if item.HasPath {
			rec.Path = item.Path
		}
		line, err := json.Marshal(rec)
		if err != nil {
			if runErr == nil {
				runErr = err
			}
			continue
		}
		line = append(line, '\n')
		if _, werr := out.Write(line); werr != nil && runErr == nil {
			runErr = werr
		}
	}
	return runErr
}
