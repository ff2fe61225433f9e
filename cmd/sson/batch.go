package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sson-dev/sson/matcher"
	"github.com/sson-dev/sson/strategy"
)

var batchFlags = &runFlags{}

var (
	batchGlobs       []string
	batchExcludeFile string
	batchStrategy    string
	batchOutDir      string
	batchConcurrency int
	batchExportPath  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run a strategy over every file matching a glob, concurrently",
	RunE:  runBatch,
}

func init() {
	addRunFlags(batchCmd.Flags(), batchFlags)
	batchCmd.Flags().StringArrayVar(&batchGlobs, "glob", nil, "doublestar glob pattern to select input files, repeatable")
	batchCmd.Flags().StringVar(&batchExcludeFile, "exclude-file", "", "gitignore-style file listing paths to skip")
	batchCmd.Flags().StringVar(&batchStrategy, "strategy", "extract", "strategy to run per file: trigger, convert, filter, extract, or all")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "directory to write per-file output into (required for convert/filter/extract/all)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "max files processed at once (default: number of CPUs)")
	batchCmd.Flags().BoolVar(&batchExportPath, "export-path", false, "for --strategy extract, include each item's path")
}

// batchReport is one job's summary, written to <out-dir>/<job-id>.report.json
// so a caller driving many batch runs can correlate results without parsing
// stdout.
type batchReport struct {
	JobID      string            `json:"job_id"`
	Strategy   string            `json:"strategy"`
	FilesTotal int               `json:"files_total"`
	FilesOK    int               `json:"files_ok"`
	Errors     map[string]string `json:"errors,omitempty"`
}

func discoverBatchFiles(globs []string, excludeFile string) ([]string, error) {
	var excluder *gitignore.GitIgnore
	if excludeFile != "" {
		compiled, err := gitignore.CompileIgnoreFile(excludeFile)
		if err != nil {
			return nil, fmt.Errorf("reading exclude file %s: %w", excludeFile, err)
		}
		excluder = compiled
	}

	seen := map[string]bool{}
	var files []string
	for _, pattern := range globs {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding glob %q: %w", pattern, err)
		}
		for _, m := range matches {
			if seen[m] {
				continue
			}
			if excluder != nil && excluder.MatchesPath(m) {
				continue
			}
			seen[m] = true
			files = append(files, m)
		}
	}
	return files, nil
}

func runBatch(cmd *cobra.Command, _ []string) error {
	f := batchFlags
	ctx := cliContext()

	if len(batchGlobs) == 0 {
		return fmt.Errorf("batch: at least one --glob is required")
	}
	needsOutDir := batchStrategy != "trigger"
	if needsOutDir && batchOutDir == "" {
		return fmt.Errorf("batch: --out-dir is required for strategy %q", batchStrategy)
	}
	if batchOutDir != "" {
		if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
			return fmt.Errorf("creating out-dir: %w", err)
		}
	}

	files, err := discoverBatchFiles(batchGlobs, batchExcludeFile)
	if err != nil {
		return err
	}

	// buildStrategyInputs is called fresh per file below (not hoisted out of
	// the loop) because handlers like Buffer and Analyser hold mutable
	// per-run state that must not be shared across concurrent files.
	if _, _, err := buildStrategyInputs(ctx, f); err != nil {
		return err
	}

	report := &batchReport{
		JobID:      uuid.NewString(),
		Strategy:   batchStrategy,
		FilesTotal: len(files),
		Errors:     map[string]string{},
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	limit := batchConcurrency
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	g.SetLimit(limit)

	for _, path := range files {
		path := path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			if err := processBatchFile(gctx, f, path); err != nil {
				mu.Lock()
				report.Errors[path] = err.Error()
				mu.Unlock()
				return nil // per-file errors are non-fatal to the batch
			}
			mu.Lock()
			report.FilesOK++
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if batchOutDir != "" {
		reportPath := filepath.Join(batchOutDir, report.JobID+".report.json")
		if out, err := json.MarshalIndent(report, "", "  "); err == nil {
			_ = os.WriteFile(reportPath, out, 0o644)
		}
	}
	if len(report.Errors) > 0 {
		return fmt.Errorf("batch: %d of %d files failed", len(report.Errors), report.FilesTotal)
	}
	return nil
}

// processBatchFile runs the configured strategy over one file's contents,
// writing its output (if any) into batchOutDir alongside the input's base
// name. Matchers and handlers are parsed fresh here rather than shared
// across files, since handlers like Buffer and Analyser carry mutable
// per-run state that concurrent files must not step on each other's.
func processBatchFile(ctx context.Context, f *runFlags, path string) error {
	matchers, handlers, err := buildStrategyInputs(ctx, f)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	base := filepath.Base(path)

	switch batchStrategy {
	case "trigger":
		tr := strategy.NewTrigger(bindings(matchers, handlers)...)
		if err := tr.Process(data); err != nil {
			return err
		}
		return tr.Terminate()

	case "convert":
		for group := range matchers {
			if handlers[group] == nil {
				return fmt.Errorf("matcher group %q has no bound handler", group)
			}
		}
		cv := strategy.NewConvert(bindings(matchers, handlers)...)
		frames, err := cv.Process(data)
		if err != nil {
			return err
		}
		tail, err := cv.Terminate()
		frames = append(frames, tail...)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(batchOutDir, base), flattenFrames(frames), 0o644)

	case "filter":
		fl := strategy.NewFilter(bindings(matchers, handlers)...)
		frames, err := fl.Process(data)
		if err != nil {
			return err
		}
		tail, err := fl.Terminate()
		frames = append(frames, tail...)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(batchOutDir, base), flattenFrames(frames), 0o644)

	case "extract":
		var combined matcher.Matcher
		for _, m := range matchers {
			if combined == nil {
				combined = m
			} else {
				combined = matcher.Or(combined, m)
			}
		}
		if combined == nil {
			return fmt.Errorf("extract requires at least one matcher")
		}
		ex := strategy.NewExtract(combined, batchExportPath)
		items, err := ex.Process(data)
		if err != nil {
			return err
		}
		tail, err := ex.Terminate()
		items = append(items, tail...)
		if err != nil {
			return err
		}
		out, err := os.Create(filepath.Join(batchOutDir, base+".ndjson"))
		if err != nil {
			return err
		}
		defer out.Close()
		for _, item := range items {
			rec := extractRecord{Data: item.Bytes}
			if item.HasPath {
				rec.Path = item.Path
			}
			line, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if _, err := out.Write(append(line, '\n')); err != nil {
				return err
			}
		}
		return nil

	case "all":
		allHandler, err := singleHandler(ctx, f.handlers)
		if err != nil {
			return err
		}
		al := strategy.NewAll(allHandler)
		frames, err := al.Process(data)
		if err != nil {
			return err
		}
		tail, err := al.Terminate()
		frames = append(frames, tail...)
		if err != nil {
			return err
		}
		return os.WriteFile(filepath.Join(batchOutDir, base), flattenFrames(frames), 0o644)

	default:
		return fmt.Errorf("unknown strategy %q", batchStrategy)
	}
}
