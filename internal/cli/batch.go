package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ppiankov/lepidex/internal/llm"
	"github.com/ppiankov/lepidex/internal/model"
	"github.com/ppiankov/lepidex/internal/worker"
)

var (
	batchConcurrency int
	batchTimeout     time.Duration
	batchNoProgress  bool
	batchOpts        queryFlags
)

// batchEntry is one query's result in batch output
type batchEntry struct {
	Query  model.SpeciesQuery     `json:"query"`
	Report *model.AggregateReport `json:"report,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Look up many species from a file",
	Long: `Batch reads species from a file and looks each one up on the selected sources.

One species per line: a scientific name, optionally followed by ";" or a tab
and a common name. A line starting with ";" gives only a common name.
Blank lines and lines starting with "#" are ignored.

Example:
  lepidex batch species.txt
  lepidex batch species.txt --format csv --output descriptions.csv
  lepidex batch species.txt --concurrency 4 --sources artfakta,nrm --taxa Taxon.csv`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "species looked up at once (default from config)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for the batch")
	batchCmd.Flags().BoolVar(&batchNoProgress, "no-progress", false, "hide the progress bar")
	batchOpts.register(batchCmd, formatCSV)
}

func runBatch(cmd *cobra.Command, args []string) (err error) {
	file := args[0]
	if err := validFormat(batchOpts.format); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	batchOpts.apply(cmd, cfg)
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency.BatchWorkers = batchConcurrency
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	sources, err := a.selectSources(batchOpts.sources)
	if err != nil {
		return err
	}

	var tr *llm.Translator
	if batchOpts.translate {
		if tr, err = a.translator(); err != nil {
			return err
		}
		if !tr.IsEnabled() {
			return errors.New("--translate needs llm.provider in config or --llm-provider")
		}
	}

	queries, err := worker.ReadQueriesFromFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}
	if len(queries) == 0 {
		return fmt.Errorf("no species in %s", file)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Lepidex Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Species:      %d\n", len(queries))
	fmt.Fprintf(os.Stderr, "  Sources:      %v\n", sources)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.BatchWorkers)
	fmt.Fprintf(os.Stderr, "\n")

	processor := worker.NewBatchProcessor(a.pipeline, cfg.Concurrency.BatchWorkers, sources)

	var bar *progressbar.ProgressBar
	if !batchNoProgress && !verbose {
		bar = progressbar.Default(int64(len(queries)), "looking up")
		processor.OnDone = func(*worker.QueryResult) {
			_ = bar.Add(1)
		}
	}

	results := processor.ProcessQueries(ctx, queries)
	if bar != nil {
		_ = bar.Finish()
	}

	entries := make([]batchEntry, len(results))
	var reports []*model.AggregateReport
	failures := 0
	for i, r := range results {
		entries[i] = batchEntry{Query: r.Query, Report: r.Report}
		if r.Error != nil {
			failures++
			entries[i].Error = r.Error.Error()
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", r.Query.String(), r.Error)
			continue
		}
		if tr != nil {
			a.translate(ctx, tr, r.Report)
		}
		reports = append(reports, r.Report)
	}

	out, err := openOutput(batchOpts.output)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()

	switch batchOpts.format {
	case formatJSON:
		err = writeJSON(out, entries)
	case formatTable:
		renderBatchTable(out, entries)
	default:
		err = writeCSV(out, reports)
	}
	if err != nil {
		return err
	}

	writeMetrics(batchOpts.metricsFile)

	found := 0
	for _, r := range reports {
		if len(r.Successes()) > 0 {
			found++
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:        %d species\n", len(results))
	fmt.Fprintf(os.Stderr, "  Described:    %d\n", found)
	fmt.Fprintf(os.Stderr, "  Errors:       %d\n", failures)
	if batchOpts.output != "" && batchOpts.output != "-" {
		fmt.Fprintf(os.Stderr, "  Output:       %s\n", batchOpts.output)
	}
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}
