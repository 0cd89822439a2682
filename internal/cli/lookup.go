package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/lepidex/internal/model"
)

var (
	lookupCommon string
	lookupOpts   queryFlags
)

// lookupCmd represents the lookup command
var lookupCmd = &cobra.Command{
	Use:   "lookup [scientific name]",
	Short: "Look up one species on every source",
	Long: `Lookup queries the selected sources for one species and prints one
outcome per source: a description, not found, auth required, a transient
failure or a parse failure.

Example:
  lepidex lookup "Pieris brassicae"
  lepidex lookup "Pieris brassicae" --sources wikipedia,ukmoths --format json
  lepidex lookup --common "large white"
  lepidex lookup "Aglais urticae" --taxa Taxon.csv --translate --language German`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().StringVar(&lookupCommon, "common", "", "common (vernacular) name")
	lookupOpts.register(lookupCmd, formatTable)
}

func runLookup(cmd *cobra.Command, args []string) (err error) {
	q := model.SpeciesQuery{CommonName: lookupCommon}
	if len(args) == 1 {
		q.ScientificName = args[0]
	}
	if err := q.Validate(); err != nil {
		return errors.New("give a scientific name or --common")
	}
	if err := validFormat(lookupOpts.format); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lookupOpts.apply(cmd, cfg)

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	sources, err := a.selectSources(lookupOpts.sources)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	slog.Debug("looking up", "query", q.String(), "sources", sources)

	report, err := a.pipeline.Query(ctx, q, sources)
	if err != nil {
		return fmt.Errorf("lookup failed: %w", err)
	}

	if lookupOpts.translate {
		tr, err := a.translator()
		if err != nil {
			return err
		}
		if !tr.IsEnabled() {
			return errors.New("--translate needs llm.provider in config or --llm-provider")
		}
		a.translate(ctx, tr, report)
	}

	out, err := openOutput(lookupOpts.output)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close output: %w", closeErr)
		}
	}()

	switch lookupOpts.format {
	case formatJSON:
		err = writeJSON(out, report)
	case formatCSV:
		err = writeCSV(out, []*model.AggregateReport{report})
	default:
		renderTable(out, report)
	}
	if err != nil {
		return err
	}

	writeMetrics(lookupOpts.metricsFile)

	if lookupOpts.output != "" && lookupOpts.output != "-" {
		fmt.Fprintf(os.Stderr, "✓ Report written to %s\n", lookupOpts.output)
	}
	return nil
}
