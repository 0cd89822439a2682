package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/lepidex/internal/model"
)

// queryFlags are shared by lookup and batch
type queryFlags struct {
	sources     []string
	format      string
	output      string
	workers     int
	deadline    time.Duration
	lenient     bool
	wikiLang    string
	taxonFile   string
	translate   bool
	llmProvider string
	llmModel    string
	language    string
	metricsFile string
}

func (f *queryFlags) register(cmd *cobra.Command, defaultFormat string) {
	flags := cmd.Flags()
	flags.StringSliceVarP(&f.sources, "sources", "s", nil, "sources to query, in report order (default: every source with credentials)")
	flags.StringVarP(&f.format, "format", "f", defaultFormat, "output format: table, json, csv")
	flags.StringVarP(&f.output, "output", "o", "", "output file (default: stdout)")
	flags.IntVar(&f.workers, "workers", 0, "concurrent source lookups per query (default from config)")
	flags.DurationVar(&f.deadline, "deadline", 0, "overall deadline per query, e.g. 30s (default from config)")
	flags.BoolVar(&f.lenient, "lenient", false, "accept records built from optional sections when the main description is missing")
	flags.StringVar(&f.wikiLang, "wikipedia-lang", "", "Wikipedia language edition, e.g. sv")
	flags.StringVar(&f.taxonFile, "taxa", "", "Dyntaxa Taxon.csv used to resolve Artfakta taxon ids")
	flags.BoolVar(&f.translate, "translate", false, "translate successful descriptions with the configured LLM")
	flags.StringVar(&f.llmProvider, "llm-provider", "", "LLM provider for --translate (openai, anthropic, ollama)")
	flags.StringVar(&f.llmModel, "llm-model", "", "LLM model name")
	flags.StringVar(&f.language, "language", "", "target language for --translate")
	flags.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile when done")
}

// apply overrides cfg with the flags the user set
func (f *queryFlags) apply(cmd *cobra.Command, cfg *model.Config) {
	changed := cmd.Flags().Changed

	if changed("workers") {
		cfg.Concurrency.Workers = f.workers
	}
	if changed("deadline") {
		cfg.Concurrency.Deadline = f.deadline
	}
	if changed("lenient") {
		cfg.Extraction.Lenient = f.lenient
	}
	if f.wikiLang != "" {
		cfg.Extraction.WikipediaLanguage = f.wikiLang
	}
	if f.taxonFile != "" {
		cfg.Extraction.TaxonFile = f.taxonFile
	}
	if f.llmProvider != "" {
		cfg.LLM.Provider = f.llmProvider
	}
	if f.llmModel != "" {
		cfg.LLM.Model = f.llmModel
	}
	if f.language != "" {
		cfg.LLM.Language = f.language
	}
}
