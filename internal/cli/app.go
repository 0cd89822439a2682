package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ppiankov/lepidex/internal/extract/adapters"
	"github.com/ppiankov/lepidex/internal/llm"
	"github.com/ppiankov/lepidex/internal/metrics"
	"github.com/ppiankov/lepidex/internal/model"
	"github.com/ppiankov/lepidex/internal/pipeline"
	"github.com/ppiankov/lepidex/internal/secrets"
	"github.com/ppiankov/lepidex/internal/taxa"
)

// app bundles what a command needs to run queries
type app struct {
	cfg      *model.Config
	secrets  *secrets.Secrets
	pipeline *pipeline.Pipeline
}

func newApp(cfg *model.Config) (*app, error) {
	metrics.Register()

	sec, err := secrets.Load(cfg.Secrets.File)
	if err != nil {
		return nil, err
	}

	// Keep the resolver an untyped nil when no index is configured
	var resolver adapters.IdentifierResolver
	if cfg.Extraction.TaxonFile != "" {
		index, err := taxa.LoadIndex(cfg.Extraction.TaxonFile)
		if err != nil {
			return nil, fmt.Errorf("load taxon index: %w", err)
		}
		slog.Debug("loaded taxon index", "file", cfg.Extraction.TaxonFile, "names", index.Len())
		resolver = index
	}

	p, err := pipeline.NewPipeline(cfg, sec.ArtfaktaAPIKey, resolver)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, secrets: sec, pipeline: p}, nil
}

// selectSources parses the requested sources, defaulting to every runnable one
func (a *app) selectSources(raw []string) ([]model.Source, error) {
	if len(raw) == 0 {
		return a.pipeline.Registry().Runnable(), nil
	}
	return model.ParseSources(raw)
}

// translator builds the configured translator; it is disabled without a provider
func (a *app) translator() (*llm.Translator, error) {
	provider, err := llm.NewProvider(llm.ConfigFromModel(a.cfg.LLM, a.secrets.LLMKey(a.cfg.LLM.Provider), a.cfg.HTTP.Proxy))
	if err != nil {
		return nil, fmt.Errorf("create llm provider: %w", err)
	}
	return llm.NewTranslator(provider, a.cfg.LLM.Language), nil
}

// translate attaches translations to report. Individual failures are logged.
func (a *app) translate(ctx context.Context, tr *llm.Translator, report *model.AggregateReport) {
	translations, err := tr.TranslateReport(ctx, report)
	if err != nil {
		slog.WarnContext(ctx, "some translations failed", "query", report.Normalized.SearchTerm(), "error", err)
	}
	report.Translations = translations
}

// writeMetrics dumps metrics when a path was given
func writeMetrics(path string) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		slog.Warn("metrics not written", "path", path, "error", err)
	}
}
