package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ppiankov/lepidex/internal/extract/adapters"
	"github.com/ppiankov/lepidex/internal/fetch"
	"github.com/ppiankov/lepidex/internal/metrics"
	"github.com/ppiankov/lepidex/internal/model"
	"github.com/ppiankov/lepidex/internal/normalize"
	"github.com/ppiankov/lepidex/internal/worker"
)

// ErrUnknownSource is returned when a requested source has no adapter
var ErrUnknownSource = errors.New("unknown source")

// endpoint is implemented by adapters that expose their base URL
type endpoint interface {
	BaseURL() string
}

// Pipeline fans one species query out to the selected adapters
type Pipeline struct {
	registry *adapters.Registry
	fetcher  adapters.Fetcher
	workers  int
	deadline time.Duration // 0 means no overall deadline
	now      func() time.Time
}

// New creates a pipeline over an existing registry and fetcher
func New(registry *adapters.Registry, fetcher adapters.Fetcher, workers int, deadline time.Duration) *Pipeline {
	if workers <= 0 {
		workers = 3
	}
	return &Pipeline{
		registry: registry,
		fetcher:  fetcher,
		workers:  workers,
		deadline: deadline,
		now:      time.Now,
	}
}

// NewPipeline wires the HTTP client, politeness limiter and adapters from
// configuration. resolver may be nil when no taxon index is loaded.
func NewPipeline(cfg *model.Config, artfaktaKey string, resolver adapters.IdentifierResolver) (*Pipeline, error) {
	limiter := worker.NewLimiter(cfg.RateLimiting.MinInterval)

	client, err := fetch.NewClient(fetch.OptionsFromConfig(cfg, limiter))
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}

	registry := adapters.NewRegistry(adapters.OptionsFromConfig(cfg, artfaktaKey, resolver))

	for _, src := range registry.Sources() {
		interval := cfg.Source(src).MinInterval
		if interval <= 0 {
			continue
		}
		a, _ := registry.Get(src)
		if e, ok := a.(endpoint); ok {
			if err := limiter.SetURLInterval(e.BaseURL(), interval); err != nil {
				return nil, fmt.Errorf("rate limit %s: %w", src, err)
			}
		}
	}

	return New(registry, client, cfg.Concurrency.Workers, cfg.Concurrency.Deadline), nil
}

// Registry returns the adapters this pipeline dispatches to
func (p *Pipeline) Registry() *adapters.Registry {
	return p.registry
}

// Query looks q up on each source and returns one entry per distinct source,
// in request order. Only caller mistakes are errors; every per-source failure
// is an outcome in the report.
func (p *Pipeline) Query(ctx context.Context, q model.SpeciesQuery, sources []model.Source) (*model.AggregateReport, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	sources = dedupe(sources)
	selected := make([]adapters.Adapter, len(sources))
	for i, src := range sources {
		a, ok := p.registry.Get(src)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSource, src)
		}
		selected[i] = a
	}

	n := normalize.Normalize(q)
	metrics.IncQueries()

	if p.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.deadline)
		defer cancel()
	}

	jobs := make([]worker.Job, len(selected))
	for i, a := range selected {
		jobs[i] = &lookupJob{adapter: a, query: n, fetcher: p.fetcher}
	}

	start := time.Now()
	results := worker.NewPool(p.workers).Run(ctx, jobs)

	report := &model.AggregateReport{
		ID:          ulid.Make().String(),
		Query:       q,
		Normalized:  n,
		GeneratedAt: p.now().UTC(),
		Entries:     make([]model.ReportEntry, len(sources)),
	}
	for i, src := range sources {
		out := interrupted(ctx, src)
		if r, ok := results[i].(*lookupResult); ok && r != nil {
			out = r.outcome
		}
		report.Entries[i] = model.ReportEntry{Source: src, Outcome: out}
	}

	slog.InfoContext(ctx, "query complete",
		"query", n.SearchTerm(),
		"sources", len(sources),
		"successes", len(report.Successes()),
		"duration", time.Since(start).Round(time.Millisecond))

	return report, nil
}

// QueryRunnable queries every source whose credentials are available
func (p *Pipeline) QueryRunnable(ctx context.Context, q model.SpeciesQuery) (*model.AggregateReport, error) {
	return p.Query(ctx, q, p.registry.Runnable())
}

// lookupJob runs one adapter as a worker job
type lookupJob struct {
	adapter adapters.Adapter
	query   model.NormalizedQuery
	fetcher adapters.Fetcher
}

// lookupResult carries an outcome back through the pool
type lookupResult struct {
	outcome model.Outcome
}

// GetError is always nil; failures are outcomes
func (r *lookupResult) GetError() error {
	return nil
}

// Execute runs the adapter, giving up when ctx is done
func (j *lookupJob) Execute(ctx context.Context) worker.Result {
	src := j.adapter.Source()
	start := time.Now()

	done := make(chan model.Outcome, 1)
	go func() {
		done <- adapters.Run(ctx, j.adapter, j.query, j.fetcher)
	}()

	var out model.Outcome
	select {
	case out = <-done:
	case <-ctx.Done():
		select {
		case out = <-done:
		default:
			out = interrupted(ctx, src)
		}
	}
	if out.Kind == model.OutcomeTransientFailure && ctx.Err() != nil {
		out = interrupted(ctx, src)
	}

	elapsed := time.Since(start)
	metrics.ObserveAdapter(string(src), string(out.Kind), elapsed)
	logOutcome(ctx, out, elapsed)

	return &lookupResult{outcome: out}
}

// interrupted is the outcome for a lookup cut short by the deadline or the caller
func interrupted(ctx context.Context, src model.Source) model.Outcome {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return model.TransientFailure(src, "timeout")
	}
	return model.TransientFailure(src, "cancelled")
}

func logOutcome(ctx context.Context, out model.Outcome, elapsed time.Duration) {
	attrs := []any{"source", out.Source, "outcome", out.Kind, "duration", elapsed.Round(time.Millisecond)}
	if out.Reason != "" {
		attrs = append(attrs, "reason", out.Reason)
	}

	switch out.Kind {
	case model.OutcomeParseFailure:
		slog.WarnContext(ctx, "page did not match adapter", attrs...)
	case model.OutcomeAuthRequired:
		slog.InfoContext(ctx, "source needs credentials", attrs...)
	default:
		slog.DebugContext(ctx, "lookup finished", attrs...)
	}
}

// dedupe keeps the first occurrence of each source
func dedupe(sources []model.Source) []model.Source {
	seen := make(map[model.Source]bool, len(sources))
	out := make([]model.Source, 0, len(sources))
	for _, src := range sources {
		if !seen[src] {
			seen[src] = true
			out = append(out, src)
		}
	}
	return out
}
