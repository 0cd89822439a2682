package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/ppiankov/lepidex/internal/extract"
	"github.com/ppiankov/lepidex/internal/fetch"
	"github.com/ppiankov/lepidex/internal/model"
)

// Adapter looks up one species on one source
type Adapter interface {
	// Source returns the source this adapter serves
	Source() model.Source

	// RequiresAuth reports whether the source needs an API key
	RequiresAuth() bool

	// Lookup fetches and extracts a description. Every failure is an Outcome.
	Lookup(ctx context.Context, q model.NormalizedQuery, f Fetcher) model.Outcome
}

// Fetcher performs classified GET requests. *fetch.Client satisfies it.
type Fetcher interface {
	Fetch(ctx context.Context, req fetch.Request) (*fetch.Document, error)
}

// IdentifierResolver maps queries to source-specific identifiers
type IdentifierResolver interface {
	Resolve(q model.NormalizedQuery) (model.SourceIdentifier, bool)
	Suggest(name string, limit int) []string
}

// credentialed is implemented by adapters that can tell whether their
// credential is configured
type credentialed interface {
	HasCredentials() bool
}

// Options configures the built-in adapters
type Options struct {
	BaseURLs          map[model.Source]string        // Overrides the public endpoints
	Timeouts          map[model.Source]time.Duration // Per-source request timeout
	Disabled          map[model.Source]bool
	ArtfaktaKey       string
	Resolver          IdentifierResolver // Artfakta taxon ids
	WikipediaLanguage string
	Lenient           bool // Accept optional fields when the primary text is missing
}

// OptionsFromConfig builds adapter options from configuration
func OptionsFromConfig(cfg *model.Config, artfaktaKey string, resolver IdentifierResolver) Options {
	opts := Options{
		BaseURLs:          make(map[model.Source]string),
		Timeouts:          make(map[model.Source]time.Duration),
		Disabled:          make(map[model.Source]bool),
		ArtfaktaKey:       artfaktaKey,
		Resolver:          resolver,
		WikipediaLanguage: cfg.Extraction.WikipediaLanguage,
		Lenient:           cfg.Extraction.Lenient,
	}

	for _, src := range model.AllSources() {
		sc := cfg.Source(src)
		if sc.BaseURL != "" {
			opts.BaseURLs[src] = sc.BaseURL
		}
		if sc.Timeout > 0 {
			opts.Timeouts[src] = sc.Timeout
		}
		if sc.Disabled {
			opts.Disabled[src] = true
		}
	}

	return opts
}

// Registry holds the adapters by source
type Registry struct {
	adapters map[model.Source]Adapter
	order    []model.Source
}

// NewRegistry creates a registry with every enabled built-in adapter
func NewRegistry(opts Options) *Registry {
	r := &Registry{adapters: make(map[model.Source]Adapter)}

	builtins := []Adapter{
		NewWikipediaAdapter(opts),
		NewArtfaktaAdapter(opts),
		NewUKMothsAdapter(opts),
		NewNRMAdapter(opts),
		NewADWAdapter(opts),
		NewBAMONAAdapter(opts),
	}
	for _, a := range builtins {
		if !opts.Disabled[a.Source()] {
			r.Register(a)
		}
	}

	return r
}

// Register adds or replaces the adapter for its source
func (r *Registry) Register(a Adapter) {
	src := a.Source()
	if _, exists := r.adapters[src]; !exists {
		r.order = append(r.order, src)
	}
	r.adapters[src] = a
}

// Get returns the adapter for src
func (r *Registry) Get(src model.Source) (Adapter, bool) {
	a, ok := r.adapters[src]
	return a, ok
}

// Sources returns the registered sources in registration order
func (r *Registry) Sources() []model.Source {
	return append([]model.Source(nil), r.order...)
}

// Runnable returns the sources that can be queried without a missing credential
func (r *Registry) Runnable() []model.Source {
	var out []model.Source
	for _, src := range r.order {
		a := r.adapters[src]
		if !a.RequiresAuth() {
			out = append(out, src)
			continue
		}
		if c, ok := a.(credentialed); ok && c.HasCredentials() {
			out = append(out, src)
		}
	}
	return out
}

// Run invokes a.Lookup, turning a panic into a ParseFailure
func Run(ctx context.Context, a Adapter, q model.NormalizedQuery, f Fetcher) (out model.Outcome) {
	defer recoverOutcome(ctx, a.Source(), &out)
	return a.Lookup(ctx, q, f)
}

func recoverOutcome(ctx context.Context, src model.Source, out *model.Outcome) {
	if r := recover(); r != nil {
		slog.ErrorContext(ctx, "adapter panicked", "source", src, "panic", r)
		*out = model.ParseFailure(src, fmt.Sprintf("adapter panic: %v", r))
	}
}

// BaseAdapter provides the request and outcome plumbing shared by adapters
type BaseAdapter struct {
	source  model.Source
	baseURL string
	timeout time.Duration
	lenient bool
}

func newBaseAdapter(src model.Source, defaultURL string, opts Options) BaseAdapter {
	base := defaultURL
	if u := opts.BaseURLs[src]; u != "" {
		base = u
	}
	return BaseAdapter{
		source:  src,
		baseURL: base,
		timeout: opts.Timeouts[src],
		lenient: opts.Lenient,
	}
}

// Source returns the source this adapter serves
func (b *BaseAdapter) Source() model.Source {
	return b.source
}

// RequiresAuth is false unless an adapter overrides it
func (b *BaseAdapter) RequiresAuth() bool {
	return false
}

// BaseURL returns the endpoint requests are made against
func (b *BaseAdapter) BaseURL() string {
	return b.baseURL
}

// url joins path onto the base URL
func (b *BaseAdapter) url(path string) string {
	return strings.TrimRight(b.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// get fetches rawURL and parses it as HTML
func (b *BaseAdapter) get(ctx context.Context, f Fetcher, rawURL string) (*fetch.Document, *extract.Document, error) {
	res, err := f.Fetch(ctx, fetch.Request{URL: rawURL, Timeout: b.timeout})
	if err != nil {
		return nil, nil, err
	}

	doc, err := extract.Parse(res.Body, res.ContentType)
	if err != nil {
		return nil, nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}

	return res, doc, nil
}

// failure maps a fetch or parse error to an outcome
func (b *BaseAdapter) failure(q model.NormalizedQuery, err error) model.Outcome {
	switch {
	case errors.Is(err, extract.ErrParse):
		return model.ParseFailure(b.source, err.Error())
	case fetch.IsNotFound(err):
		return model.NotFound(b.source, q.Query, err.Error())
	case fetch.IsAuth(err):
		return model.AuthRequired(b.source, err.Error())
	default:
		return model.TransientFailure(b.source, err.Error())
	}
}

// notFound reports an absent species with a formatted reason
func (b *BaseAdapter) notFound(q model.NormalizedQuery, format string, args ...any) model.Outcome {
	return model.NotFound(b.source, q.Query, fmt.Sprintf(format, args...))
}

// parseFailure reports a page that did not have the expected shape
func (b *BaseAdapter) parseFailure(format string, args ...any) model.Outcome {
	return model.ParseFailure(b.source, fmt.Sprintf(format, args...))
}

// finish builds the success outcome. An empty text is a ParseFailure with
// reason missing, unless the adapter is lenient and optional fields exist.
func (b *BaseAdapter) finish(q model.NormalizedQuery, text, sourceURL, identifier string, fields map[string]string, missing string) model.Outcome {
	text = strings.TrimSpace(text)
	if text == "" && b.lenient {
		text = joinFields(fields)
	}
	if text == "" {
		return model.ParseFailure(b.source, missing)
	}

	rec := model.NewDescriptionRecord(b.source, q.Query, text, sourceURL, identifier, fields)
	return model.Success(rec)
}

// joinFields renders non-empty fields as "name: text" blocks in name order
func joinFields(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for k, v := range fields {
		if strings.TrimSpace(v) != "" {
			names = append(names, k)
		}
	}
	sort.Strings(names)

	blocks := make([]string, 0, len(names))
	for _, k := range names {
		blocks = append(blocks, k+": "+strings.TrimSpace(fields[k]))
	}
	return strings.Join(blocks, "\n\n")
}
