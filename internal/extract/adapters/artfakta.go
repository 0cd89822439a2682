package adapters

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/ppiankov/lepidex/internal/extract"
	"github.com/ppiankov/lepidex/internal/fetch"
	"github.com/ppiankov/lepidex/internal/model"
)

const (
	artfaktaURL       = "https://api.artdatabanken.se/information/v1/speciesdataservice/v1/speciesdata/texts"
	artfaktaKeyHeader = "Ocp-Apim-Subscription-Key"
	suggestionLimit   = 5
)

// artfaktaEntry is one element of the species data texts response
type artfaktaEntry struct {
	SpeciesData *artfaktaSpeciesData `json:"speciesData"`
}

type artfaktaSpeciesData struct {
	Characteristic       *string `json:"characteristic"`
	Ecology              *string `json:"ecology"`
	SpreadAndStatus      *string `json:"spreadAndStatus"`
	Threat               *string `json:"threat"`
	ConservationMeasures *string `json:"conservationMeasures"`
}

// ArtfaktaAdapter reads species texts from the Artdatabanken API
type ArtfaktaAdapter struct {
	BaseAdapter
	apiKey   string
	resolver IdentifierResolver
}

// NewArtfaktaAdapter creates an Artfakta adapter using opts.ArtfaktaKey and opts.Resolver
func NewArtfaktaAdapter(opts Options) *ArtfaktaAdapter {
	return &ArtfaktaAdapter{
		BaseAdapter: newBaseAdapter(model.SourceArtfakta, artfaktaURL, opts),
		apiKey:      opts.ArtfaktaKey,
		resolver:    opts.Resolver,
	}
}

// RequiresAuth is always true for Artfakta
func (a *ArtfaktaAdapter) RequiresAuth() bool {
	return true
}

// HasCredentials reports whether an API key is configured
func (a *ArtfaktaAdapter) HasCredentials() bool {
	return a.apiKey != ""
}

// Lookup resolves the taxon id locally, then fetches the species texts
func (a *ArtfaktaAdapter) Lookup(ctx context.Context, q model.NormalizedQuery, f Fetcher) (out model.Outcome) {
	defer recoverOutcome(ctx, a.source, &out)

	if a.apiKey == "" {
		return model.AuthRequired(a.source, "artfakta api key not configured")
	}
	if !q.HasScientific() {
		return a.notFound(q, "artfakta needs a scientific name")
	}
	if a.resolver == nil {
		return a.notFound(q, "no taxon index loaded")
	}

	id, ok := a.resolver.Resolve(q)
	if !ok {
		return a.notFound(q, "no taxon id for %q", q.Scientific).
			WithSuggestions(a.resolver.Suggest(q.Scientific, suggestionLimit))
	}

	reqURL := a.baseURL + "?taxa=" + url.QueryEscape(id.Value)
	res, err := f.Fetch(ctx, fetch.Request{
		URL:     reqURL,
		Timeout: a.timeout,
		Accept:  "application/json",
		Headers: map[string]string{"Cache-Control": "no-cache"},
		Auth:    fetch.Auth{Header: artfaktaKeyHeader, Key: a.apiKey, Required: true},
	})
	if err != nil {
		return a.failure(q, err)
	}

	var entries []artfaktaEntry
	if err := json.Unmarshal(res.Body, &entries); err != nil {
		return a.parseFailure("decode species data: %v", err)
	}
	if len(entries) == 0 {
		return a.notFound(q, "no species data for taxon %s", id.Value)
	}

	data := entries[0].SpeciesData
	if data == nil {
		return a.parseFailure("response has no speciesData")
	}

	fields := map[string]string{
		"identification": artfaktaText(data.Characteristic),
		"ecology":        artfaktaText(data.Ecology),
		"distribution":   artfaktaText(data.SpreadAndStatus),
		"threats":        artfaktaText(data.Threat),
		"conservation":   artfaktaText(data.ConservationMeasures),
	}

	return a.finish(q, fields["identification"], reqURL, id.Value, fields, "characteristic is empty")
}

// artfaktaText converts an optional HTML fragment to plain text
func artfaktaText(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(extract.FragmentText(*s))
}
