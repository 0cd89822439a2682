package adapters

import (
	"context"
	"regexp"
	"strings"

	"github.com/ppiankov/lepidex/internal/extract"
	"github.com/ppiankov/lepidex/internal/model"
	"github.com/ppiankov/lepidex/internal/normalize"
)

// authorshipLine matches a paragraph holding only an author citation,
// e.g. "(Linnaeus, 1758)" or "Denis & Schiffermüller, 1775"
var authorshipLine = regexp.MustCompile(`^\(?\p{Lu}[\p{L}'.\- &]*,?\s*\d{4}\)?$`)

// UKMothsAdapter extracts species pages from ukmoths.org.uk
type UKMothsAdapter struct {
	BaseAdapter
}

// NewUKMothsAdapter creates a UKMoths adapter
func NewUKMothsAdapter(opts Options) *UKMothsAdapter {
	return &UKMothsAdapter{
		BaseAdapter: newBaseAdapter(model.SourceUKMoths, "https://ukmoths.org.uk/species/", opts),
	}
}

// Lookup fetches /species/{genus-epithet}/. Only binomials are addressable.
func (a *UKMothsAdapter) Lookup(ctx context.Context, q model.NormalizedQuery, f Fetcher) (out model.Outcome) {
	defer recoverOutcome(ctx, a.source, &out)

	slug, ok := normalize.Slug(q, a.source)
	if !ok {
		return a.notFound(q, "ukmoths only lists species by binomial name")
	}

	res, doc, err := a.get(ctx, f, a.url(slug)+"/")
	if err != nil {
		return a.failure(q, err)
	}

	if doc.Exists("body.error404") {
		return a.notFound(q, "no species page %s", slug)
	}

	content := doc.Find("div.speciestext").First()
	if content.Length() == 0 {
		return a.parseFailure("no species text at %s", res.FinalURL)
	}

	var text string
	if paras := extract.Paragraphs(content); len(paras) > 0 {
		if authorshipLine.MatchString(paras[0]) {
			paras = paras[1:]
		}
		text = strings.Join(paras, "\n\n")
	} else {
		text = extract.NodeText(content)
	}

	fields := map[string]string{
		"description": text,
		"common_name": extract.CleanText(doc.Find("h1").First().Text()),
	}

	return a.finish(q, text, res.FinalURL, slug, fields, "species text is empty")
}
