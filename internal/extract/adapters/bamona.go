package adapters

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/lepidex/internal/extract"
	"github.com/ppiankov/lepidex/internal/model"
	"github.com/ppiankov/lepidex/internal/normalize"
)

var nonWordRun = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// BAMONAAdapter extracts species and taxonomy pages from Butterflies and
// Moths of North America
type BAMONAAdapter struct {
	BaseAdapter
}

// NewBAMONAAdapter creates a BAMONA adapter
func NewBAMONAAdapter(opts Options) *BAMONAAdapter {
	return &BAMONAAdapter{
		BaseAdapter: newBaseAdapter(model.SourceButterfliesAndMoths, "https://www.butterfliesandmoths.org/", opts),
	}
}

// Lookup fetches /species/{Genus-epithet} or /taxonomy/{Name}
func (a *BAMONAAdapter) Lookup(ctx context.Context, q model.NormalizedQuery, f Fetcher) (out model.Outcome) {
	defer recoverOutcome(ctx, a.source, &out)

	slug, ok := normalize.Slug(q, a.source)
	if !ok {
		return a.notFound(q, "bamona pages need a parsed scientific name")
	}

	res, doc, err := a.get(ctx, f, a.url(slug))
	if err != nil {
		return a.failure(q, err)
	}

	if strings.Contains(strings.ToLower(doc.Title()), "page not found") {
		return a.notFound(q, "no page %s", slug)
	}

	fields := make(map[string]string)
	var lines []string
	doc.Find(".pane-content .views-field").Each(func(_ int, field *goquery.Selection) {
		label := strings.TrimSuffix(extract.CleanText(field.Find("strong.views-label").First().Text()), ":")
		content := extract.CleanText(field.Find("span.field-content").First().Text())
		if label == "" || content == "" {
			return
		}
		lines = append(lines, label+": "+content)
		if key := snakeCase(label); key != "" && fields[key] == "" {
			fields[key] = content
		}
	})

	body := doc.Find("div.field-name-body").First()
	if body.Length() > 0 && fields["description"] == "" {
		fields["description"] = bodyText(body)
	}

	if len(lines) == 0 && body.Length() == 0 {
		if !doc.Exists(".pane-content") {
			return a.parseFailure("no content pane at %s", res.FinalURL)
		}
		return a.parseFailure("no labeled fields at %s", res.FinalURL)
	}

	text := strings.Join(lines, "\n")
	if text == "" {
		text = fields["description"]
	}

	return a.finish(q, text, res.FinalURL, slug, fields, "page has no description")
}

// bodyText returns paragraphs of a Drupal body field, or its line text
func bodyText(body *goquery.Selection) string {
	if paras := extract.Paragraphs(body); len(paras) > 0 {
		return strings.Join(paras, "\n\n")
	}
	return extract.NodeText(body)
}

// snakeCase turns a label such as "Wing Span" into "wing_span"
func snakeCase(label string) string {
	return strings.Trim(nonWordRun.ReplaceAllString(strings.ToLower(label), "_"), "_")
}
