package adapters

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/lepidex/internal/extract"
	"github.com/ppiankov/lepidex/internal/model"
	"github.com/ppiankov/lepidex/internal/normalize"
)

// wikipediaSections maps a field to the heading words that introduce it
var wikipediaSections = []struct {
	field    string
	keywords []string
}{
	{"description", []string{"description", "imago", "identification", "adult"}},
	{"distribution", []string{"distribution", "range"}},
	{"habitat", []string{"habitat"}},
	{"biology", []string{"biology", "ecology", "behaviour", "behavior", "life cycle"}},
	{"host_plants", []string{"food plant", "foodplant", "host plant", "larval food"}},
}

// wikipediaBackMatter headings end the article body
var wikipediaBackMatter = []string{
	"see also", "references", "external links", "further reading", "notes", "gallery", "bibliography",
}

// WikipediaAdapter extracts species articles from Wikipedia
type WikipediaAdapter struct {
	BaseAdapter
}

// NewWikipediaAdapter creates a Wikipedia adapter for opts.WikipediaLanguage
func NewWikipediaAdapter(opts Options) *WikipediaAdapter {
	lang := opts.WikipediaLanguage
	if lang == "" {
		lang = "en"
	}
	return &WikipediaAdapter{
		BaseAdapter: newBaseAdapter(model.SourceWikipedia, fmt.Sprintf("https://%s.wikipedia.org/wiki/", lang), opts),
	}
}

// Lookup tries the scientific name first, then the common name
func (a *WikipediaAdapter) Lookup(ctx context.Context, q model.NormalizedQuery, f Fetcher) (out model.Outcome) {
	defer recoverOutcome(ctx, a.source, &out)

	var names []string
	if q.HasScientific() {
		names = append(names, q.Canonical())
	}
	if q.Common != "" {
		names = append(names, q.Common)
	}

	var titles []string
	for _, name := range names {
		if title, ok := normalize.WikipediaTitle(name); ok && !slices.Contains(titles, title) {
			titles = append(titles, title)
		}
	}
	if len(titles) == 0 {
		return a.notFound(q, "no name to look up")
	}

	for _, title := range titles {
		out = a.lookupTitle(ctx, q, f, title)
		if out.Kind != model.OutcomeNotFound {
			return out
		}
	}
	return out
}

func (a *WikipediaAdapter) lookupTitle(ctx context.Context, q model.NormalizedQuery, f Fetcher, title string) model.Outcome {
	res, doc, err := a.get(ctx, f, a.url(title))
	if err != nil {
		return a.failure(q, err)
	}

	if doc.Exists(".noarticletext") {
		return a.notFound(q, "no article %s", title)
	}
	if doc.Exists("#disambigbox, .mw-disambig, #disambig") {
		return a.notFound(q, "%s is a disambiguation page", title)
	}

	content := doc.Find("#mw-content-text .mw-parser-output").First()
	if content.Length() == 0 {
		content = doc.Find(".mw-parser-output").First()
	}
	if content.Length() == 0 {
		return a.parseFailure("no article content at %s", res.FinalURL)
	}

	content.Find("sup.reference, .mw-editsection, style, .reflist, .navbox").Remove()

	lead, sections := wikipediaOutline(content)

	fields := make(map[string]string)
	if len(lead) > 0 {
		fields["summary"] = strings.Join(lead, "\n\n")
	}
	for _, sec := range wikipediaSections {
		var parts []string
		for _, s := range sections {
			if matchesAny(s.title, sec.keywords) && len(s.paragraphs) > 0 {
				parts = append(parts, s.paragraphs...)
			}
		}
		if len(parts) > 0 {
			fields[sec.field] = strings.Join(parts, "\n\n")
		}
	}

	text := fields["description"]
	if text == "" {
		text = fields["summary"]
	}
	if text == "" {
		body := append([]string(nil), lead...)
		for _, s := range sections {
			body = append(body, s.paragraphs...)
		}
		text = strings.Join(body, "\n\n")
	}

	return a.finish(q, text, res.FinalURL, title, fields, "article has no text")
}

// wikipediaSection is the text under one heading
type wikipediaSection struct {
	title      string // Lowercased heading text
	paragraphs []string
}

// wikipediaOutline splits the article into lead paragraphs and titled
// sections. Both heading markups are understood: <h2><span class="mw-headline">
// and <div class="mw-heading"><h2>.
func wikipediaOutline(content *goquery.Selection) ([]string, []wikipediaSection) {
	var lead []string
	var sections []wikipediaSection
	current := -1

	content.Children().EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if title, ok := wikipediaHeading(s); ok {
			if matchesAny(title, wikipediaBackMatter) {
				return false
			}
			sections = append(sections, wikipediaSection{title: title})
			current = len(sections) - 1
			return true
		}

		var text []string
		switch goquery.NodeName(s) {
		case "p":
			if t := extract.StripCitations(extract.CleanText(s.Text())); t != "" {
				text = append(text, t)
			}
		case "ul", "ol":
			if current >= 0 {
				for _, line := range extract.Lines(s) {
					text = append(text, extract.StripCitations(line))
				}
			}
		}
		if len(text) == 0 {
			return true
		}

		if current < 0 {
			lead = append(lead, text...)
		} else {
			sections[current].paragraphs = append(sections[current].paragraphs, text...)
		}
		return true
	})
	return lead, sections
}

// wikipediaHeading returns the lowercased title if s is a section heading
func wikipediaHeading(s *goquery.Selection) (string, bool) {
	switch goquery.NodeName(s) {
	case "h2", "h3", "h4":
		if headline := s.Find(".mw-headline").First(); headline.Length() > 0 {
			return strings.ToLower(extract.CleanText(headline.Text())), true
		}
		return strings.ToLower(extract.CleanText(s.Text())), true
	case "div":
		if s.HasClass("mw-heading") {
			h := s.Find("h2, h3, h4").First()
			return strings.ToLower(extract.CleanText(h.Text())), true
		}
	}
	return "", false
}

func matchesAny(title string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(title, k) {
			return true
		}
	}
	return false
}
