package adapters

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/lepidex/internal/extract"
	"github.com/ppiankov/lepidex/internal/model"
	"github.com/ppiankov/lepidex/internal/normalize"
)

// adwSections maps account section ids to field names
var adwSections = []struct {
	id    string
	field string
}{
	{"physical_description", "description"},
	{"geographic_range", "distribution"},
	{"habitat", "habitat"},
	{"development", "development"},
	{"behavior", "behavior"},
	{"food_habits", "food_habits"},
	{"reproduction", "reproduction"},
}

// ADWAdapter extracts accounts from Animal Diversity Web
type ADWAdapter struct {
	BaseAdapter
}

// NewADWAdapter creates an Animal Diversity Web adapter
func NewADWAdapter(opts Options) *ADWAdapter {
	return &ADWAdapter{
		BaseAdapter: newBaseAdapter(model.SourceAnimalDiversityWeb, "https://animaldiversity.org/accounts/", opts),
	}
}

// Lookup fetches /accounts/{Genus_epithet}/ for binomials and uninomials
func (a *ADWAdapter) Lookup(ctx context.Context, q model.NormalizedQuery, f Fetcher) (out model.Outcome) {
	defer recoverOutcome(ctx, a.source, &out)

	slug, ok := normalize.Slug(q, a.source)
	if !ok {
		return a.notFound(q, "adw accounts need a parsed scientific name")
	}

	res, doc, err := a.get(ctx, f, a.url(slug)+"/")
	if err != nil {
		return a.failure(q, err)
	}

	fields := make(map[string]string)
	found := 0
	for _, s := range adwSections {
		header := doc.Find("h3#" + s.id).First()
		if header.Length() == 0 {
			continue
		}
		found++

		var paras []string
		header.NextUntil("h3").Filter("p").Each(func(_ int, p *goquery.Selection) {
			if text := extract.CleanText(p.Text()); text != "" {
				paras = append(paras, text)
			}
		})
		fields[s.field] = strings.Join(paras, "\n\n")
	}

	if found == 0 {
		name := strings.ToLower(q.Binomial())
		heading := strings.ToLower(doc.Title() + " " + extract.CleanText(doc.Find("h1").Text()))
		if !strings.Contains(heading, name) {
			return a.notFound(q, "no account for %s", q.Binomial())
		}
		return a.parseFailure("account for %s has no sections", q.Binomial())
	}

	return a.finish(q, fields["description"], res.FinalURL, slug, fields, "account has no physical description")
}
