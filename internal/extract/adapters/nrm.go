package adapters

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/lepidex/internal/extract"
	"github.com/ppiankov/lepidex/internal/model"
	"github.com/ppiankov/lepidex/internal/normalize"
)

// nrmEnd marks the external links footer of a species page
const nrmEnd = "Mer om denna art på"

// nrmLabels maps the Swedish section labels to field names
var nrmLabels = []struct {
	label string
	field string
}{
	{"Kännetecken:", "identification"},
	{"Utbredning:", "distribution"},
	{"Biologi:", "biology"},
	{"Levnadssätt:", "biology"},
	{"Flygtid:", "flight_period"},
	{"Habitat:", "habitat"},
	{"Biotop:", "habitat"},
	{"Värdväxter:", "host_plants"},
	{"Näringsväxter:", "host_plants"},
}

// NRMAdapter extracts species pages from Naturhistoriska riksmuseet's
// Svenska fjärilar
type NRMAdapter struct {
	BaseAdapter
}

// NewNRMAdapter creates an NRM adapter
func NewNRMAdapter(opts Options) *NRMAdapter {
	return &NRMAdapter{
		BaseAdapter: newBaseAdapter(model.SourceNRM, "http://www2.nrm.se/en/svenska_fjarilar/", opts),
	}
}

// Lookup fetches /{g}/{genus_epithet}.html. Only binomials are addressable.
func (a *NRMAdapter) Lookup(ctx context.Context, q model.NormalizedQuery, f Fetcher) (out model.Outcome) {
	defer recoverOutcome(ctx, a.source, &out)

	slug, ok := normalize.Slug(q, a.source)
	if !ok {
		return a.notFound(q, "nrm only lists species by binomial name")
	}

	res, doc, err := a.get(ctx, f, a.url(slug))
	if err != nil {
		return a.failure(q, err)
	}

	cell := doc.Find("td").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return strings.EqualFold(s.AttrOr("valign", ""), "top") &&
			strings.EqualFold(s.AttrOr("align", ""), "left")
	}).First()
	if cell.Length() == 0 {
		return a.parseFailure("no content cell at %s", res.FinalURL)
	}

	lines := extract.Lines(cell)
	fields := nrmFields(lines)

	text := fields["identification"]
	if text == "" {
		text = nrmFallback(lines)
	}

	return a.finish(q, text, res.FinalURL, slug, fields, "species text is empty")
}

// nrmFields collects the text after each known label up to the next label
func nrmFields(lines []string) map[string]string {
	fields := make(map[string]string)
	current := ""

	for _, line := range lines {
		if strings.HasPrefix(line, nrmEnd) {
			break
		}

		if field, rest, ok := nrmLabel(line); ok {
			current = field
			line = rest
		}
		if current == "" || line == "" {
			continue
		}

		if fields[current] != "" {
			fields[current] += "\n"
		}
		fields[current] += line
	}

	return fields
}

// nrmLabel splits a line that starts with a section label
func nrmLabel(line string) (field, rest string, ok bool) {
	for _, l := range nrmLabels {
		if strings.HasPrefix(line, l.label) {
			return l.field, strings.TrimSpace(strings.TrimPrefix(line, l.label)), true
		}
	}
	return "", "", false
}

// nrmFallback returns the lines from the first "Name (Author)" line up to
// the external links footer
func nrmFallback(lines []string) string {
	var out []string
	started := false
	for _, line := range lines {
		if !started && strings.Contains(line, "(") && strings.Contains(line, ")") {
			started = true
		}
		if !started {
			continue
		}
		if strings.Contains(line, nrmEnd) {
			break
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
