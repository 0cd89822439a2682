package normalize

import (
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/lepidex/internal/model"
)

// Slug returns the path component a source uses to address the query.
// ok is false when the source cannot address this kind of query, so no
// request should be made.
func Slug(n model.NormalizedQuery, src model.Source) (string, bool) {
	switch src {
	case model.SourceWikipedia:
		return WikipediaTitle(n.SearchTerm())

	case model.SourceUKMoths:
		// ukmoths.org.uk/species/pieris-brassicae/
		if !n.IsBinomial() {
			return "", false
		}
		return strings.ToLower(strings.ReplaceAll(n.Canonical(), " ", "-")), true

	case model.SourceNRM:
		// www2.nrm.se/en/svenska_fjarilar/p/pieris_brassicae.html
		if !n.IsBinomial() {
			return "", false
		}
		name := strings.ToLower(strings.ReplaceAll(n.Binomial(), " ", "_"))
		initial, _ := utf8.DecodeRuneInString(name)
		return string(initial) + "/" + name + ".html", true

	case model.SourceAnimalDiversityWeb:
		// animaldiversity.org/accounts/Pieris_brassicae/
		if !n.IsBinomial() && n.Rank != model.RankUninomial {
			return "", false
		}
		return url.PathEscape(strings.ReplaceAll(n.Binomial(), " ", "_")), true

	case model.SourceButterfliesAndMoths:
		// butterfliesandmoths.org/species/Papilio-glaucus or /taxonomy/Papilio
		switch {
		case n.IsBinomial():
			return "species/" + url.PathEscape(strings.ReplaceAll(n.Binomial(), " ", "-")), true
		case n.Rank == model.RankUninomial:
			return "taxonomy/" + url.PathEscape(n.Genus), true
		}
		return "", false
	}

	return "", false
}

// WikipediaTitle turns a name into an article path segment
func WikipediaTitle(name string) (string, bool) {
	name = Clean(name)
	if name == "" {
		return "", false
	}
	// First letter of a title is case-insensitive on Wikipedia; canonical form is upper
	r := []rune(name)
	r[0] = []rune(strings.ToUpper(string(r[0])))[0]
	return url.PathEscape(strings.ReplaceAll(string(r), " ", "_")), true
}
