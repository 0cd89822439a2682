package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/ppiankov/lepidex/internal/model"
)

var (
	wordPattern     = regexp.MustCompile(`^\p{L}[\p{L}-]*$`)
	subgenusPattern = regexp.MustCompile(`^\(\p{L}+\)$`)
)

// rankMarkers introduce an infraspecific epithet and are dropped
var rankMarkers = map[string]bool{
	"ssp.": true, "ssp": true, "subsp.": true, "subsp": true,
	"var.": true, "var": true, "f.": true, "forma": true,
}

// openMarkers mean "some species of the genus" and leave a uninomial
var openMarkers = map[string]bool{
	"sp.": true, "sp": true, "spp.": true, "spp": true,
}

// authorConnectors only appear inside an authorship string
var authorConnectors = map[string]bool{
	"&": true, "and": true, "et": true, "ex": true, "in": true,
}

// Normalize canonicalizes a species query. It never fails: names that cannot
// be parsed are kept verbatim as an opaque search term.
func Normalize(q model.SpeciesQuery) model.NormalizedQuery {
	scientific := Clean(q.ScientificName)
	common := Clean(q.CommonName)

	n := model.NormalizedQuery{
		Query: model.SpeciesQuery{ScientificName: scientific, CommonName: common},
		Rank:  model.RankNone,
	}

	if common != "" {
		n.Common = common
		n.CommonKey = Fold(common)
	}

	if scientific == "" {
		return n
	}

	// Casers are stateful; one per call keeps Normalize safe for concurrent use
	titler := cases.Title(language.Und)

	genus, epithet, infra, ok := parseScientific(scientific)
	switch {
	case !ok:
		n.Scientific = scientific
		n.Rank = model.RankOpaque
	case epithet == "":
		n.Genus = titler.String(genus)
		n.Scientific = n.Genus
		n.Rank = model.RankUninomial
	default:
		n.Genus = titler.String(genus)
		n.Epithet = strings.ToLower(epithet)
		n.Scientific = n.Genus + " " + n.Epithet
		n.Rank = model.RankSpecies
		if infra != "" {
			n.Infraspecific = strings.ToLower(infra)
			n.Scientific += " " + n.Infraspecific
			n.Rank = model.RankSubspecies
		}
	}
	n.ScientificKey = Fold(n.Scientific)

	return n
}

// Clean applies NFC normalization, trims and collapses internal whitespace
func Clean(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Fold returns the case-folded form of s for matching
func Fold(s string) string {
	return cases.Fold().String(Clean(s))
}

// parseScientific splits a cleaned name into genus, epithet and infraspecific
// epithet, dropping subgenus, rank markers and trailing authorship.
// ok is false when the name does not look like a Latin name at all.
func parseScientific(s string) (genus, epithet, infra string, ok bool) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 || !wordPattern.MatchString(tokens[0]) {
		return "", "", "", false
	}
	genus = tokens[0]
	allUpper := s == strings.ToUpper(s)

	expectInfra := false
	for i := 1; i < len(tokens); i++ {
		tok := tokens[i]
		lower := strings.ToLower(tok)

		switch {
		case i == 1 && subgenusPattern.MatchString(tok):
			continue
		case openMarkers[lower] && epithet == "":
			return genus, "", "", true
		case rankMarkers[lower] && epithet != "":
			expectInfra = true
			continue
		case isAuthorship(tok, !allUpper && epithet != ""):
			return genus, epithet, infra, !expectInfra
		case !wordPattern.MatchString(tok):
			return "", "", "", false
		case epithet == "":
			epithet = tok
		case infra == "":
			infra = tok
			expectInfra = false
		default:
			return "", "", "", false
		}
	}

	if expectInfra {
		return "", "", "", false
	}
	return genus, epithet, infra, true
}

// isAuthorship reports whether tok starts an author citation such as
// "(Linnaeus, 1758)" or "Denis & Schiffermüller". A leading capital only
// counts when caps is set.
func isAuthorship(tok string, caps bool) bool {
	if strings.HasPrefix(tok, "(") || strings.HasSuffix(tok, ",") || authorConnectors[strings.ToLower(tok)] {
		return true
	}
	if strings.ContainsAny(tok, "0123456789") {
		return true
	}
	if caps {
		r, _ := utf8.DecodeRuneInString(tok)
		return unicode.IsUpper(r)
	}
	return false
}
