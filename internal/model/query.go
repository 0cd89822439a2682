package model

import (
	"errors"
	"strings"
)

// ErrEmptyQuery is returned when neither name field of a query is set
var ErrEmptyQuery = errors.New("species query needs a scientific or common name")

// SpeciesQuery is the caller's input for a lookup
type SpeciesQuery struct {
	ScientificName string `json:"scientific_name,omitempty"`
	CommonName     string `json:"common_name,omitempty"`
}

// Validate checks that at least one name is present
func (q SpeciesQuery) Validate() error {
	if strings.TrimSpace(q.ScientificName) == "" && strings.TrimSpace(q.CommonName) == "" {
		return ErrEmptyQuery
	}
	return nil
}

// String returns the best display name for the query
func (q SpeciesQuery) String() string {
	if q.ScientificName != "" {
		return q.ScientificName
	}
	return q.CommonName
}

// Rank describes how a scientific name was parsed
type Rank string

const (
	RankNone       Rank = "none"       // No scientific name supplied
	RankSpecies    Rank = "species"    // Genus + specific epithet
	RankSubspecies Rank = "subspecies" // Genus + epithet + infraspecific epithet
	RankUninomial  Rank = "uninomial"  // Single name: genus or higher taxon
	RankOpaque     Rank = "opaque"     // Unparseable, used verbatim as a search term
)

// NormalizedQuery is a species query after whitespace, case and structure
// canonicalization. It is a comparable value: equal inputs modulo whitespace
// produce == values.
type NormalizedQuery struct {
	Query SpeciesQuery `json:"query"` // Trimmed, whitespace-collapsed input

	Scientific    string `json:"scientific,omitempty"`     // Display form, e.g. "Pieris brassicae"
	ScientificKey string `json:"scientific_key,omitempty"` // Case-folded form for matching
	Common        string `json:"common,omitempty"`
	CommonKey     string `json:"common_key,omitempty"`

	Genus         string `json:"genus,omitempty"`
	Epithet       string `json:"epithet,omitempty"`
	Infraspecific string `json:"infraspecific,omitempty"`
	Rank          Rank   `json:"rank"`
}

// IsBinomial reports whether the name parsed as species or subspecies
func (n NormalizedQuery) IsBinomial() bool {
	return n.Rank == RankSpecies || n.Rank == RankSubspecies
}

// HasScientific reports whether a scientific name was supplied
func (n NormalizedQuery) HasScientific() bool {
	return n.Scientific != ""
}

// Binomial returns "Genus epithet" for parsed names, or the display name otherwise
func (n NormalizedQuery) Binomial() string {
	if n.IsBinomial() {
		return n.Genus + " " + n.Epithet
	}
	return n.Scientific
}

// Canonical returns the full canonical scientific name, including any
// infraspecific epithet
func (n NormalizedQuery) Canonical() string {
	if n.Rank == RankSubspecies {
		return n.Genus + " " + n.Epithet + " " + n.Infraspecific
	}
	return n.Binomial()
}

// SearchTerm returns the scientific name when present, else the common name
func (n NormalizedQuery) SearchTerm() string {
	if n.Scientific != "" {
		return n.Canonical()
	}
	return n.Common
}

// Key returns the case-folded search term
func (n NormalizedQuery) Key() string {
	if n.ScientificKey != "" {
		return n.ScientificKey
	}
	return n.CommonKey
}
