package normalize

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/lepidex/internal/model"
)

func TestNormalize_WhitespaceInsensitive(t *testing.T) {
	a := Normalize(model.SpeciesQuery{ScientificName: "  Pieris   brassicae "})
	b := Normalize(model.SpeciesQuery{ScientificName: "Pieris brassicae"})

	assert.Equal(t, b, a)
	assert.True(t, a == b)
	assert.Equal(t, "Pieris brassicae", a.Scientific)
	assert.Equal(t, "Pieris brassicae", a.Query.ScientificName)
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []model.SpeciesQuery{
		{ScientificName: "pieris BRASSICAE (Linnaeus, 1758)"},
		{ScientificName: "Parnassius apollo ssp. nevadensis", CommonName: " Apollo "},
		{CommonName: "Large   White"},
		{ScientificName: "???"},
	}
	for _, q := range inputs {
		once := Normalize(q)
		twice := Normalize(once.Query)
		assert.Equal(t, once, twice, q)
	}
}

func TestNormalize_Parsing(t *testing.T) {
	tests := []struct {
		in        string
		canonical string
		genus     string
		epithet   string
		infra     string
		rank      model.Rank
	}{
		{"Pieris brassicae", "Pieris brassicae", "Pieris", "brassicae", "", model.RankSpecies},
		{"PIERIS BRASSICAE", "Pieris brassicae", "Pieris", "brassicae", "", model.RankSpecies},
		{"pieris brassicae", "Pieris brassicae", "Pieris", "brassicae", "", model.RankSpecies},
		{"Pieris brassicae (Linnaeus, 1758)", "Pieris brassicae", "Pieris", "brassicae", "", model.RankSpecies},
		{"Pieris brassicae Linnaeus, 1758", "Pieris brassicae", "Pieris", "brassicae", "", model.RankSpecies},
		{"Pieris brassicae L.", "Pieris brassicae", "Pieris", "brassicae", "", model.RankSpecies},
		{"Agrotis (Agrotis) segetum", "Agrotis segetum", "Agrotis", "segetum", "", model.RankSpecies},
		{"Zygaena filipendulae", "Zygaena filipendulae", "Zygaena", "filipendulae", "", model.RankSpecies},
		{"Parnassius apollo nevadensis", "Parnassius apollo nevadensis", "Parnassius", "apollo", "nevadensis", model.RankSubspecies},
		{"Parnassius apollo ssp. nevadensis", "Parnassius apollo nevadensis", "Parnassius", "apollo", "nevadensis", model.RankSubspecies},
		{"Parnassius apollo subsp. nevadensis Oberthür, 1891", "Parnassius apollo nevadensis", "Parnassius", "apollo", "nevadensis", model.RankSubspecies},
		{"Pieris", "Pieris", "Pieris", "", "", model.RankUninomial},
		{"NYMPHALIDAE", "Nymphalidae", "Nymphalidae", "", "", model.RankUninomial},
		{"Pieris sp.", "Pieris", "Pieris", "", "", model.RankUninomial},
		{"Pieris Schrank, 1801", "Pieris", "Pieris", "", "", model.RankUninomial},
		{"Pieris brassicae?", "Pieris brassicae?", "", "", "", model.RankOpaque},
		{"12345", "12345", "", "", "", model.RankOpaque},
		{"Parnassius apollo ssp.", "Parnassius apollo ssp.", "", "", "", model.RankOpaque},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n := Normalize(model.SpeciesQuery{ScientificName: tt.in})
			assert.Equal(t, tt.rank, n.Rank)
			assert.Equal(t, tt.canonical, n.Canonical())
			assert.Equal(t, tt.genus, n.Genus)
			assert.Equal(t, tt.epithet, n.Epithet)
			assert.Equal(t, tt.infra, n.Infraspecific)
		})
	}
}

func TestNormalize_Accessors(t *testing.T) {
	n := Normalize(model.SpeciesQuery{ScientificName: "Parnassius apollo nevadensis", CommonName: "Apollo"})

	assert.True(t, n.IsBinomial())
	assert.Equal(t, "Parnassius apollo", n.Binomial())
	assert.Equal(t, "Parnassius apollo nevadensis", n.SearchTerm())
	assert.Equal(t, "parnassius apollo nevadensis", n.Key())
	assert.Equal(t, "apollo", n.CommonKey)
}

func TestNormalize_CommonOnly(t *testing.T) {
	n := Normalize(model.SpeciesQuery{CommonName: "  Large  White "})

	assert.Equal(t, model.RankNone, n.Rank)
	assert.False(t, n.HasScientific())
	assert.Equal(t, "Large White", n.SearchTerm())
	assert.Equal(t, "large white", n.Key())
}

func TestNormalize_UnicodeForms(t *testing.T) {
	precomposed := Normalize(model.SpeciesQuery{CommonName: "K\u00e5lfj\u00e4ril"})
	decomposed := Normalize(model.SpeciesQuery{CommonName: "Ka\u030alfja\u0308ril"})
	assert.Equal(t, precomposed, decomposed)
	assert.Equal(t, "kålfjäril", decomposed.CommonKey)
}

func TestSlug(t *testing.T) {
	species := Normalize(model.SpeciesQuery{ScientificName: "Pieris brassicae"})
	genus := Normalize(model.SpeciesQuery{ScientificName: "Papilio"})
	common := Normalize(model.SpeciesQuery{CommonName: "large white"})
	accented := Normalize(model.SpeciesQuery{ScientificName: "\u00c4ngsmal fj\u00e4rilus"})

	tests := []struct {
		name string
		q    model.NormalizedQuery
		src  model.Source
		want string
		ok   bool
	}{
		{"wikipedia species", species, model.SourceWikipedia, "Pieris_brassicae", true},
		{"wikipedia common", common, model.SourceWikipedia, "Large_white", true},
		{"ukmoths", species, model.SourceUKMoths, "pieris-brassicae", true},
		{"ukmoths genus", genus, model.SourceUKMoths, "", false},
		{"nrm", species, model.SourceNRM, "p/pieris_brassicae.html", true},
		{"nrm common", common, model.SourceNRM, "", false},
		{"nrm non-ascii initial", accented, model.SourceNRM, "\u00e4/\u00e4ngsmal_fj\u00e4rilus.html", true},
		{"adw", species, model.SourceAnimalDiversityWeb, "Pieris_brassicae", true},
		{"adw genus", genus, model.SourceAnimalDiversityWeb, "Papilio", true},
		{"bamona species", species, model.SourceButterfliesAndMoths, "species/Pieris-brassicae", true},
		{"bamona genus", genus, model.SourceButterfliesAndMoths, "taxonomy/Papilio", true},
		{"bamona common", common, model.SourceButterfliesAndMoths, "", false},
		{"artfakta has no slug", species, model.SourceArtfakta, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Slug(tt.q, tt.src)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
