package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/lepidex/internal/model"
)

const adwAccount = `<html><head><title>ADW: Attacus atlas: INFORMATION</title></head><body>
<h1><i>Attacus atlas</i> atlas moth</h1>
<div id="account">
<h3 id="geographic_range">Geographic Range</h3>
<p>Atlas moths are found in the forests of Southeast Asia.</p>
<h3 id="habitat">Habitat</h3>
<p>Tropical and subtropical forests.</p>
<h3 id="physical_description">Physical Description</h3>
<p>One of the largest moths, with a wingspan up to 25 cm.</p>
<ul class="keywords"><li>Other Physical Features</li></ul>
<p>The wings are reddish brown.</p>
<h3 id="reproduction">Reproduction</h3>
<p>Females lay eggs on leaves.</p>
</div></body></html>`

func TestADW_Success(t *testing.T) {
	srv := newFixtureServer(t, map[string]page{"/accounts/Attacus_atlas/": {body: adwAccount}})
	a := NewADWAdapter(testOptions(srv.URL))

	out := a.Lookup(context.Background(), query("Attacus atlas", ""), newFetcher(t))
	require.Equal(t, model.OutcomeSuccess, out.Kind, out.Summary())

	rec := out.Record
	assert.Equal(t, "One of the largest moths, with a wingspan up to 25 cm.\n\nThe wings are reddish brown.", rec.Text)
	assert.Equal(t, srv.URL+"/accounts/Attacus_atlas/", rec.SourceURL)
	assert.Equal(t, "Attacus_atlas", rec.Identifier)
	assert.Equal(t, []string{"description", "distribution", "habitat", "reproduction"}, rec.FieldNames())

	dist, _ := rec.Field("distribution")
	assert.Equal(t, "Atlas moths are found in the forests of Southeast Asia.", dist)
}

func TestADW_Genus(t *testing.T) {
	body := `<html><head><title>ADW: Attacus: INFORMATION</title></head><body>
<h3 id="physical_description">Physical Description</h3><p>Very large saturniid moths.</p>
</body></html>`
	srv := newFixtureServer(t, map[string]page{"/accounts/Attacus/": {body: body}})
	a := NewADWAdapter(testOptions(srv.URL))

	out := a.Lookup(context.Background(), query("Attacus", ""), newFetcher(t))
	require.Equal(t, model.OutcomeSuccess, out.Kind, out.Summary())
	assert.Equal(t, "Very large saturniid moths.", out.Record.Text)
}

func TestADW_Outcomes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		lenient bool
		want    model.OutcomeKind
	}{
		{"search page", `<html><head><title>ADW: Search</title></head><body><p>No results.</p></body></html>`, false, model.OutcomeNotFound},
		{"named page without sections", `<html><head><title>ADW: Attacus atlas: INFORMATION</title></head><body><p>Coming soon.</p></body></html>`, false, model.OutcomeParseFailure},
		{"no physical description", `<html><body><h3 id="habitat">Habitat</h3><p>Forests.</p></body></html>`, false, model.OutcomeParseFailure},
		{"no physical description lenient", `<html><body><h3 id="habitat">Habitat</h3><p>Forests.</p></body></html>`, true, model.OutcomeSuccess},
		{"empty physical description", `<html><body><h3 id="physical_description">Physical Description</h3><h3 id="habitat">Habitat</h3></body></html>`, false, model.OutcomeParseFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFixtureServer(t, map[string]page{"/accounts/Attacus_atlas/": {body: tt.body}})
			opts := testOptions(srv.URL)
			opts.Lenient = tt.lenient
			a := NewADWAdapter(opts)

			out := a.Lookup(context.Background(), query("Attacus atlas", ""), newFetcher(t))
			assert.Equal(t, tt.want, out.Kind, out.Summary())
		})
	}
}
