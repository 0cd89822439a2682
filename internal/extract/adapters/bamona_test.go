package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/lepidex/internal/model"
)

const bamonaSpecies = `<html><head><title>Papilio glaucus | Butterflies and Moths of North America</title></head><body>
<div class="panel-pane"><div class="pane-content">
<div class="views-field"><strong class="views-label">Wing Span: </strong><span class="field-content">7.9 - 14 cm</span></div>
<div class="views-field"><strong class="views-label">Identification:</strong><span class="field-content">Male yellow with
black tiger stripes.</span></div>
<div class="views-field"><strong class="views-label">Caterpillar Hosts:</strong><span class="field-content"></span></div>
<div class="views-field"><strong class="views-label">Adult Food:</strong><span class="field-content">Nectar of many flowers.</span></div>
</div></div>
</body></html>`

func TestBAMONA_Species(t *testing.T) {
	srv := newFixtureServer(t, map[string]page{"/species/Papilio-glaucus": {body: bamonaSpecies}})
	a := NewBAMONAAdapter(testOptions(srv.URL))

	out := a.Lookup(context.Background(), query("Papilio glaucus", ""), newFetcher(t))
	require.Equal(t, model.OutcomeSuccess, out.Kind, out.Summary())

	rec := out.Record
	assert.Equal(t, "Wing Span: 7.9 - 14 cm\nIdentification: Male yellow with black tiger stripes.\nAdult Food: Nectar of many flowers.", rec.Text)
	assert.Equal(t, srv.URL+"/species/Papilio-glaucus", rec.SourceURL)
	assert.Equal(t, []string{"adult_food", "identification", "wing_span"}, rec.FieldNames())

	span, _ := rec.Field("wing_span")
	assert.Equal(t, "7.9 - 14 cm", span)
}

func TestBAMONA_Taxonomy(t *testing.T) {
	body := `<html><head><title>Papilio | Butterflies and Moths of North America</title></head><body>
<div class="field field-name-body"><p>Swallowtails are large butterflies.</p><p>Most have tails.</p></div>
</body></html>`
	srv := newFixtureServer(t, map[string]page{"/taxonomy/Papilio": {body: body}})
	a := NewBAMONAAdapter(testOptions(srv.URL))

	out := a.Lookup(context.Background(), query("Papilio", ""), newFetcher(t))
	require.Equal(t, model.OutcomeSuccess, out.Kind, out.Summary())
	assert.Equal(t, "Swallowtails are large butterflies.\n\nMost have tails.", out.Record.Text)
	assert.Equal(t, []string{"description"}, out.Record.FieldNames())
}

func TestBAMONA_Outcomes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want model.OutcomeKind
	}{
		{"drupal not found", `<html><head><title>Page not found | Butterflies and Moths of North America</title></head><body><p>The requested page could not be found.</p></body></html>`, model.OutcomeNotFound},
		{"no pane", `<html><head><title>Papilio glaucus</title></head><body><p>Hello</p></body></html>`, model.OutcomeParseFailure},
		{"pane without pairs", `<html><head><title>Papilio glaucus</title></head><body><div class="pane-content"><div class="views-field"><span class="field-content">orphan</span></div></div></body></html>`, model.OutcomeParseFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newFixtureServer(t, map[string]page{"/species/Papilio-glaucus": {body: tt.body}})
			a := NewBAMONAAdapter(testOptions(srv.URL))

			out := a.Lookup(context.Background(), query("Papilio glaucus", ""), newFetcher(t))
			assert.Equal(t, tt.want, out.Kind, out.Summary())
		})
	}
}

func TestSnakeCase(t *testing.T) {
	assert.Equal(t, "wing_span", snakeCase("Wing Span"))
	assert.Equal(t, "caterpillar_hosts", snakeCase(" Caterpillar Hosts: "))
	assert.Equal(t, "flight_period_north", snakeCase("Flight Period (North)"))
	assert.Equal(t, "", snakeCase("--"))
}
