package model

import "time"

// AggregateReport is the ordered collection of per-source outcomes for one query.
// Entries follow the caller's requested source order; nothing is merged.
type AggregateReport struct {
	ID          string          `json:"id"`           // ULID, for correlating exports
	Query       SpeciesQuery    `json:"query"`        // Query as given by the caller
	Normalized  NormalizedQuery `json:"normalized"`   // Query as dispatched to adapters
	GeneratedAt time.Time       `json:"generated_at"` // When the aggregation finished
	Entries     []ReportEntry   `json:"entries"`

	Translations []Translation `json:"translations,omitempty"` // Optional, added by callers
}

// ReportEntry pairs a requested source with its outcome
type ReportEntry struct {
	Source  Source  `json:"source"`
	Outcome Outcome `json:"outcome"`
}

// Sources returns the sources of the report in entry order
func (r *AggregateReport) Sources() []Source {
	sources := make([]Source, len(r.Entries))
	for i, e := range r.Entries {
		sources[i] = e.Source
	}
	return sources
}

// Outcome returns the outcome for a source, if it was requested
func (r *AggregateReport) Outcome(src Source) (Outcome, bool) {
	for _, e := range r.Entries {
		if e.Source == src {
			return e.Outcome, true
		}
	}
	return Outcome{}, false
}

// Successes returns the records of all successful entries, in entry order
func (r *AggregateReport) Successes() []DescriptionRecord {
	var records []DescriptionRecord
	for _, e := range r.Entries {
		if e.Outcome.IsSuccess() {
			records = append(records, *e.Outcome.Record)
		}
	}
	return records
}

// Counts tallies entries by outcome kind
func (r *AggregateReport) Counts() map[OutcomeKind]int {
	counts := make(map[OutcomeKind]int)
	for _, e := range r.Entries {
		counts[e.Outcome.Kind]++
	}
	return counts
}
