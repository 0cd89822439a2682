package model

import "sort"

// DescriptionRecord is a normalized description produced by exactly one adapter.
// Records are read-only once constructed; use NewDescriptionRecord.
type DescriptionRecord struct {
	Source        Source            `json:"source"`
	Query         SpeciesQuery      `json:"query"`
	Text          string            `json:"text"`                 // Assembled primary description
	SourceURL     string            `json:"source_url"`           // Page or API URL the text came from
	Identifier    string            `json:"identifier,omitempty"` // Resolved source key, if any
	FetchedFields map[string]string `json:"fetched_fields"`       // Named section -> text
}

// NewDescriptionRecord builds a record, copying fields so later changes to the
// caller's map do not leak into it. Empty field values are dropped.
func NewDescriptionRecord(src Source, q SpeciesQuery, text, sourceURL, identifier string, fields map[string]string) DescriptionRecord {
	copied := make(map[string]string, len(fields))
	for k, v := range fields {
		if v != "" {
			copied[k] = v
		}
	}

	return DescriptionRecord{
		Source:        src,
		Query:         q,
		Text:          text,
		SourceURL:     sourceURL,
		Identifier:    identifier,
		FetchedFields: copied,
	}
}

// Field returns a named section and whether it was extracted
func (r DescriptionRecord) Field(name string) (string, bool) {
	v, ok := r.FetchedFields[name]
	return v, ok
}

// FieldNames returns the extracted section names in sorted order
func (r DescriptionRecord) FieldNames() []string {
	names := make([]string, 0, len(r.FetchedFields))
	for k := range r.FetchedFields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Translation is an LLM rendering of a record's text in another language.
// It is stored next to a report, never inside the record it came from.
type Translation struct {
	Source   Source `json:"source"`
	Language string `json:"language"`
	Text     string `json:"text"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
}
