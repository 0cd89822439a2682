package model

import "fmt"

// OutcomeKind tags the variant held by an Outcome
type OutcomeKind string

const (
	OutcomeSuccess          OutcomeKind = "success"
	OutcomeNotFound         OutcomeKind = "not_found"         // Species absent from source
	OutcomeAuthRequired     OutcomeKind = "auth_required"     // Missing or rejected credential
	OutcomeTransientFailure OutcomeKind = "transient_failure" // Network, timeout, server error
	OutcomeParseFailure     OutcomeKind = "parse_failure"     // Page shape did not match the adapter
)

// Outcome is the result of one adapter invocation. Exactly one variant is set:
// Record for success, Query for not found, Reason for the failure kinds.
type Outcome struct {
	Kind        OutcomeKind        `json:"kind"`
	Source      Source             `json:"source"`
	Record      *DescriptionRecord `json:"record,omitempty"`
	Query       *SpeciesQuery      `json:"query,omitempty"`
	Reason      string             `json:"reason,omitempty"`
	Suggestions []string           `json:"suggestions,omitempty"` // Near matches when not found
}

// Success wraps a record
func Success(rec DescriptionRecord) Outcome {
	return Outcome{Kind: OutcomeSuccess, Source: rec.Source, Record: &rec}
}

// NotFound reports that the source has no entry for the query
func NotFound(src Source, q SpeciesQuery, reason string) Outcome {
	return Outcome{Kind: OutcomeNotFound, Source: src, Query: &q, Reason: reason}
}

// AuthRequired reports that the source needs a credential that is missing or was rejected
func AuthRequired(src Source, reason string) Outcome {
	return Outcome{Kind: OutcomeAuthRequired, Source: src, Reason: reason}
}

// TransientFailure reports a network, timeout or server failure the caller may retry
func TransientFailure(src Source, reason string) Outcome {
	return Outcome{Kind: OutcomeTransientFailure, Source: src, Reason: reason}
}

// ParseFailure reports that the page loaded but did not have the expected shape
func ParseFailure(src Source, reason string) Outcome {
	return Outcome{Kind: OutcomeParseFailure, Source: src, Reason: reason}
}

// WithSuggestions returns a copy of o carrying near-match suggestions
func (o Outcome) WithSuggestions(s []string) Outcome {
	o.Suggestions = append([]string(nil), s...)
	return o
}

// IsSuccess reports whether the outcome holds a record
func (o Outcome) IsSuccess() bool {
	return o.Kind == OutcomeSuccess && o.Record != nil
}

// Summary returns a one-line description for logs and tables
func (o Outcome) Summary() string {
	switch o.Kind {
	case OutcomeSuccess:
		if o.Record == nil {
			return "success"
		}
		return fmt.Sprintf("success (%d chars, %d fields)", len(o.Record.Text), len(o.Record.FetchedFields))
	case OutcomeNotFound:
		if o.Reason != "" {
			return "not found: " + o.Reason
		}
		return "not found"
	default:
		if o.Reason != "" {
			return string(o.Kind) + ": " + o.Reason
		}
		return string(o.Kind)
	}
}
