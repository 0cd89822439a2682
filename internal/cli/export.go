package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ppiankov/lepidex/internal/model"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
)

const previewRunes = 240

var csvHeader = []string{"taxon", "source", "outcome", "description", "desc_len", "url"}

func validFormat(f string) error {
	switch f {
	case formatTable, formatJSON, formatCSV:
		return nil
	}
	return fmt.Errorf("unknown format %q (supported: table, json, csv)", f)
}

// openOutput returns stdout for "" or "-", else a created file
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// csvRows flattens a report to one row per entry. Failures put their reason
// in the description column and a zero length.
func csvRows(report *model.AggregateReport) [][]string {
	taxon := report.Normalized.SearchTerm()
	rows := make([][]string, 0, len(report.Entries))
	for _, e := range report.Entries {
		description, url := e.Outcome.Reason, ""
		length := 0
		if e.Outcome.IsSuccess() {
			description = e.Outcome.Record.Text
			url = e.Outcome.Record.SourceURL
			length = utf8.RuneCountInString(description)
		}
		rows = append(rows, []string{
			taxon,
			string(e.Source),
			string(e.Outcome.Kind),
			description,
			strconv.Itoa(length),
			url,
		})
	}
	return rows
}

func writeCSV(w io.Writer, reports []*model.AggregateReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	for _, r := range reports {
		if err := cw.WriteAll(csvRows(r)); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// preview squashes whitespace and trims long text for terminal output
func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= previewRunes {
		return s
	}
	return text.Trim(s, previewRunes-1) + "…"
}

func renderTable(w io.Writer, report *model.AggregateReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(report.Normalized.SearchTerm())
	t.AppendHeader(table.Row{"Source", "Outcome", "Chars", "Description", "URL"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, WidthMax: 60},
		{Number: 5, WidthMax: 50},
	})

	for _, e := range report.Entries {
		out := e.Outcome
		if out.IsSuccess() {
			t.AppendRow(table.Row{
				e.Source.DisplayName(),
				out.Kind,
				utf8.RuneCountInString(out.Record.Text),
				preview(out.Record.Text),
				out.Record.SourceURL,
			})
			continue
		}

		detail := out.Reason
		if len(out.Suggestions) > 0 {
			detail += " (did you mean: " + strings.Join(out.Suggestions, ", ") + ")"
		}
		t.AppendRow(table.Row{e.Source.DisplayName(), out.Kind, 0, detail, ""})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()

	for _, tr := range report.Translations {
		fmt.Fprintf(w, "\n%s (%s, %s/%s):\n%s\n", tr.Source.DisplayName(), tr.Language, tr.Provider, tr.Model, tr.Text)
	}
}

// renderBatchTable prints one summary row per query
func renderBatchTable(w io.Writer, entries []batchEntry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Taxon", "Found", "Not found", "Failed", "Sources"})

	for _, e := range entries {
		if e.Error != "" {
			t.AppendRow(table.Row{e.Query.String(), "-", "-", "-", "error: " + e.Error})
			continue
		}
		counts := e.Report.Counts()
		failed := len(e.Report.Entries) - counts[model.OutcomeSuccess] - counts[model.OutcomeNotFound]

		var found []string
		for _, entry := range e.Report.Entries {
			if entry.Outcome.IsSuccess() {
				found = append(found, string(entry.Source))
			}
		}
		t.AppendRow(table.Row{
			e.Report.Normalized.SearchTerm(),
			counts[model.OutcomeSuccess],
			counts[model.OutcomeNotFound],
			failed,
			strings.Join(found, ", "),
		})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
