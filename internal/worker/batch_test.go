package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/lepidex/internal/model"
)

// mockQuerier implements Querier
type mockQuerier struct {
	shouldError bool
	calls       atomic.Int32
}

func (m *mockQuerier) Query(ctx context.Context, q model.SpeciesQuery, sources []model.Source) (*model.AggregateReport, error) {
	m.calls.Add(1)
	time.Sleep(5 * time.Millisecond) // Simulate work
	if m.shouldError {
		return nil, errors.New("query error")
	}
	entries := make([]model.ReportEntry, len(sources))
	for i, s := range sources {
		entries[i] = model.ReportEntry{Source: s, Outcome: model.NotFound(s, q, "")}
	}
	return &model.AggregateReport{Query: q, Entries: entries}, nil
}

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "species.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessQueries(t *testing.T) {
	querier := &mockQuerier{}
	sources := []model.Source{model.SourceWikipedia, model.SourceNRM}
	processor := NewBatchProcessor(querier, 2, sources)

	queries := []model.SpeciesQuery{
		{ScientificName: "Pieris brassicae"},
		{ScientificName: "Aglais io"},
		{ScientificName: "Vanessa atalanta"},
	}

	var done atomic.Int32
	processor.OnDone = func(*QueryResult) { done.Add(1) }

	results := processor.ProcessQueries(context.Background(), queries)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for i, res := range results {
		if res.Error != nil {
			t.Errorf("unexpected error for %s: %v", res.Query, res.Error)
			continue
		}
		if res.Query != queries[i] {
			t.Errorf("result %d is for %s, want %s", i, res.Query, queries[i])
		}
		if len(res.Report.Entries) != 2 {
			t.Errorf("expected 2 entries, got %d", len(res.Report.Entries))
		}
	}

	if done.Load() != 3 {
		t.Errorf("expected 3 progress callbacks, got %d", done.Load())
	}
}

func TestBatchProcessor_ProcessQueries_Error(t *testing.T) {
	processor := NewBatchProcessor(&mockQuerier{shouldError: true}, 2, nil)

	results := processor.ProcessQueries(context.Background(), []model.SpeciesQuery{{ScientificName: "Aglais io"}})

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].GetError() == nil {
		t.Error("expected error, got nil")
	}
	if results[0].Report != nil {
		t.Error("expected nil report on error")
	}
}

func TestBatchProcessor_ProcessQueries_Empty(t *testing.T) {
	processor := NewBatchProcessor(&mockQuerier{}, 2, nil)

	results := processor.ProcessQueries(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessQueries_Cancelled(t *testing.T) {
	querier := &mockQuerier{}
	processor := NewBatchProcessor(querier, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := processor.ProcessQueries(ctx, []model.SpeciesQuery{{ScientificName: "Aglais io"}, {CommonName: "Peacock"}})
	for _, r := range results {
		if !errors.Is(r.Error, context.Canceled) {
			t.Errorf("expected cancellation error, got %v", r.Error)
		}
	}
	if querier.calls.Load() != 0 {
		t.Errorf("expected no queries after cancellation, got %d", querier.calls.Load())
	}
}

func TestReadQueriesFromFile(t *testing.T) {
	path := writeTempFile(t, `Pieris brassicae
# comment
Aglais io; Peacock

;Large White
Vanessa	Red Admiral
pieris   BRASSICAE
`)

	queries, err := ReadQueriesFromFile(path)
	if err != nil {
		t.Fatalf("ReadQueriesFromFile failed: %v", err)
	}

	expected := []model.SpeciesQuery{
		{ScientificName: "Pieris brassicae"},
		{ScientificName: "Aglais io", CommonName: "Peacock"},
		{CommonName: "Large White"},
		{ScientificName: "Vanessa", CommonName: "Red Admiral"},
	}
	if len(queries) != len(expected) {
		t.Fatalf("expected %d queries, got %d: %v", len(expected), len(queries), queries)
	}

	for i, q := range queries {
		if q != expected[i] {
			t.Errorf("expected %v at index %d, got %v", expected[i], i, q)
		}
	}
}

func TestReadQueriesFromFile_NonExistent(t *testing.T) {
	_, err := ReadQueriesFromFile("non_existent_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeTempFile(t, "Pieris brassicae\nAglais io\n# comment\n\nVanessa atalanta\n")

	processor := NewBatchProcessor(&mockQuerier{}, 2, nil)

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}
}

func TestBatchProcessor_ProcessFile_NonExistent(t *testing.T) {
	processor := NewBatchProcessor(&mockQuerier{}, 2, nil)

	_, err := processor.ProcessFile(context.Background(), "no_such_file.txt")
	if err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestQueryResult_GetError(t *testing.T) {
	r1 := &QueryResult{Query: model.SpeciesQuery{ScientificName: "Aglais io"}}
	if r1.GetError() != nil {
		t.Errorf("expected nil error, got %v", r1.GetError())
	}

	expected := errors.New("query failed")
	r2 := &QueryResult{Error: expected}
	if r2.GetError() != expected {
		t.Errorf("expected %v, got %v", expected, r2.GetError())
	}
}
