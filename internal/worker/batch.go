package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/lepidex/internal/model"
)

// Querier runs one species query against a set of sources
type Querier interface {
	Query(ctx context.Context, q model.SpeciesQuery, sources []model.Source) (*model.AggregateReport, error)
}

// QueryJob represents one species lookup in a batch
type QueryJob struct {
	Query   model.SpeciesQuery
	Sources []model.Source
	Querier Querier
}

// Execute executes the query job
func (j *QueryJob) Execute(ctx context.Context) Result {
	report, err := j.Querier.Query(ctx, j.Query, j.Sources)
	if err != nil {
		return &QueryResult{Query: j.Query, Error: err}
	}
	return &QueryResult{Query: j.Query, Report: report}
}

// QueryResult represents the result of a query job
type QueryResult struct {
	Query  model.SpeciesQuery
	Report *model.AggregateReport
	Error  error
}

// GetError returns the error from the query result
func (r *QueryResult) GetError() error {
	return r.Error
}

// BatchProcessor processes many species queries concurrently
type BatchProcessor struct {
	querier     Querier
	concurrency int
	sources     []model.Source

	// OnDone, if set, is called after each query completes
	OnDone func(result *QueryResult)
}

// NewBatchProcessor creates a new batch processor. A nil sources slice lets
// the querier pick its default set.
func NewBatchProcessor(querier Querier, concurrency int, sources []model.Source) *BatchProcessor {
	return &BatchProcessor{
		querier:     querier,
		concurrency: concurrency,
		sources:     sources,
	}
}

// ProcessQueries runs every query and returns results in input order.
// Queries skipped because ctx ended carry ctx's error.
func (b *BatchProcessor) ProcessQueries(ctx context.Context, queries []model.SpeciesQuery) []*QueryResult {
	if len(queries) == 0 {
		return []*QueryResult{}
	}

	jobs := make([]Job, len(queries))
	for i, q := range queries {
		jobs[i] = &QueryJob{Query: q, Sources: b.sources, Querier: b.querier}
	}

	pool := NewPool(b.concurrency)
	if b.OnDone != nil {
		pool.OnResult = func(_ int, r Result) {
			b.OnDone(r.(*QueryResult))
		}
	}

	results := pool.Run(ctx, jobs)

	out := make([]*QueryResult, len(results))
	for i, r := range results {
		if r == nil {
			out[i] = &QueryResult{Query: queries[i], Error: fmt.Errorf("skipped: %w", ctx.Err())}
			continue
		}
		out[i] = r.(*QueryResult)
	}
	return out
}

// ProcessFile reads queries from a file and processes them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*QueryResult, error) {
	queries, err := ReadQueriesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read queries: %w", err)
	}

	return b.ProcessQueries(ctx, queries), nil
}

// ReadQueriesFromFile reads species queries, one per line. A line is a
// scientific name optionally followed by ";" or a tab and a common name;
// a line starting with ";" carries only a common name.
// Blank lines and "#" comments are skipped; duplicates are dropped.
func ReadQueriesFromFile(filePath string) ([]model.SpeciesQuery, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var queries []model.SpeciesQuery
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		q := parseQueryLine(line)
		if q.Validate() != nil {
			continue
		}

		key := strings.ToLower(strings.Join(strings.Fields(q.ScientificName), " ") + "|" +
			strings.Join(strings.Fields(q.CommonName), " "))
		if !seen[key] {
			seen[key] = true
			queries = append(queries, q)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return queries, nil
}

func parseQueryLine(line string) model.SpeciesQuery {
	sep := strings.IndexAny(line, ";\t")
	if sep < 0 {
		return model.SpeciesQuery{ScientificName: line}
	}
	return model.SpeciesQuery{
		ScientificName: strings.TrimSpace(line[:sep]),
		CommonName:     strings.TrimSpace(line[sep+1:]),
	}
}
