// Live check that every source still answers with the page shape its adapter
// expects. Run it by hand; it talks to the real sites.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/lepidex/internal/model"
	"github.com/ppiankov/lepidex/internal/pipeline"
	"github.com/ppiankov/lepidex/internal/secrets"
)

func main() {
	fmt.Println("=== Source Smoke Check ===")
	fmt.Println()

	species := []model.SpeciesQuery{
		{ScientificName: "Pieris brassicae", CommonName: "large white"},
		{ScientificName: "Papilio glaucus"},
		{ScientificName: "Nonexistus fakeus"},
	}

	cfg := model.DefaultConfig()
	cfg.Concurrency.Deadline = time.Minute

	sec, err := secrets.Load(cfg.Secrets.File)
	if err != nil {
		fmt.Printf("Secrets error: %v\n", err)
		os.Exit(1)
	}

	p, err := pipeline.NewPipeline(cfg, sec.ArtfaktaAPIKey, nil)
	if err != nil {
		fmt.Printf("Pipeline error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	broken := 0
	for _, q := range species {
		fmt.Printf("Testing: %s\n", q.String())
		fmt.Println(strings.Repeat("-", 60))

		report, err := p.Query(ctx, q, model.AllSources())
		if err != nil {
			fmt.Printf("  Query error: %v\n\n", err)
			broken++
			continue
		}

		for _, e := range report.Entries {
			mark := "✓"
			if e.Outcome.Kind == model.OutcomeParseFailure {
				mark = "⚠️ "
				broken++
			}
			fmt.Printf("  %s %-20s %s\n", mark, e.Source.DisplayName(), e.Outcome.Summary())
		}
		fmt.Println()
	}

	if broken > 0 {
		fmt.Printf("%d lookups did not match their adapter\n", broken)
		os.Exit(1)
	}
	fmt.Println("=== Smoke Check Complete ===")
}
