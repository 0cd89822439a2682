package cli

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/ppiankov/lepidex/internal/extract/adapters"
	"github.com/ppiankov/lepidex/internal/model"
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List sources and whether they can run",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cfg)
		if err != nil {
			return err
		}

		renderSources(os.Stdout, cfg, a.pipeline.Registry())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

// baseURLer is implemented by the built-in adapters
type baseURLer interface {
	BaseURL() string
}

func renderSources(w io.Writer, cfg *model.Config, registry *adapters.Registry) {
	runnable := make(map[model.Source]bool)
	for _, src := range registry.Runnable() {
		runnable[src] = true
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"ID", "Name", "Auth", "Status", "Base URL"})

	for _, src := range model.AllSources() {
		auth, status, base := "-", "disabled", ""

		if a, ok := registry.Get(src); ok {
			if a.RequiresAuth() {
				auth = "api key"
			}
			status = "ready"
			if !runnable[src] {
				status = "needs key"
			}
			if b, ok := a.(baseURLer); ok {
				base = b.BaseURL()
			}
		} else if !cfg.Source(src).Disabled {
			status = "unavailable"
		}

		t.AppendRow(table.Row{src, src.DisplayName(), auth, status, base})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}
