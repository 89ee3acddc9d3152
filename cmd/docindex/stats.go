package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/docsearch/documenter-mcp-server/internal/searchindex"
	"github.com/docsearch/documenter-mcp-server/tools"
)

type statsReport struct {
	Records    int                     `json:"records" yaml:"records"`
	ByCategory map[string]int          `json:"by_category" yaml:"by_category"`
	Pages      []searchindex.PageStats `json:"pages" yaml:"pages"`
	Modules    []moduleSummary         `json:"modules,omitempty" yaml:"modules,omitempty"`
}

type moduleSummary struct {
	Module  string `json:"module" yaml:"module"`
	Symbols int    `json:"symbols" yaml:"symbols"`
}

func newStatsCmd() *cobra.Command {
	var (
		modules bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "stats <search_index.js>",
		Short: "Count records per category and page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkOutput(output); err != nil {
				return err
			}

			idx, err := searchindex.ParseFile(args[0])
			if err != nil {
				return err
			}
			stats := idx.Stats()

			report := statsReport{
				Records:    stats.Total,
				ByCategory: make(map[string]int, len(stats.ByCategory)),
				Pages:      stats.Pages,
			}
			for c, n := range stats.ByCategory {
				report.ByCategory[string(c)] = n
			}
			if modules {
				for _, m := range tools.BuildCatalog(idx) {
					report.Modules = append(report.Modules, moduleSummary{Module: m.Module, Symbols: len(m.Symbols)})
				}
			}

			if output != outputText {
				return writeStructured(cmd.OutOrStdout(), output, report)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "records\t%d\n\n", report.Records)
			for _, c := range searchindex.Categories() {
				fmt.Fprintf(w, "%s\t%d\n", c, report.ByCategory[string(c)])
			}
			fmt.Fprintln(w)
			for _, p := range report.Pages {
				fmt.Fprintf(w, "%s\t%d\n", p.Page, p.Count)
			}
			if modules {
				fmt.Fprintln(w)
				for _, m := range report.Modules {
					fmt.Fprintf(w, "%s\t%d symbols\n", m.Module, m.Symbols)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&modules, "modules", false, "also list documented modules")
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "report format: text, json or yaml")
	return cmd
}
