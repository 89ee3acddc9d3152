package main

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/spf13/cobra"

	"github.com/docsearch/documenter-mcp-server/internal/config"
	"github.com/docsearch/documenter-mcp-server/internal/indexing"
	"github.com/docsearch/documenter-mcp-server/internal/searchindex"
	"github.com/docsearch/documenter-mcp-server/tools"
)

func newSearchCmd() *cobra.Command {
	var (
		categories []string
		page       string
		module     string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search <index-dir> <query...>",
		Short: "Query a built full-text index",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := tools.SearchRequest{
				Query:      strings.Join(args[1:], " "),
				Page:       page,
				Module:     module,
				MaxResults: min(limit, config.MaxResultsLimit),
			}
			for _, c := range categories {
				category, err := searchindex.ParseCategory(c)
				if err != nil {
					return err
				}
				req.Categories = append(req.Categories, category)
			}

			index, err := bleve.OpenUsing(args[0], map[string]interface{}{"read_only": true})
			if err != nil {
				return fmt.Errorf("failed to open index: %w", err)
			}
			defer index.Close()

			resp, err := tools.SearchIndex(cmd.Context(), index, req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d hit(s)\n", resp.TotalHits)
			for _, r := range resp.Results {
				fmt.Fprintf(out, "\n%.3f  [%s] %s\n", r.Score, r.Entry.Category, r.Entry.Breadcrumb)
				if r.Entry.URL != "" {
					fmt.Fprintf(out, "       %s\n", r.Entry.URL)
				}
				if preview := firstLine(r.Entry.Text); preview != "" {
					fmt.Fprintf(out, "       %s\n", preview)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&categories, "category", "c", nil, "restrict to categories (section, type, method, function, page)")
	cmd.Flags().StringVar(&page, "page", "", "restrict to a page title")
	cmd.Flags().StringVar(&module, "module", "", "restrict to a module path")
	cmd.Flags().IntVarP(&limit, "limit", "n", config.DefaultMaxResults, "maximum number of results")
	return cmd
}

func firstLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	if len(line) > 100 {
		line = indexing.CutAtRune(line, 100) + "..."
	}
	return line
}
