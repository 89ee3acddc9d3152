package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/docsearch/documenter-mcp-server/internal/searchindex"
)

func newExportCmd() *cobra.Command {
	var categories []string

	cmd := &cobra.Command{
		Use:   "export <search_index.js> <out.js>",
		Short: "Re-emit a payload in generator form, optionally keeping only some categories",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := searchindex.ParseFile(args[0])
			if err != nil {
				return err
			}

			keep := make([]searchindex.Category, 0, len(categories))
			for _, c := range categories {
				category, err := searchindex.ParseCategory(c)
				if err != nil {
					return err
				}
				keep = append(keep, category)
			}

			out := &searchindex.Index{Docs: idx.Filter(keep...)}
			if out.Docs == nil {
				out.Docs = []searchindex.Record{}
			}
			if err := searchindex.WriteFile(args[1], out); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d of %d records to %s\n", len(out.Docs), len(idx.Docs), args[1])
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&categories, "category", "c", nil, "keep only these categories")
	return cmd
}
