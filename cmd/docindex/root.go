package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/docsearch/documenter-mcp-server/internal/indexing"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docindex",
		Short:         "Build, validate and query documentation search indexes",
		Long:          "docindex works on the search_index.js payload a documentation site ships to its search box,\nand on the full-text index built from it (schema v" + strconv.Itoa(indexing.IndexSchemaVersion) + ").",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newBuildCmd(),
		newValidateCmd(),
		newStatsCmd(),
		newSearchCmd(),
		newExportCmd(),
	)
	return root
}
