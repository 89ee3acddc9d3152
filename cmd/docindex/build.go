package main

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/docsearch/documenter-mcp-server/internal/config"
	"github.com/docsearch/documenter-mcp-server/internal/indexing"
	"github.com/docsearch/documenter-mcp-server/internal/searchindex"
	"github.com/docsearch/documenter-mcp-server/tools"
)

func newBuildCmd() *cobra.Command {
	var baseURL, dataDir string

	cmd := &cobra.Command{
		Use:   "build <search_index.js> [index-dir]",
		Short: "Build a full-text index from a search index payload",
		Long: "Build a full-text index from a search index payload.\n\n" +
			"With --data-dir the payload is installed into a server data directory\n" +
			"and its index replaced, so the server picks it up on its next start.",
		Example: "  docindex build docs/build/search_index.js search/index\n" +
			"  docindex build --base-url https://example.org/dev/ search_index.js search/index\n" +
			"  docindex build --data-dir ~/.cache/documenter-mcp-server search_index.js",
		Args: func(cmd *cobra.Command, args []string) error {
			if dataDir != "" {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataDir != "" {
				return runInstall(args[0], dataDir, baseURL)
			}
			return runBuild(args[0], args[1], baseURL)
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", config.DefaultBaseURL, "documentation site root used to build result URLs")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "server data directory to install the payload and index into")
	return cmd
}

// parseValid reads a payload and rejects it when any record is malformed
func parseValid(payloadPath string) (*searchindex.Index, error) {
	log.Printf("Parsing search index: %s", payloadPath)
	idx, err := searchindex.ParseFile(payloadPath)
	if err != nil {
		return nil, err
	}
	if violations := idx.Validate(); len(violations) > 0 {
		for _, v := range violations {
			log.Printf("  %s", v)
		}
		return nil, fmt.Errorf("search index has %d violation(s)", len(violations))
	}
	return idx, nil
}

// runInstall rebuilds the index of a server data directory. It takes the
// index lock, so it fails while a server holds that directory.
func runInstall(payloadPath, dataDir, baseURL string) error {
	idx, err := parseValid(payloadPath)
	if err != nil {
		return err
	}

	cfg := config.Default()
	cfg.DataDir = dataDir
	cfg.BaseURL = baseURL

	docSearch, err := tools.NewDocSearch(cfg)
	if err != nil {
		return err
	}
	defer docSearch.Close()

	if err := docSearch.Rebuild(idx, "local"); err != nil {
		return err
	}

	log.Printf("✓ Installed %d records into %s", len(idx.Docs), docSearch.DataDir())
	return nil
}

func runBuild(payloadPath, indexDir, baseURL string) error {
	log.Printf("Documentation Indexer v%d", indexing.IndexSchemaVersion)
	log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

	idx, err := parseValid(payloadPath)
	if err != nil {
		return err
	}

	entries := indexing.BuildEntries(idx, baseURL)
	log.Printf("✓ Parsed %d records into %d entries (avg: %d tokens, %d split)",
		len(idx.Docs), len(entries), indexing.AverageTokens(entries), indexing.CountSplit(entries))

	log.Printf("Creating search index: %s", indexDir)
	if err := tools.BuildIndex(indexDir, entries); err != nil {
		return err
	}

	if err := tools.WriteIndexMeta(filepath.Dir(indexDir), idx); err != nil {
		log.Printf("Warning: Failed to write index metadata: %v", err)
	}

	log.Printf("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Printf("✓ Indexing complete!")
	log.Printf("  Location:      %s", indexDir)
	log.Printf("  Total entries: %d", len(entries))
	log.Printf("  Schema:        v%d", indexing.IndexSchemaVersion)
	return nil
}
