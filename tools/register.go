package tools

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/docsearch/documenter-mcp-server/internal/searchindex"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// SearchDocumentationInput defines input for search_documentation tool
type SearchDocumentationInput struct {
	Query      string   `json:"query" jsonschema:"Search query for documentation"`
	Categories []string `json:"categories,omitempty" jsonschema:"Restrict to categories: section, type, method, function, page (optional)"`
	Page       string   `json:"page,omitempty" jsonschema:"Restrict to a page title (optional)"`
	Module     string   `json:"module,omitempty" jsonschema:"Restrict to a module path such as StructuredDecompositions.Decompositions (optional)"`
	MaxResults int      `json:"max_results,omitempty" jsonschema:"Maximum number of results (optional, defaults to 10, max 50)"`
}

// SearchDocumentationOutput defines output for search_documentation tool
type SearchDocumentationOutput struct {
	Results   []SearchResult `json:"results"`
	Query     string         `json:"query"`
	TotalHits int            `json:"total_hits"`
}

// LookupLocationInput defines input for lookup_location tool
type LookupLocationInput struct {
	Location string `json:"location" jsonschema:"Exact record location, e.g. api/#StructuredDecompositions.Decompositions.bags-Tuple{Any}"`
}

// LookupLocationOutput defines output for lookup_location tool
type LookupLocationOutput struct {
	Location string          `json:"location"`
	Matches  []LocationMatch `json:"matches"`
}

// ListModulesInput defines input for list_modules tool
type ListModulesInput struct {
	Module string `json:"module,omitempty" jsonschema:"Only return this module (optional)"`
}

// ListModulesOutput defines output for list_modules tool
type ListModulesOutput struct {
	Modules []ModuleInfo `json:"modules"`
	Total   int          `json:"total"`
}

// IndexStatsInput defines input for index_stats tool
type IndexStatsInput struct{}

// IndexStatsOutput defines output for index_stats tool
type IndexStatsOutput struct {
	Records    int                     `json:"records"`
	ByCategory map[string]int          `json:"by_category"`
	Pages      []searchindex.PageStats `json:"pages"`
	Index      IndexInfo               `json:"index"`
}

// RefreshDocumentationIndexInput defines input for refresh_documentation_index tool
type RefreshDocumentationIndexInput struct {
	Force bool `json:"force,omitempty" jsonschema:"Force re-download and re-indexing (optional, defaults to false)"`
}

// RefreshDocumentationIndexOutput defines output for refresh_documentation_index tool
type RefreshDocumentationIndexOutput struct {
	Updated        bool      `json:"updated"`
	LastUpdate     time.Time `json:"last_update"`
	EntriesIndexed int       `json:"entries_indexed"`
	Message        string    `json:"message"`
}

// SearchDocumentation searches the documentation index
func (d *DocSearch) SearchDocumentation(ctx context.Context, req *mcp.CallToolRequest, input SearchDocumentationInput) (*mcp.CallToolResult, SearchDocumentationOutput, error) {
	categories := make([]searchindex.Category, 0, len(input.Categories))
	for _, c := range input.Categories {
		category, err := searchindex.ParseCategory(c)
		if err != nil {
			return nil, SearchDocumentationOutput{}, err
		}
		categories = append(categories, category)
	}

	resp, err := d.Search(ctx, SearchRequest{
		Query:      input.Query,
		Categories: categories,
		Page:       input.Page,
		Module:     input.Module,
		MaxResults: input.MaxResults,
	})
	if err != nil {
		return nil, SearchDocumentationOutput{}, err
	}

	return nil, SearchDocumentationOutput{
		Results:   resp.Results,
		Query:     input.Query,
		TotalHits: resp.TotalHits,
	}, nil
}

// LookupLocation returns the records stored at a location
func (d *DocSearch) LookupLocation(ctx context.Context, req *mcp.CallToolRequest, input LookupLocationInput) (*mcp.CallToolResult, LookupLocationOutput, error) {
	matches, err := d.Lookup(input.Location)
	if err != nil {
		return nil, LookupLocationOutput{}, err
	}
	if matches == nil {
		matches = []LocationMatch{}
	}
	return nil, LookupLocationOutput{Location: input.Location, Matches: matches}, nil
}

// ListModules returns the API catalog of the active payload
func (d *DocSearch) ListModules(ctx context.Context, req *mcp.CallToolRequest, input ListModulesInput) (*mcp.CallToolResult, ListModulesOutput, error) {
	catalog, err := d.Modules()
	if err != nil {
		return nil, ListModulesOutput{}, err
	}

	if input.Module != "" {
		mod, ok := FindModule(catalog, input.Module)
		if !ok {
			return nil, ListModulesOutput{}, fmt.Errorf("module not found: %s", input.Module)
		}
		catalog = []ModuleInfo{mod}
	}

	return nil, ListModulesOutput{Modules: catalog, Total: len(catalog)}, nil
}

// IndexStats reports record counts and index metadata
func (d *DocSearch) IndexStats(ctx context.Context, req *mcp.CallToolRequest, input IndexStatsInput) (*mcp.CallToolResult, IndexStatsOutput, error) {
	stats, info, err := d.Stats()
	if err != nil {
		return nil, IndexStatsOutput{}, err
	}

	byCategory := make(map[string]int, len(stats.ByCategory))
	for c, n := range stats.ByCategory {
		byCategory[string(c)] = n
	}

	return nil, IndexStatsOutput{
		Records:    stats.Total,
		ByCategory: byCategory,
		Pages:      stats.Pages,
		Index:      info,
	}, nil
}

// RefreshDocumentationIndex re-downloads and re-indexes the payload
func (d *DocSearch) RefreshDocumentationIndex(ctx context.Context, req *mcp.CallToolRequest, input RefreshDocumentationIndexInput) (*mcp.CallToolResult, RefreshDocumentationIndexOutput, error) {
	output := RefreshDocumentationIndexOutput{}

	updated, err := d.Refresh(ctx, input.Force)
	if err != nil {
		return nil, output, fmt.Errorf("refresh failed: %w", err)
	}

	output.Updated = updated
	output.LastUpdate = d.LastUpdate()
	if !updated {
		output.Message = fmt.Sprintf("Cache is fresh (last updated: %s)", output.LastUpdate.Format(time.RFC3339))
		return nil, output, nil
	}

	if _, info, err := d.Stats(); err == nil {
		output.EntriesIndexed = info.Entries
	}
	output.Message = fmt.Sprintf("Search index refreshed successfully, %d entries indexed", output.EntriesIndexed)
	return nil, output, nil
}

// RegisterDocSearchTools registers the documentation search tools
func RegisterDocSearchTools(server *mcp.Server, d *DocSearch) int {
	if err := d.Initialize(); err != nil {
		log.Printf("Warning: Documentation search initialization failed: %v", err)
		log.Printf("Search tools will report errors until refresh_documentation_index succeeds")
	}

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "search_documentation",
			Description: "Full-text search over the documentation search index (API docstrings, pages and sections). Filter by category, page or module.",
		},
		d.SearchDocumentation,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "lookup_location",
			Description: "Return every search index record stored at an exact location (page URL or anchor).",
		},
		d.LookupLocation,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "list_modules",
			Description: "List documented modules with their types, functions and method signatures.",
		},
		d.ListModules,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "index_stats",
			Description: "Record counts per category and page, plus index source and age.",
		},
		d.IndexStats,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "validate_search_index",
			Description: "Validate a search_index.js payload: every record must have exactly location, page, title, text and category, with category one of section, type, method, function, page.",
		},
		d.ValidateSearchIndex,
	)

	mcp.AddTool(server,
		&mcp.Tool{
			Name:        "refresh_documentation_index",
			Description: "Re-download the search index and rebuild it wholesale (skipped while the cache is fresh unless forced).",
		},
		d.RefreshDocumentationIndex,
	)

	return 6
}
