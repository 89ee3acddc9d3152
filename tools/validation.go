package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/docsearch/documenter-mcp-server/internal/searchindex"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ValidateSearchIndexInput defines input for validate_search_index tool
type ValidateSearchIndexInput struct {
	Payload string `json:"payload,omitempty" jsonschema:"search_index.js content or bare JSON (optional, defaults to the local payload)"`
}

// ValidationError describes a single validation problem
type ValidationError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// ValidationResult is the outcome of validating a payload
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Records  int               `json:"records"`
	Errors   []ValidationError `json:"errors"`
	Warnings []ValidationError `json:"warnings,omitempty"`
	Summary  string            `json:"summary"`
	Source   string            `json:"source"`
}

// Error codes
const (
	CodeSyntax     = "SYNTAX_ERROR"
	CodeSchema     = "SCHEMA_VALIDATION_ERROR"
	CodeStructural = "STRUCTURAL_ERROR"
)

// ValidatePayload runs the schema check and the structural check over a
// raw payload. Schema mismatches and structural problems are errors; a
// payload that cannot be parsed at all yields a single syntax error.
func ValidatePayload(raw []byte) *ValidationResult {
	result := &ValidationResult{Errors: []ValidationError{}}

	report, err := searchindex.ValidateSchema(raw)
	if err != nil {
		result.Errors = append(result.Errors, ValidationError{Path: "$", Message: err.Error(), Code: CodeSyntax})
		result.Summary = "Search index could not be parsed"
		return result
	}

	result.Records = report.Records
	for _, v := range report.Violations {
		result.Errors = append(result.Errors, ValidationError{Path: v.Path, Message: v.Message, Code: CodeSchema})
	}

	// The structural check needs decodable records
	if report.Valid {
		idx, err := searchindex.DecodeBytes(raw)
		if err != nil {
			result.Errors = append(result.Errors, ValidationError{Path: "$", Message: err.Error(), Code: CodeSyntax})
		} else {
			for _, v := range idx.Validate() {
				result.Errors = append(result.Errors, ValidationError{Path: v.Path, Message: v.Message, Code: CodeStructural})
			}
			if len(idx.Docs) == 0 {
				result.Warnings = append(result.Warnings, ValidationError{
					Path:    "$.docs",
					Message: "search index has no records",
					Code:    "EMPTY_INDEX",
				})
			}
		}
	}

	result.Valid = len(result.Errors) == 0
	if result.Valid {
		result.Summary = fmt.Sprintf("Search index is valid (%d records)", result.Records)
	} else {
		result.Summary = fmt.Sprintf("Search index validation failed with %d error(s)", len(result.Errors))
	}
	return result
}

// ValidateSearchIndex validates inline payload text or the local payload
func (d *DocSearch) ValidateSearchIndex(ctx context.Context, req *mcp.CallToolRequest, input ValidateSearchIndexInput) (*mcp.CallToolResult, ValidationResult, error) {
	raw := []byte(input.Payload)
	source := "inline"

	if input.Payload == "" {
		var err error
		raw, err = os.ReadFile(d.PayloadPath())
		if err != nil {
			return nil, ValidationResult{}, fmt.Errorf("failed to read local search index: %w", err)
		}
		source = d.PayloadPath()
	}

	result := ValidatePayload(raw)
	result.Source = source
	return nil, *result, nil
}
