package searchindex

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://docsearch.local/schema/search-index.json"

var (
	compiledSchema *jsonschema.Schema
	compileErr     error
	compileOnce    sync.Once
)

// SchemaReport is the outcome of checking a payload against the record schema.
type SchemaReport struct {
	Valid      bool        `json:"valid"`
	Records    int         `json:"records"`
	Violations []Violation `json:"violations,omitempty"`
	Summary    string      `json:"summary"`
}

// Schema returns the compiled record schema.
func Schema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("embedded schema is invalid: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}

		compiledSchema, compileErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, compileErr
}

// ValidateSchema checks a raw payload (bare JSON or the generated
// JavaScript file) against the record schema. A payload that is not JSON at
// all is an error; schema mismatches are reported, not returned.
func ValidateSchema(raw []byte) (*SchemaReport, error) {
	data, err := StripWrapper(raw)
	if err != nil {
		return nil, err
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("search index is not valid JSON: %w", err)
	}

	schema, err := Schema()
	if err != nil {
		return nil, err
	}

	report := &SchemaReport{Records: countDocs(instance)}

	if err := schema.Validate(instance); err != nil {
		var validationErr *jsonschema.ValidationError
		if !errors.As(err, &validationErr) {
			return nil, fmt.Errorf("schema validation failed: %w", err)
		}
		report.Violations = flattenValidationError(validationErr, message.NewPrinter(language.English))
		report.Summary = fmt.Sprintf("Search index does not match the record schema: %d violation(s) in %d record(s)",
			len(report.Violations), report.Records)
		return report, nil
	}

	report.Valid = true
	report.Summary = fmt.Sprintf("Search index matches the record schema (%d records)", report.Records)
	return report, nil
}

// flattenValidationError collects the leaf causes; group errors only repeat them
func flattenValidationError(validationErr *jsonschema.ValidationError, p *message.Printer) []Violation {
	if len(validationErr.Causes) == 0 {
		return []Violation{{
			Path:    instancePath(validationErr.InstanceLocation),
			Message: validationErr.ErrorKind.LocalizedString(p),
		}}
	}

	var violations []Violation
	for _, cause := range validationErr.Causes {
		violations = append(violations, flattenValidationError(cause, p)...)
	}
	return violations
}

// instancePath renders ["docs","3","category"] as "$.docs[3].category"
func instancePath(location []string) string {
	var b strings.Builder
	b.WriteString("$")
	for _, part := range location {
		if _, err := strconv.Atoi(part); err == nil {
			b.WriteString("[" + part + "]")
			continue
		}
		b.WriteString("." + part)
	}
	return b.String()
}

func countDocs(instance any) int {
	obj, ok := instance.(map[string]any)
	if !ok {
		return 0
	}
	docs, ok := obj["docs"].([]any)
	if !ok {
		return 0
	}
	return len(docs)
}
