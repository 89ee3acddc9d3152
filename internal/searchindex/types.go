// Package searchindex models the documentation search payload a static
// documentation site ships to its client-side search box: one flat list of
// page, anchor and docstring records.
package searchindex

import (
	"errors"
	"fmt"
)

// Category tags what kind of documentation item a record points at.
type Category string

const (
	CategorySection  Category = "section"
	CategoryType     Category = "type"
	CategoryMethod   Category = "method"
	CategoryFunction Category = "function"
	CategoryPage     Category = "page"
)

var (
	// ErrEmptyPayload is returned when there is nothing to decode
	ErrEmptyPayload = errors.New("empty search index payload")

	// ErrNoDocs is returned when the payload has no top-level docs array
	ErrNoDocs = errors.New("search index payload has no docs array")

	// ErrMissingField is returned when a record lacks one of its five fields
	ErrMissingField = errors.New("record is missing a field")

	// ErrInvalidCategory is returned for a category outside the fixed set
	ErrInvalidCategory = errors.New("invalid record category")

	// ErrTrailingData is returned when anything but whitespace follows the payload object
	ErrTrailingData = errors.New("unexpected data after search index payload")
)

// Categories returns every known category in declaration order.
func Categories() []Category {
	return []Category{CategorySection, CategoryType, CategoryMethod, CategoryFunction, CategoryPage}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategorySection, CategoryType, CategoryMethod, CategoryFunction, CategoryPage:
		return true
	}
	return false
}

// IsAPI reports whether records of this category document a code symbol
// (as opposed to prose pages and their headings).
func (c Category) IsAPI() bool {
	return c == CategoryType || c == CategoryMethod || c == CategoryFunction
}

// ParseCategory converts s into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

// Record is a single search entry.
type Record struct {
	Location string   `json:"location"` // URL fragment relative to the site root, "" is the root page
	Page     string   `json:"page"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
}

// Symbol returns the code symbol a record documents.
// Non-API records return a Symbol carrying only the title as Name.
func (r Record) Symbol() Symbol {
	if !r.Category.IsAPI() {
		return Symbol{Name: r.Title, Qualified: r.Title}
	}
	return ParseSymbol(r.Title, r.Location)
}

// Index is the whole payload. It is produced in one batch and replaced
// wholesale, never patched record by record.
type Index struct {
	Docs []Record `json:"docs"`
}

// Violation describes one structural problem in a payload.
type Violation struct {
	Path    string `json:"path"` // e.g. "$.docs[3].category"
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Path + ": " + v.Message
}
