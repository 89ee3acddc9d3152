package searchindex

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate performs the structural check that needs no schema engine: known
// category, non-empty title, and a location relative to the site root.
// An empty location is fine, it is the root page.
func (idx *Index) Validate() []Violation {
	var violations []Violation

	for i, rec := range idx.Docs {
		path := fmt.Sprintf("$.docs[%d]", i)

		if !rec.Category.Valid() {
			violations = append(violations, Violation{
				Path:    path + ".category",
				Message: fmt.Sprintf("category %q is not one of %s", rec.Category, categoryList()),
			})
		}

		if strings.TrimSpace(rec.Title) == "" {
			violations = append(violations, Violation{
				Path:    path + ".title",
				Message: "title is empty",
			})
		}

		if msg := checkLocation(rec.Location); msg != "" {
			violations = append(violations, Violation{
				Path:    path + ".location",
				Message: msg,
			})
		}
	}

	return violations
}

func checkLocation(location string) string {
	if location == "" {
		return ""
	}
	if strings.HasPrefix(location, "/") {
		return fmt.Sprintf("location %q must be relative to the site root", location)
	}
	u, err := url.Parse(PagePath(location))
	if err != nil {
		return fmt.Sprintf("location %q is not a valid URL fragment: %v", location, err)
	}
	if u.Scheme != "" || u.Host != "" {
		return fmt.Sprintf("location %q must not be an absolute URL", location)
	}
	return ""
}

func categoryList() string {
	names := make([]string, 0, len(Categories()))
	for _, c := range Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

// PageStats counts the records of a single page.
type PageStats struct {
	Page  string `json:"page"`
	Count int    `json:"count"`
}

// Stats summarises an index.
type Stats struct {
	Total      int              `json:"total"`
	ByCategory map[Category]int `json:"by_category"`
	Pages      []PageStats      `json:"pages"` // first-seen order
}

// Stats counts records per category and per page.
func (idx *Index) Stats() Stats {
	stats := Stats{
		Total:      len(idx.Docs),
		ByCategory: make(map[Category]int, len(Categories())),
	}
	for _, c := range Categories() {
		stats.ByCategory[c] = 0
	}

	pagePos := make(map[string]int)
	for _, rec := range idx.Docs {
		stats.ByCategory[rec.Category]++

		pos, ok := pagePos[rec.Page]
		if !ok {
			pos = len(stats.Pages)
			pagePos[rec.Page] = pos
			stats.Pages = append(stats.Pages, PageStats{Page: rec.Page})
		}
		stats.Pages[pos].Count++
	}

	return stats
}

// Filter returns the records in any of the given categories, in order.
// With no categories every record is returned.
func (idx *Index) Filter(categories ...Category) []Record {
	if len(categories) == 0 {
		return append([]Record(nil), idx.Docs...)
	}

	want := make(map[Category]bool, len(categories))
	for _, c := range categories {
		want[c] = true
	}

	var out []Record
	for _, rec := range idx.Docs {
		if want[rec.Category] {
			out = append(out, rec)
		}
	}
	return out
}

// ByLocation returns every record at location. Locations are not unique:
// the prose blocks of a page all share the page's location.
func (idx *Index) ByLocation(location string) []Record {
	var out []Record
	for _, rec := range idx.Docs {
		if rec.Location == location {
			out = append(out, rec)
		}
	}
	return out
}
