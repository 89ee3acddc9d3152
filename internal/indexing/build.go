package indexing

import (
	"fmt"

	"github.com/docsearch/documenter-mcp-server/internal/searchindex"
)

// NewEntry converts a single record into its index entry
func NewEntry(ordinal int, rec searchindex.Record) DocEntry {
	entry := DocEntry{
		ID:       fmt.Sprintf("doc_%d", ordinal),
		Ordinal:  ordinal,
		Location: rec.Location,
		Page:     rec.Page,
		Title:    rec.Title,
		Category: string(rec.Category),
		Text:     CleanText(rec.Text),
	}

	if rec.Category.IsAPI() {
		sym := rec.Symbol()
		entry.Module = sym.Module
		entry.Symbol = sym.Name
		entry.Signature = sym.Signature
	}

	return entry
}

// BuildEntries converts every record of idx into index entries.
// Locations repeat across records, so the ordinal is the identity.
func BuildEntries(idx *searchindex.Index, baseURL string) []DocEntry {
	entries := make([]DocEntry, 0, len(idx.Docs))
	for i, rec := range idx.Docs {
		entries = append(entries, SplitEntry(NewEntry(i, rec), baseURL)...)
	}
	return entries
}

// AverageTokens calculates the average token count across entries
func AverageTokens(entries []DocEntry) int {
	if len(entries) == 0 {
		return 0
	}
	total := 0
	for _, entry := range entries {
		total += entry.TokenCount
	}
	return total / len(entries)
}

// CountSplit counts entries that came from splitting an oversized record
func CountSplit(entries []DocEntry) int {
	count := 0
	for _, entry := range entries {
		if entry.ID != fmt.Sprintf("doc_%d", entry.Ordinal) {
			count++
		}
	}
	return count
}
