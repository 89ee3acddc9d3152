package indexing

import (
	"fmt"
	"unicode/utf8"
)

// ForceSplitText splits text by character count at word boundaries.
// Cuts never land inside a multi-byte rune.
func ForceSplitText(text string, maxChars, overlapChars int) []string {
	var parts []string

	for len(text) > 0 {
		chunkSize := maxChars
		if len(text) < chunkSize {
			chunkSize = len(text)
		}

		if chunkSize < len(text) {
			// Look back for space or newline
			for i := chunkSize; i > chunkSize-100 && i > 0; i-- {
				if text[i] == ' ' || text[i] == '\n' {
					chunkSize = i
					break
				}
			}
			chunkSize = len(CutAtRune(text, chunkSize))
			if chunkSize == 0 {
				// maxChars is narrower than the leading rune, take it whole
				_, chunkSize = utf8.DecodeRuneInString(text)
			}
		}

		parts = append(parts, text[:chunkSize])

		// Move forward with overlap
		next := chunkSize
		if chunkSize+overlapChars < len(text) && chunkSize > overlapChars {
			next = len(CutAtRune(text, chunkSize-overlapChars))
			if next == 0 {
				next = chunkSize
			}
		}
		text = text[next:]
	}

	return parts
}

// CutAtRune returns the longest prefix of s no longer than n bytes that
// does not end inside a multi-byte rune.
func CutAtRune(s string, n int) string {
	if n >= len(s) {
		return s
	}
	if n <= 0 {
		return ""
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// SplitEntry splits an entry whose text is too large into overlapping parts.
// Every part keeps the record metadata; IDs become <id>_sub<k>.
func SplitEntry(entry DocEntry, baseURL string) []DocEntry {
	if EstimateTokens(entry.Text) <= MaxEntryTokens {
		EnrichMetadata(&entry, baseURL)
		return []DocEntry{entry}
	}

	maxChars := MaxEntryTokens * CharsPerToken
	overlapChars := OverlapTokens * CharsPerToken

	parts := ForceSplitText(entry.Text, maxChars, overlapChars)
	entries := make([]DocEntry, 0, len(parts))
	for i, part := range parts {
		sub := entry
		sub.ID = fmt.Sprintf("%s_sub%d", entry.ID, i)
		sub.Text = part
		EnrichMetadata(&sub, baseURL)
		entries = append(entries, sub)
	}

	return entries
}
