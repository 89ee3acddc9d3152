package indexing

import (
	"strings"
	"unicode"
)

var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true,
	"but": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "as": true, "by": true, "is": true,
	"it": true, "be": true, "with": true, "from": true, "that": true,
	"this": true, "are": true, "we": true, "can": true, "will": true,
	"any": true, "end": true, "function": true,
}

// CleanText trims the blank-line padding the documentation generator
// appends to every docstring and collapses runs of blank lines.
func CleanText(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")

	var b strings.Builder
	blank := 0
	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line == "" {
			blank++
			continue
		}
		if b.Len() > 0 {
			if blank > 0 {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		blank = 0
		b.WriteString(line)
	}
	return b.String()
}

// EstimateTokens estimates the token count for a text string
func EstimateTokens(text string) int {
	return len(text) / CharsPerToken
}

// ExtractKeywords extracts key terms from the title and the start of the text.
// Keywords keep first-seen order so entries are reproducible.
func ExtractKeywords(title, content string) []string {
	words := splitWords(title)

	words = append(words, splitWords(CutAtRune(content, 200))...)

	seen := make(map[string]bool)
	keywords := make([]string, 0, MaxKeywords)
	for _, word := range words {
		if len([]rune(word)) <= 2 || stopWords[word] || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
		if len(keywords) == MaxKeywords {
			break
		}
	}

	return keywords
}

// splitWords lowercases text and splits it on anything that is not a letter
// or digit, so "Decompositions.adhesionSpans" yields two words.
func splitWords(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// JoinURL resolves a location against the documentation base URL
// Example: ("https://host/dev/", "api/#x") -> "https://host/dev/api/#x"
func JoinURL(baseURL, location string) string {
	if baseURL == "" {
		return ""
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + strings.TrimPrefix(location, "/")
}

// EnrichMetadata adds breadcrumb, keywords, URL, and token count to an entry
func EnrichMetadata(entry *DocEntry, baseURL string) {
	// Page > Module > Symbol, skipping repeats
	var breadcrumb []string
	if entry.Page != "" {
		breadcrumb = append(breadcrumb, entry.Page)
	}
	if entry.Module != "" && entry.Module != entry.Page {
		breadcrumb = append(breadcrumb, entry.Module)
	}
	leaf := entry.Symbol
	if leaf == "" {
		leaf = entry.Title
	}
	if leaf != "" && leaf != entry.Page && leaf != entry.Module {
		breadcrumb = append(breadcrumb, leaf)
	}
	if len(breadcrumb) > 0 {
		entry.Breadcrumb = strings.Join(breadcrumb, " > ")
	}

	entry.URL = JoinURL(baseURL, entry.Location)
	entry.Keywords = ExtractKeywords(entry.Title, entry.Text)
	entry.TokenCount = EstimateTokens(entry.Text)
}
