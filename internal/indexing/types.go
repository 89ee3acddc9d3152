package indexing

// DocEntry is a search index record as stored in the full-text index
type DocEntry struct {
	ID         string   `json:"id"`
	Ordinal    int      `json:"ordinal"`             // Position in the source payload
	Location   string   `json:"location"`            // URL fragment relative to the site root
	Page       string   `json:"page"`                // Page title
	Title      string   `json:"title"`               // Indexed symbol or section name
	Category   string   `json:"category"`            // section, type, method, function or page
	Module     string   `json:"module,omitempty"`    // Module path of an API symbol
	Symbol     string   `json:"symbol,omitempty"`    // Unqualified symbol name
	Signature  string   `json:"signature,omitempty"` // Method signature from the anchor
	Text       string   `json:"text"`
	URL        string   `json:"url,omitempty"`
	Breadcrumb string   `json:"breadcrumb,omitempty"` // "Page > Module > Symbol"
	Keywords   []string `json:"keywords,omitempty"`
	TokenCount int      `json:"token_count,omitempty"`
}

// Type lets bleve pick the document mapping for entries
func (e DocEntry) Type() string {
	return DocType
}
