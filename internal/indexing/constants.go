package indexing

// Entry sizing constants
const (
	// MaxEntryTokens is the size above which an entry's text is split (~3200 chars)
	MaxEntryTokens = 800

	// OverlapTokens is the overlap between consecutive parts (~400 chars)
	OverlapTokens = 100

	// CharsPerToken is the approximation for token estimation
	CharsPerToken = 4

	// MaxKeywords caps the keywords kept per entry
	MaxKeywords = 10

	// DocType is the bleve document type of every entry
	DocType = "doc_entry"

	// IndexSchemaVersion increments when the entry layout or mapping changes
	// v1: one entry per record, v2: keyword fields for filters and symbol metadata
	IndexSchemaVersion = 2
)
