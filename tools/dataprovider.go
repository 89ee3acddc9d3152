package tools

// DataProvider reads files bundled with the binary. Production code reads
// the go:embed filesystem; tests inject MockDataProvider.
type DataProvider interface {
	// ReadFile returns the contents of a bundled file such as
	// "data/search_index.js".
	ReadFile(name string) ([]byte, error)
}
