package tools

import (
	"fmt"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/docsearch/documenter-mcp-server/internal/searchindex"
)

// Index is the slice of bleve.Index the search tools use, so tests can
// substitute an in-memory fake.
type Index interface {
	Search(req *bleve.SearchRequest) (*bleve.SearchResult, error)
	DocCount() (uint64, error)
	Close() error
}

// openBleveIndex opens an on-disk bleve index
func openBleveIndex(path string) (Index, error) {
	index, err := bleve.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index at %s: %w", path, err)
	}
	return index, nil
}

// snapshot pairs the full-text index with the payload it was built from.
// A snapshot is immutable; refreshes publish a new one.
type snapshot struct {
	index   Index
	payload *searchindex.Index
	source  string // "local", "embedded" or the download URL
	builtAt time.Time

	// readers holds a read lock per in-flight search; retire takes the
	// write lock so the index is never closed under one
	readers sync.RWMutex
	retired bool
}

// acquire registers a reader. It fails once the snapshot has been retired.
func (s *snapshot) acquire() bool {
	s.readers.RLock()
	if s.retired {
		s.readers.RUnlock()
		return false
	}
	return true
}

func (s *snapshot) release() {
	s.readers.RUnlock()
}

// retire waits for the snapshot's own readers and turns away new ones.
// Readers of other snapshots never delay it.
func (s *snapshot) retire() {
	s.readers.Lock()
	s.retired = true
	s.readers.Unlock()
}
