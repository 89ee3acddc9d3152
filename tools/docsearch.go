package tools

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"golang.org/x/time/rate"

	"github.com/docsearch/documenter-mcp-server/internal/config"
	"github.com/docsearch/documenter-mcp-server/internal/indexing"
	"github.com/docsearch/documenter-mcp-server/internal/searchindex"
)

const (
	payloadFile      = "docs/search_index.js"
	cacheMetaFile    = "docs/cache.meta"
	indexDir         = "search/index"
	lockFile         = "search/index.lock"
	indexVersionFile = "search/.index_version"
	indexDigestFile  = "search/.index_payload"

	batchSize     = 100
	maxPayloadLen = 64 << 20
)

var (
	// ErrNotInitialized is returned when searching before Initialize succeeded
	ErrNotInitialized = errors.New("documentation search is not initialized")

	// ErrEmptyQuery is returned for a blank search query
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrRefreshThrottled is returned when a refresh comes too soon after the last download
	ErrRefreshThrottled = errors.New("refresh throttled, try again later")
)

// DocSearch owns the documentation search index: loading it at startup,
// rebuilding it wholesale when the payload changes, and serving searches.
type DocSearch struct {
	cfg     config.Config
	dataDir string
	data    DataProvider
	client  *http.Client
	lock    *indexLock

	// downloads spaces out refreshes, forced ones included
	downloads *rate.Limiter

	// current holds the active snapshot (atomic access for lock-free reads)
	current atomic.Pointer[snapshot]

	// refreshMu prevents concurrent rebuilds, searches never take it
	refreshMu sync.Mutex

	// retiring tracks background closes of replaced indexes
	retiring sync.WaitGroup
}

// Option customises a DocSearch
type Option func(*DocSearch)

// WithDataProvider replaces the embedded data files
func WithDataProvider(p DataProvider) Option {
	return func(d *DocSearch) { d.data = p }
}

// WithHTTPClient replaces the client used to download the payload
func WithHTTPClient(c *http.Client) Option {
	return func(d *DocSearch) { d.client = c }
}

// NewDocSearch creates the search service rooted at cfg.DataDir (resolved
// with ResolveDataDir when empty). Nothing is opened until Initialize.
func NewDocSearch(cfg config.Config, opts ...Option) (*DocSearch, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = ResolveDataDir()
	}

	for _, sub := range []string{"docs", "search"} {
		if err := os.MkdirAll(filepath.Join(dataDir, sub), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	d := &DocSearch{
		cfg:     cfg,
		dataDir: dataDir,
		data:    NewEmbeddedDataProvider(),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(d)
	}
	d.lock = newIndexLock(filepath.Join(dataDir, lockFile), cfg.LockTimeout)

	d.downloads = rate.NewLimiter(rate.Inf, 1)
	if cfg.RefreshInterval > 0 {
		d.downloads = rate.NewLimiter(rate.Every(cfg.RefreshInterval), 1)
	}

	return d, nil
}

// DataDir returns the directory holding the payload and the index
func (d *DocSearch) DataDir() string {
	return d.dataDir
}

// PayloadPath returns where the local copy of the payload lives
func (d *DocSearch) PayloadPath() string {
	return filepath.Join(d.dataDir, payloadFile)
}

// Initialize opens the local index, or builds it from the local payload,
// or from the payload embedded in the binary.
func (d *DocSearch) Initialize() error {
	startTime := time.Now()
	log.Printf("Initializing documentation search...")

	lockStart := time.Now()
	if err := d.lock.Acquire(); err != nil {
		return fmt.Errorf("failed to acquire index lock: %w", err)
	}
	log.Printf("Lock acquired in %v", time.Since(lockStart).Round(time.Millisecond))

	payload, source, err := d.loadPayload()
	if err != nil {
		return err
	}

	indexPath := filepath.Join(d.dataDir, indexDir)

	// Strategy 1: reuse the on-disk index when it matches the payload
	if _, err := os.Stat(indexPath); err == nil {
		if v := d.indexVersion(); v != indexing.IndexSchemaVersion {
			log.Printf("Index schema version mismatch (have: v%d, want: v%d), rebuilding...",
				v, indexing.IndexSchemaVersion)
		} else if source != "local" {
			log.Printf("Local payload missing, rebuilding index from %s payload...", source)
		} else if digest, err := PayloadDigest(payload); err != nil || digest != d.indexDigest() {
			log.Printf("Local payload changed since the index was built, rebuilding...")
		} else {
			index, err := openBleveIndex(indexPath)
			if err == nil {
				d.publish(&snapshot{index: index, payload: payload, source: source, builtAt: time.Now()})
				count, _ := index.DocCount()
				log.Printf("✓ Documentation search initialized (%d entries, local index v%d) in %v",
					count, indexing.IndexSchemaVersion, time.Since(startTime).Round(time.Millisecond))

				if d.NeedsRefresh() {
					log.Printf("ℹ️  Local search index is older than %v. Consider using refresh_documentation_index to update.", d.cfg.CacheTTL)
				}
				return nil
			}
			log.Printf("Warning: Local index corrupted (%v), rebuilding...", err)
		}
	}

	// Strategy 2: build from the payload
	if err := d.rebuildLocked(payload, source); err != nil {
		return err
	}

	log.Printf("✓ Documentation search initialized (%d records, %s payload) in %v",
		len(payload.Docs), source, time.Since(startTime).Round(time.Millisecond))
	return nil
}

// loadPayload prefers the local payload and falls back to the embedded one,
// which is then written to the data directory.
func (d *DocSearch) loadPayload() (*searchindex.Index, string, error) {
	localPath := d.PayloadPath()
	if idx, err := searchindex.ParseFile(localPath); err == nil {
		return idx, "local", nil
	} else if !errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Local payload unreadable (%v), using embedded payload", err)
	}

	raw, err := d.data.ReadFile(embeddedIndexFile)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read embedded search index: %w", err)
	}
	idx, err := searchindex.DecodeBytes(raw)
	if err != nil {
		return nil, "", fmt.Errorf("embedded search index is invalid: %w", err)
	}

	if err := writeFileAtomic(localPath, raw); err != nil {
		log.Printf("Warning: Failed to extract embedded payload: %v", err)
	} else {
		log.Printf("✓ Embedded search index extracted to %s", localPath)
	}

	return idx, "embedded", nil
}

// indexVersion reads the index schema version from disk
func (d *DocSearch) indexVersion() int {
	data, err := os.ReadFile(filepath.Join(d.dataDir, indexVersionFile))
	if err != nil {
		return 0 // No version file = unknown layout
	}
	version, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return version
}

// indexDigest reads the digest of the payload the on-disk index was built from
func (d *DocSearch) indexDigest() string {
	data, err := os.ReadFile(filepath.Join(d.dataDir, indexDigestFile))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// PayloadDigest returns the sha256 of the payload's encoded form, so two
// payloads with the same records share a digest whatever their formatting.
func PayloadDigest(payload *searchindex.Index) (string, error) {
	h := sha256.New()
	if err := searchindex.Encode(h, payload); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// WriteIndexMeta records the schema version and payload digest next to an
// index in searchDir. Initialize only reuses an index whose metadata matches.
func WriteIndexMeta(searchDir string, payload *searchindex.Index) error {
	digest, err := PayloadDigest(payload)
	if err != nil {
		return fmt.Errorf("failed to hash payload: %w", err)
	}
	if err := os.WriteFile(filepath.Join(searchDir, filepath.Base(indexVersionFile)),
		[]byte(strconv.Itoa(indexing.IndexSchemaVersion)), 0644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(searchDir, filepath.Base(indexDigestFile)), []byte(digest+"\n"), 0644)
}

// NeedsRefresh reports whether the downloaded payload is older than the cache TTL
func (d *DocSearch) NeedsRefresh() bool {
	info, err := os.Stat(filepath.Join(d.dataDir, cacheMetaFile))
	if err != nil {
		return true // Never downloaded
	}
	return time.Since(info.ModTime()) > d.cfg.CacheTTL
}

// LastUpdate returns when the payload was last downloaded (zero if never)
func (d *DocSearch) LastUpdate() time.Time {
	info, err := os.Stat(filepath.Join(d.dataDir, cacheMetaFile))
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

// Rebuild replaces the whole index with one built from payload
func (d *DocSearch) Rebuild(payload *searchindex.Index, source string) error {
	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	if err := d.lock.Acquire(); err != nil {
		return fmt.Errorf("failed to acquire index lock: %w", err)
	}

	// Keep the local payload in step with the index it produced
	if err := searchindex.WriteFile(d.PayloadPath(), payload); err != nil {
		return err
	}
	return d.rebuildLocked(payload, source)
}

// rebuildLocked builds a new index in a temp directory, renames it into
// place and swaps the in-memory pointer. Callers hold the index lock.
func (d *DocSearch) rebuildLocked(payload *searchindex.Index, source string) error {
	startTime := time.Now()
	indexPath := filepath.Join(d.dataDir, indexDir)
	tempIndexPath := indexPath + ".tmp"

	entries := indexing.BuildEntries(payload, d.cfg.BaseURL)
	log.Printf("Built %d entries from %d records (avg: %d tokens, %d split)",
		len(entries), len(payload.Docs), indexing.AverageTokens(entries), indexing.CountSplit(entries))

	if err := BuildIndex(tempIndexPath, entries); err != nil {
		return err
	}

	// A crash past this point must not leave the old digest on a new index
	os.Remove(filepath.Join(d.dataDir, indexDigestFile))

	// The open index keeps its files until closed (POSIX), so the directory
	// can be replaced under it
	if err := os.RemoveAll(indexPath); err != nil && !os.IsNotExist(err) {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to remove old index: %w", err)
	}
	if err := os.Rename(tempIndexPath, indexPath); err != nil {
		os.RemoveAll(tempIndexPath)
		return fmt.Errorf("failed to rename temp index: %w", err)
	}

	index, err := openBleveIndex(indexPath)
	if err != nil {
		return err
	}

	d.publish(&snapshot{index: index, payload: payload, source: source, builtAt: time.Now()})

	if err := WriteIndexMeta(filepath.Dir(indexPath), payload); err != nil {
		log.Printf("Warning: Failed to write index metadata: %v", err)
	}

	log.Printf("✓ Index rebuilt in %v, searches now using new index", time.Since(startTime).Round(time.Millisecond))
	return nil
}

// BuildIndex writes entries into a fresh bleve index at path
func BuildIndex(path string, entries []indexing.DocEntry) error {
	os.RemoveAll(path)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	index, err := bleve.New(path, indexing.NewIndexMapping())
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	fail := func(err error) error {
		index.Close()
		os.RemoveAll(path)
		return err
	}

	batch := index.NewBatch()
	for i, entry := range entries {
		if err := batch.Index(entry.ID, entry); err != nil {
			return fail(fmt.Errorf("failed to add entry %s to batch: %w", entry.ID, err))
		}

		if (i+1)%batchSize == 0 {
			if err := index.Batch(batch); err != nil {
				return fail(fmt.Errorf("failed to index batch: %w", err))
			}
			batch = index.NewBatch()
		}
	}

	if batch.Size() > 0 {
		if err := index.Batch(batch); err != nil {
			return fail(fmt.Errorf("failed to index final batch: %w", err))
		}
	}

	if err := index.Close(); err != nil {
		os.RemoveAll(path)
		return fmt.Errorf("failed to close index: %w", err)
	}
	return nil
}

func (d *DocSearch) publish(s *snapshot) {
	old := d.current.Swap(s)
	d.retire(old)
}

// retire closes an old snapshot in the background once in-flight searches drain
func (d *DocSearch) retire(old *snapshot) {
	if old == nil {
		return
	}

	d.retiring.Add(1)
	go func() {
		defer d.retiring.Done()
		waitStart := time.Now()
		old.retire()
		if err := old.index.Close(); err != nil {
			log.Printf("Warning: Error closing old index: %v", err)
			return
		}
		log.Printf("✓ Old index closed (waited %v)", time.Since(waitStart).Round(time.Millisecond))
	}()
}

// Refresh downloads the payload and rebuilds the index when the cached copy
// is stale or force is set. It reports whether anything was replaced.
func (d *DocSearch) Refresh(ctx context.Context, force bool) (bool, error) {
	startTime := time.Now()

	if !force && !d.NeedsRefresh() {
		log.Printf("Search index cache is fresh, skipping refresh")
		return false, nil
	}

	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	// Another goroutine may have refreshed while we were waiting
	if !force && !d.NeedsRefresh() {
		return false, nil
	}

	if !d.downloads.Allow() {
		return false, ErrRefreshThrottled
	}

	log.Printf("Starting search index refresh (force=%v)...", force)

	if err := d.lock.Acquire(); err != nil {
		return false, fmt.Errorf("failed to acquire lock for refresh: %w", err)
	}

	raw, err := d.download(ctx)
	if err != nil {
		return false, fmt.Errorf("download failed: %w", err)
	}

	payload, err := searchindex.DecodeBytes(raw)
	if err != nil {
		return false, fmt.Errorf("downloaded search index is invalid: %w", err)
	}
	if violations := payload.Validate(); len(violations) > 0 {
		return false, fmt.Errorf("downloaded search index has %d violation(s), first: %s",
			len(violations), violations[0])
	}

	if err := writeFileAtomic(d.PayloadPath(), raw); err != nil {
		return false, err
	}
	if err := d.writeCacheMeta(); err != nil {
		log.Printf("Warning: Failed to write cache metadata: %v", err)
	}

	if err := d.rebuildLocked(payload, d.cfg.IndexURL); err != nil {
		return false, fmt.Errorf("indexing failed: %w", err)
	}

	log.Printf("✓ Search index refresh completed in %v", time.Since(startTime).Round(time.Millisecond))
	return true, nil
}

func (d *DocSearch) download(ctx context.Context) ([]byte, error) {
	log.Printf("Downloading search index from %s", d.cfg.IndexURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.cfg.IndexURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadLen+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if len(raw) > maxPayloadLen {
		return nil, fmt.Errorf("search index exceeds %d bytes", maxPayloadLen)
	}
	return raw, nil
}

func (d *DocSearch) writeCacheMeta() error {
	content := fmt.Sprintf("last_update: %s\nsource: %s\n", time.Now().Format(time.RFC3339), d.cfg.IndexURL)
	return os.WriteFile(filepath.Join(d.dataDir, cacheMetaFile), []byte(content), 0644)
}

// acquire returns the current snapshot with a reader registered on it;
// callers must call s.release when finished.
func (d *DocSearch) acquire() (*snapshot, error) {
	for {
		s := d.current.Load()
		if s == nil {
			return nil, ErrNotInitialized
		}
		if s.acquire() {
			return s, nil
		}
		// Retired between Load and acquire, its successor is already published
	}
}

// SearchRequest describes a documentation search
type SearchRequest struct {
	Query      string
	Categories []searchindex.Category
	Page       string
	Module     string
	MaxResults int
}

// SearchResult represents a search result with score
type SearchResult struct {
	Entry indexing.DocEntry `json:"entry"`
	Score float64           `json:"score"`
}

// SearchResponse holds the hits of a search
type SearchResponse struct {
	Results   []SearchResult `json:"results"`
	TotalHits int            `json:"total_hits"`
}

// Search runs a full-text query with optional keyword filters
func (d *DocSearch) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}
	for _, c := range req.Categories {
		if !c.Valid() {
			return nil, fmt.Errorf("%w: %q", searchindex.ErrInvalidCategory, c)
		}
	}

	s, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer s.release()

	req.MaxResults = d.resultLimit(req.MaxResults)
	return SearchIndex(ctx, s.index, req)
}

// SearchIndex runs req against any index built with the entry mapping
func SearchIndex(ctx context.Context, index Index, req SearchRequest) (*SearchResponse, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, ErrEmptyQuery
	}

	search := bleve.NewSearchRequest(buildQuery(req))
	search.Size = req.MaxResults
	if search.Size <= 0 {
		search.Size = config.DefaultMaxResults
	}
	search.Fields = []string{"*"}

	searchResults, err := index.Search(search)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(searchResults.Hits))
	for _, hit := range searchResults.Hits {
		results = append(results, SearchResult{
			Entry: entryFromFields(hit.ID, hit.Fields),
			Score: hit.Score,
		})
	}

	return &SearchResponse{Results: results, TotalHits: int(searchResults.Total)}, nil
}

func (d *DocSearch) resultLimit(requested int) int {
	if requested <= 0 {
		requested = d.cfg.MaxResults
	}
	if requested <= 0 {
		requested = config.DefaultMaxResults
	}
	if requested > config.MaxResultsLimit {
		requested = config.MaxResultsLimit
	}
	return requested
}

// buildQuery matches the query against the analysed fields, boosting symbol
// names, and ANDs the keyword filters onto it
func buildQuery(req SearchRequest) query.Query {
	field := func(name string, boost float64) query.Query {
		q := bleve.NewMatchQuery(req.Query)
		q.SetField(name)
		q.SetBoost(boost)
		return q
	}

	text := bleve.NewDisjunctionQuery(
		field(indexing.FieldSymbol, 3),
		field(indexing.FieldTitle, 2),
		field(indexing.FieldKeywords, 1.5),
		field(indexing.FieldText, 1),
	)

	clauses := []query.Query{text}

	if len(req.Categories) > 0 {
		categories := make([]query.Query, 0, len(req.Categories))
		for _, c := range req.Categories {
			categories = append(categories, termQuery(indexing.FieldCategory, string(c)))
		}
		clauses = append(clauses, bleve.NewDisjunctionQuery(categories...))
	}
	if req.Page != "" {
		clauses = append(clauses, termQuery(indexing.FieldPage, req.Page))
	}
	if req.Module != "" {
		clauses = append(clauses, termQuery(indexing.FieldModule, req.Module))
	}

	if len(clauses) == 1 {
		return text
	}
	return bleve.NewConjunctionQuery(clauses...)
}

func termQuery(field, term string) query.Query {
	q := bleve.NewTermQuery(term)
	q.SetField(field)
	return q
}

// entryFromFields rebuilds an entry from stored hit fields
func entryFromFields(id string, fields map[string]interface{}) indexing.DocEntry {
	entry := indexing.DocEntry{ID: id}

	str := func(name string) string {
		s, _ := fields[name].(string)
		return s
	}
	entry.Location = str("location")
	entry.Page = str("page")
	entry.Title = str("title")
	entry.Category = str("category")
	entry.Module = str("module")
	entry.Symbol = str("symbol")
	entry.Signature = str("signature")
	entry.Text = str("text")
	entry.URL = str("url")
	entry.Breadcrumb = str("breadcrumb")

	// Single-valued arrays come back as a plain string
	switch kw := fields["keywords"].(type) {
	case string:
		entry.Keywords = []string{kw}
	case []interface{}:
		entry.Keywords = make([]string, 0, len(kw))
		for _, k := range kw {
			if s, ok := k.(string); ok {
				entry.Keywords = append(entry.Keywords, s)
			}
		}
	}

	if n, ok := fields["ordinal"].(float64); ok {
		entry.Ordinal = int(n)
	}
	if n, ok := fields["token_count"].(float64); ok {
		entry.TokenCount = int(n)
	}
	return entry
}

// LocationMatch is one record found at a location
type LocationMatch struct {
	Ordinal int                `json:"ordinal"`
	Record  searchindex.Record `json:"record"`
	URL     string             `json:"url,omitempty"`
}

// Lookup returns every record at exactly this location, in payload order
func (d *DocSearch) Lookup(location string) ([]LocationMatch, error) {
	s, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer s.release()

	var matches []LocationMatch
	for i, rec := range s.payload.Docs {
		if rec.Location == location {
			matches = append(matches, LocationMatch{
				Ordinal: i,
				Record:  rec,
				URL:     indexing.JoinURL(d.cfg.BaseURL, rec.Location),
			})
		}
	}
	return matches, nil
}

// Stats summarises the active payload
func (d *DocSearch) Stats() (searchindex.Stats, IndexInfo, error) {
	s, err := d.acquire()
	if err != nil {
		return searchindex.Stats{}, IndexInfo{}, err
	}
	defer s.release()

	count, err := s.index.DocCount()
	if err != nil {
		return searchindex.Stats{}, IndexInfo{}, fmt.Errorf("failed to count entries: %w", err)
	}

	info := IndexInfo{
		Entries:    int(count),
		Source:     s.source,
		BuiltAt:    s.builtAt,
		LastUpdate: d.LastUpdate(),
		Schema:     indexing.IndexSchemaVersion,
	}
	return s.payload.Stats(), info, nil
}

// IndexInfo describes the active index
type IndexInfo struct {
	Entries    int       `json:"entries"`
	Source     string    `json:"source"`
	BuiltAt    time.Time `json:"built_at"`
	LastUpdate time.Time `json:"last_update,omitempty"`
	Schema     int       `json:"schema_version"`
}

// Payload returns the records of the active index
func (d *DocSearch) Payload() (*searchindex.Index, error) {
	s, err := d.acquire()
	if err != nil {
		return nil, err
	}
	defer s.release()
	return s.payload, nil
}

// Close waits for in-flight searches, closes the index and releases the lock
func (d *DocSearch) Close() error {
	var closeErr error

	if s := d.current.Swap(nil); s != nil {
		log.Printf("Waiting for in-flight searches to complete before closing...")
		s.retire()

		if closeErr = s.index.Close(); closeErr != nil {
			log.Printf("Error closing doc index: %v", closeErr)
		} else {
			log.Printf("✓ Doc index closed successfully")
		}
	}
	d.retiring.Wait()

	// Always attempt to release the lock, even if close failed
	if err := d.lock.Release(); err != nil {
		log.Printf("Error releasing lock: %v", err)
		if closeErr == nil {
			closeErr = err
		}
	}

	return closeErr
}

func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// sortedKeys returns map keys in order
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
