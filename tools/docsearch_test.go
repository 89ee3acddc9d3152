package tools

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docsearch/documenter-mcp-server/internal/config"
	"github.com/docsearch/documenter-mcp-server/internal/indexing"
	"github.com/docsearch/documenter-mcp-server/internal/searchindex"
)

const refreshedPayload = `var documenterSearchIndex = {"docs":
[{"location":"api/#Pkg.Mod.bags-Tuple{Any}","page":"Library Reference","title":"Pkg.Mod.bags","text":"Get the bags of a decomposition\n\n\n\n","category":"method"},{"location":"","page":"Pkg.jl","title":"Pkg.jl","text":"CurrentModule = Pkg","category":"page"}]
}
`

func readFixture(t *testing.T) []byte {
	t.Helper()
	raw, err := os.ReadFile("testdata/search_index.js")
	if err != nil {
		t.Fatalf("Failed to read fixture: %v", err)
	}
	return raw
}

// newTestDocSearch returns an initialized DocSearch over the fixture payload
// in a fresh data directory
func newTestDocSearch(t *testing.T, configure func(*config.Config), opts ...Option) *DocSearch {
	t.Helper()

	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	if configure != nil {
		configure(&cfg)
	}

	mock := NewMockDataProvider()
	mock.AddFile(embeddedIndexFile, readFixture(t))

	d, err := NewDocSearch(cfg, append([]Option{WithDataProvider(mock)}, opts...)...)
	if err != nil {
		t.Fatalf("NewDocSearch failed: %v", err)
	}
	t.Cleanup(func() { d.Close() })

	if err := d.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return d
}

func TestInitialize_FromEmbeddedPayload(t *testing.T) {
	d := newTestDocSearch(t, nil)

	// Embedded payload is extracted for the next start
	if _, err := searchindex.ParseFile(d.PayloadPath()); err != nil {
		t.Errorf("Embedded payload not extracted: %v", err)
	}
	if v := d.indexVersion(); v != indexing.IndexSchemaVersion {
		t.Errorf("Index version = %d, want %d", v, indexing.IndexSchemaVersion)
	}

	stats, info, err := d.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 11 {
		t.Errorf("Records = %d, want 11", stats.Total)
	}
	if info.Source != "embedded" {
		t.Errorf("Source = %s, want embedded", info.Source)
	}
	if info.Entries < stats.Total {
		t.Errorf("Index has %d entries for %d records", info.Entries, stats.Total)
	}
}

func TestInitialize_ReusesLocalIndex(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	first := NewMockDataProvider()
	first.AddFile(embeddedIndexFile, readFixture(t))
	d1, err := NewDocSearch(cfg, WithDataProvider(first))
	if err != nil {
		t.Fatalf("NewDocSearch failed: %v", err)
	}
	if err := d1.Initialize(); err != nil {
		t.Fatalf("First Initialize failed: %v", err)
	}
	if err := d1.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second := NewMockDataProvider()
	d2, err := NewDocSearch(cfg, WithDataProvider(second))
	if err != nil {
		t.Fatalf("NewDocSearch failed: %v", err)
	}
	defer d2.Close()
	if err := d2.Initialize(); err != nil {
		t.Fatalf("Second Initialize failed: %v", err)
	}

	if second.Reads() != 0 {
		t.Errorf("Local payload should be used, embedded data was read %d times", second.Reads())
	}
	_, info, err := d2.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if info.Source != "local" {
		t.Errorf("Source = %s, want local", info.Source)
	}
}

func TestInitialize_RebuildsOnVersionMismatch(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	mock := NewMockDataProvider()
	mock.AddFile(embeddedIndexFile, readFixture(t))
	d1, _ := NewDocSearch(cfg, WithDataProvider(mock))
	if err := d1.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	d1.Close()

	versionPath := filepath.Join(cfg.DataDir, indexVersionFile)
	if err := os.WriteFile(versionPath, []byte("1"), 0644); err != nil {
		t.Fatal(err)
	}

	d2, _ := NewDocSearch(cfg, WithDataProvider(mock))
	defer d2.Close()
	if err := d2.Initialize(); err != nil {
		t.Fatalf("Initialize after version bump failed: %v", err)
	}
	if v := d2.indexVersion(); v != indexing.IndexSchemaVersion {
		t.Errorf("Index version = %d after rebuild, want %d", v, indexing.IndexSchemaVersion)
	}
}

func TestInitialize_RebuildsWhenPayloadChanged(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	mock := NewMockDataProvider()
	mock.AddFile(embeddedIndexFile, readFixture(t))
	d1, _ := NewDocSearch(cfg, WithDataProvider(mock))
	if err := d1.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	d1.Close()

	// Replaced while the server was down, the old index is still on disk
	if err := os.WriteFile(filepath.Join(cfg.DataDir, payloadFile), []byte(refreshedPayload), 0644); err != nil {
		t.Fatal(err)
	}

	d2, _ := NewDocSearch(cfg, WithDataProvider(mock))
	defer d2.Close()
	if err := d2.Initialize(); err != nil {
		t.Fatalf("Initialize after payload change failed: %v", err)
	}

	resp, err := d2.Search(context.Background(), SearchRequest{Query: "StrDecomp"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for _, r := range resp.Results {
		if strings.Contains(r.Entry.Title, "StrDecomp") {
			t.Errorf("Hit %s comes from the previous payload", r.Entry.ID)
		}
	}

	stats, info, err := d2.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 2 || info.Entries != 2 {
		t.Errorf("Got %d records / %d entries, want 2 / 2", stats.Total, info.Entries)
	}

	payload, _ := d2.Payload()
	want, err := PayloadDigest(payload)
	if err != nil {
		t.Fatalf("PayloadDigest failed: %v", err)
	}
	if got := d2.indexDigest(); got != want {
		t.Errorf("Index digest = %q, want %q", got, want)
	}
}

func TestInitialize_RebuildsWithoutPayloadDigest(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	mock := NewMockDataProvider()
	mock.AddFile(embeddedIndexFile, readFixture(t))
	d1, _ := NewDocSearch(cfg, WithDataProvider(mock))
	if err := d1.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	d1.Close()

	// As left by a rebuild that failed after the payload was written
	os.Remove(filepath.Join(cfg.DataDir, indexDigestFile))

	d2, _ := NewDocSearch(cfg, WithDataProvider(mock))
	defer d2.Close()
	if err := d2.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if d2.indexDigest() == "" {
		t.Error("Index should be rebuilt and its payload digest recorded")
	}
}

func TestInitialize_InvalidEmbeddedPayload(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	mock := NewMockDataProvider()
	mock.AddFile(embeddedIndexFile, []byte(`{"docs":[{"location":"x"}]}`))

	d, _ := NewDocSearch(cfg, WithDataProvider(mock))
	defer d.Close()

	if err := d.Initialize(); err == nil {
		t.Fatal("Expected error for invalid embedded payload")
	}
	if _, err := d.Search(context.Background(), SearchRequest{Query: "decomposition"}); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Search before initialization: got %v, want ErrNotInitialized", err)
	}
}

func TestSearch(t *testing.T) {
	d := newTestDocSearch(t, nil)
	ctx := context.Background()

	t.Run("full text", func(t *testing.T) {
		resp, err := d.Search(ctx, SearchRequest{Query: "adhesion spans"})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(resp.Results) == 0 {
			t.Fatal("Expected results for 'adhesion spans'")
		}
		for _, r := range resp.Results {
			if r.Entry.ID == "" || r.Entry.Title == "" {
				t.Errorf("Result missing stored fields: %+v", r.Entry)
			}
		}
	})

	t.Run("category filter", func(t *testing.T) {
		resp, err := d.Search(ctx, SearchRequest{
			Query:      "adhesion",
			Categories: []searchindex.Category{searchindex.CategoryMethod},
		})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(resp.Results) == 0 {
			t.Fatal("Expected method results for 'adhesion'")
		}
		found := false
		for _, r := range resp.Results {
			if r.Entry.Category != "method" {
				t.Errorf("Category filter leaked %s entry %s", r.Entry.Category, r.Entry.ID)
			}
			if r.Entry.ID == "doc_4" {
				found = true
				if r.Entry.Signature != "Tuple{Any, Any}" {
					t.Errorf("Signature = %q, want Tuple{Any, Any}", r.Entry.Signature)
				}
			}
		}
		if !found {
			t.Errorf("Expected doc_4 among results, got %+v", resp.Results)
		}
	})

	t.Run("module filter", func(t *testing.T) {
		resp, err := d.Search(ctx, SearchRequest{
			Query:  "algorithm",
			Module: "StructuredDecompositions.JunctionTrees",
		})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(resp.Results) == 0 {
			t.Fatal("Expected results in JunctionTrees")
		}
		for _, r := range resp.Results {
			if r.Entry.Module != "StructuredDecompositions.JunctionTrees" {
				t.Errorf("Module filter leaked %s", r.Entry.Module)
			}
		}
	})

	t.Run("max results", func(t *testing.T) {
		resp, err := d.Search(ctx, SearchRequest{Query: "decomposition", MaxResults: 1})
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(resp.Results) > 1 {
			t.Errorf("Expected at most 1 result, got %d", len(resp.Results))
		}
	})

	t.Run("empty query", func(t *testing.T) {
		if _, err := d.Search(ctx, SearchRequest{Query: "   "}); !errors.Is(err, ErrEmptyQuery) {
			t.Errorf("Got %v, want ErrEmptyQuery", err)
		}
	})

	t.Run("invalid category", func(t *testing.T) {
		_, err := d.Search(ctx, SearchRequest{Query: "x", Categories: []searchindex.Category{"macro"}})
		if !errors.Is(err, searchindex.ErrInvalidCategory) {
			t.Errorf("Got %v, want ErrInvalidCategory", err)
		}
	})
}

func TestResultLimit(t *testing.T) {
	d := &DocSearch{cfg: config.Config{MaxResults: 7}}

	tests := []struct {
		requested int
		want      int
	}{
		{0, 7},
		{-3, 7},
		{3, 3},
		{config.MaxResultsLimit + 10, config.MaxResultsLimit},
	}
	for _, tt := range tests {
		if got := d.resultLimit(tt.requested); got != tt.want {
			t.Errorf("resultLimit(%d) = %d, want %d", tt.requested, got, tt.want)
		}
	}
}

func TestLookup(t *testing.T) {
	d := newTestDocSearch(t, nil)

	tests := []struct {
		location string
		ordinals []int
	}{
		{"api/", []int{1}},
		{"", []int{10}},
		{"api/#StructuredDecompositions.Decompositions.StrDecomp-Tuple{Any, Any}", []int{3}},
		{"api/#missing", nil},
	}

	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			matches, err := d.Lookup(tt.location)
			if err != nil {
				t.Fatalf("Lookup failed: %v", err)
			}
			if len(matches) != len(tt.ordinals) {
				t.Fatalf("Expected %d matches, got %+v", len(tt.ordinals), matches)
			}
			for i, m := range matches {
				if m.Ordinal != tt.ordinals[i] {
					t.Errorf("Match %d ordinal = %d, want %d", i, m.Ordinal, tt.ordinals[i])
				}
				if !strings.HasPrefix(m.URL, config.DefaultBaseURL) {
					t.Errorf("URL %s not under base URL", m.URL)
				}
			}
		})
	}
}

func TestRebuild_ReplacesWholesale(t *testing.T) {
	d := newTestDocSearch(t, nil)

	payload, err := searchindex.DecodeBytes([]byte(refreshedPayload))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if err := d.Rebuild(payload, "test"); err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}

	stats, info, err := d.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Total != 2 || info.Entries != 2 {
		t.Errorf("Expected 2 records and entries after rebuild, got %d/%d", stats.Total, info.Entries)
	}
	if info.Source != "test" {
		t.Errorf("Source = %s, want test", info.Source)
	}

	// Old records are gone from the index, not just the payload
	resp, err := d.Search(context.Background(), SearchRequest{Query: "adhesion"})
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if resp.TotalHits != 0 {
		t.Errorf("Old records still searchable: %+v", resp.Results)
	}

	// The local payload follows the index
	local, err := searchindex.ParseFile(d.PayloadPath())
	if err != nil {
		t.Fatalf("Local payload unreadable: %v", err)
	}
	if len(local.Docs) != 2 {
		t.Errorf("Local payload has %d records, want 2", len(local.Docs))
	}
}

func TestRefresh(t *testing.T) {
	var mu sync.Mutex
	body := refreshedPayload
	status := http.StatusOK
	requests := 0

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		requests++
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	d := newTestDocSearch(t, func(cfg *config.Config) {
		cfg.IndexURL = server.URL + "/dev/search_index.js"
		cfg.CacheTTL = time.Hour
		cfg.RefreshInterval = 0
	}, WithHTTPClient(server.Client()))
	ctx := context.Background()

	if !d.NeedsRefresh() {
		t.Fatal("Never-downloaded payload should need a refresh")
	}

	t.Run("downloads stale payload", func(t *testing.T) {
		updated, err := d.Refresh(ctx, false)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if !updated {
			t.Fatal("Expected refresh to replace the index")
		}

		stats, info, err := d.Stats()
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.Total != 2 {
			t.Errorf("Records = %d, want 2", stats.Total)
		}
		if info.Source != server.URL+"/dev/search_index.js" {
			t.Errorf("Source = %s", info.Source)
		}
		if d.LastUpdate().IsZero() {
			t.Error("LastUpdate should be set after a download")
		}
	})

	t.Run("skips fresh cache", func(t *testing.T) {
		mu.Lock()
		before := requests
		mu.Unlock()

		updated, err := d.Refresh(ctx, false)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if updated {
			t.Error("Fresh cache should not be refreshed")
		}

		mu.Lock()
		defer mu.Unlock()
		if requests != before {
			t.Errorf("Fresh cache triggered a download")
		}
	})

	t.Run("rejects invalid download", func(t *testing.T) {
		mu.Lock()
		body = `{"docs":[{"location":"api/","page":"API","title":"f","text":"","category":"macro"}]}`
		mu.Unlock()

		if _, err := d.Refresh(ctx, true); err == nil {
			t.Fatal("Expected error for invalid category")
		}

		stats, _, err := d.Stats()
		if err != nil {
			t.Fatalf("Stats failed: %v", err)
		}
		if stats.Total != 2 {
			t.Errorf("Failed refresh replaced the index: %d records", stats.Total)
		}
	})

	t.Run("rejects HTTP errors", func(t *testing.T) {
		mu.Lock()
		status = http.StatusNotFound
		mu.Unlock()

		if _, err := d.Refresh(ctx, true); err == nil {
			t.Fatal("Expected error for 404")
		}
	})
}

func TestRefresh_Throttled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, refreshedPayload)
	}))
	defer server.Close()

	d := newTestDocSearch(t, func(cfg *config.Config) {
		cfg.IndexURL = server.URL + "/search_index.js"
		cfg.RefreshInterval = time.Hour
	}, WithHTTPClient(server.Client()))

	if _, err := d.Refresh(context.Background(), true); err != nil {
		t.Fatalf("First refresh failed: %v", err)
	}
	if _, err := d.Refresh(context.Background(), true); !errors.Is(err, ErrRefreshThrottled) {
		t.Errorf("Second forced refresh: got %v, want ErrRefreshThrottled", err)
	}
}

// --- Snapshot Swap Tests ---
// These tests exercise publish/retire with mock indexes (no filesystem)

func TestPublish_RetiresOldIndex(t *testing.T) {
	d := &DocSearch{}
	payload := &searchindex.Index{}

	mock1 := newMockIndex()
	mock2 := newMockIndex()

	d.publish(&snapshot{index: mock1, payload: payload})
	d.publish(&snapshot{index: mock2, payload: payload})
	d.retiring.Wait()

	if !mock1.IsClosed() {
		t.Error("Replaced index should be closed")
	}
	if mock2.IsClosed() {
		t.Error("Active index should stay open")
	}
	if got := d.current.Load().index; got != Index(mock2) {
		t.Error("Expected mock2 to be active")
	}
}

func TestPublish_WaitsForInFlightSearches(t *testing.T) {
	d := &DocSearch{}
	payload := &searchindex.Index{}

	mock1 := newMockIndex()
	d.publish(&snapshot{index: mock1, payload: payload})

	s, err := d.acquire()
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	d.publish(&snapshot{index: newMockIndex(), payload: payload})

	time.Sleep(50 * time.Millisecond)
	if mock1.IsClosed() {
		t.Fatal("Index closed while a search was still using it")
	}
	if _, err := s.index.DocCount(); err != nil {
		t.Errorf("In-flight search lost its index: %v", err)
	}

	s.release()
	d.retiring.Wait()
	if !mock1.IsClosed() {
		t.Error("Old index should close once searches drain")
	}
}

func TestPublish_RetireIgnoresReadersOfNewerIndex(t *testing.T) {
	d := &DocSearch{}
	payload := &searchindex.Index{}

	mock1 := newMockIndex()
	d.publish(&snapshot{index: mock1, payload: payload})
	d.publish(&snapshot{index: newMockIndex(), payload: payload})

	// A reader pinned on the current index must not hold back the old one
	s, err := d.acquire()
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer s.release()

	done := make(chan struct{})
	go func() {
		d.retiring.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Old index retirement waited on a reader of the current index")
	}
	if !mock1.IsClosed() {
		t.Error("Old index should be closed")
	}
}

func TestAcquire_SkipsRetiredSnapshot(t *testing.T) {
	d := &DocSearch{}
	payload := &searchindex.Index{}

	old := &snapshot{index: newMockIndex(), payload: payload}
	old.retire()
	d.current.Store(old)

	next := &snapshot{index: newMockIndex(), payload: payload}
	go func() {
		time.Sleep(20 * time.Millisecond)
		d.current.Store(next)
	}()

	s, err := d.acquire()
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}
	defer s.release()
	if s != next {
		t.Error("acquire returned a retired snapshot")
	}
}

func TestSnapshotConcurrentSwapAndSearch(t *testing.T) {
	d := &DocSearch{cfg: config.Default()}
	payload := &searchindex.Index{}
	d.publish(&snapshot{index: newMockIndex(), payload: payload})

	const numReaders = 20
	const iterations = 5

	errChan := make(chan error, numReaders*iterations)
	var readers sync.WaitGroup

	for i := 0; i < numReaders; i++ {
		readers.Add(1)
		go func(id int) {
			defer readers.Done()
			for j := 0; j < iterations; j++ {
				if _, err := d.Search(context.Background(), SearchRequest{Query: "decomposition"}); err != nil {
					errChan <- fmt.Errorf("reader %d iteration %d: %v", id, j, err)
					return
				}
			}
		}(i)
	}

	for i := 1; i <= 3; i++ {
		d.publish(&snapshot{index: newMockIndex(), payload: payload})
	}

	readers.Wait()
	close(errChan)
	for err := range errChan {
		t.Error(err)
	}

	d.retiring.Wait()
}

func TestSearchIndex_PropagatesErrors(t *testing.T) {
	mock := newMockIndex()
	mock.searchError = errors.New("boom")

	_, err := SearchIndex(context.Background(), mock, SearchRequest{Query: "decomposition"})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Expected wrapped search error, got %v", err)
	}

	if _, err := SearchIndex(context.Background(), mock, SearchRequest{}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("Got %v, want ErrEmptyQuery", err)
	}
}

func TestClose(t *testing.T) {
	d := newTestDocSearch(t, nil)

	if err := d.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if d.lock.Held() {
		t.Error("Lock should be released after Close")
	}
	if _, err := d.Lookup("api/"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Lookup after Close: got %v, want ErrNotInitialized", err)
	}

	// Second close is harmless
	if err := d.Close(); err != nil {
		t.Errorf("Second Close failed: %v", err)
	}
}
