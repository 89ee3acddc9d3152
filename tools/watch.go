package tools

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/docsearch/documenter-mcp-server/internal/searchindex"
)

// watchDebounce lets a generator finish writing before the payload is read
const watchDebounce = 500 * time.Millisecond

// Watch rebuilds the index each time the local payload is rewritten, for
// example by a documentation build writing into the data directory. It
// blocks until ctx is done.
func (d *DocSearch) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: atomic writes replace the file, which drops a
	// watch on the file itself
	payloadPath := filepath.Clean(d.PayloadPath())
	if err := watcher.Add(filepath.Dir(payloadPath)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(payloadPath), err)
	}
	log.Printf("✓ Watching %s for changes", payloadPath)

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != payloadPath {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				pending = time.After(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Warning: Payload watcher error: %v", err)

		case <-pending:
			pending = nil
			rebuilt, err := d.ReloadLocal()
			if err != nil {
				log.Printf("Warning: Payload changed but was not reloaded: %v", err)
			} else if rebuilt {
				log.Printf("✓ Index rebuilt from changed payload")
			}
		}
	}
}

// ReloadLocal rebuilds the index from the local payload file when its
// records differ from the active ones
func (d *DocSearch) ReloadLocal() (bool, error) {
	payload, err := searchindex.ParseFile(d.PayloadPath())
	if err != nil {
		return false, err
	}
	if violations := payload.Validate(); len(violations) > 0 {
		return false, fmt.Errorf("local search index has %d violation(s), first: %s",
			len(violations), violations[0])
	}

	d.refreshMu.Lock()
	defer d.refreshMu.Unlock()

	// Our own refreshes rewrite the file too
	if cur := d.current.Load(); cur != nil && slices.Equal(cur.payload.Docs, payload.Docs) {
		return false, nil
	}

	if err := d.lock.Acquire(); err != nil {
		return false, fmt.Errorf("failed to acquire index lock: %w", err)
	}
	if err := d.rebuildLocked(payload, "local"); err != nil {
		return false, err
	}
	return true, nil
}
