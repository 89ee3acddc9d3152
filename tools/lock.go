package tools

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryWait = 250 * time.Millisecond

// indexLock guards the on-disk index against other processes. The OS drops
// the lock when a process dies, so there are no stale lock files to clean.
type indexLock struct {
	mu      sync.Mutex
	fl      *flock.Flock
	timeout time.Duration
	held    bool
}

func newIndexLock(path string, timeout time.Duration) *indexLock {
	return &indexLock{fl: flock.New(path), timeout: timeout}
}

// Acquire takes the lock, retrying until the timeout. Acquiring a lock this
// process already holds is a no-op.
func (l *indexLock) Acquire() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.fl.Path()), 0755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	startTime := time.Now()
	for {
		locked, err := l.fl.TryLock()
		if err != nil {
			return fmt.Errorf("failed to lock %s: %w", l.fl.Path(), err)
		}
		if locked {
			l.held = true
			log.Printf("✓ Index lock acquired (PID %d)", os.Getpid())
			return nil
		}

		elapsed := time.Since(startTime)
		if elapsed >= l.timeout {
			return fmt.Errorf("timeout waiting for index lock after %v", elapsed.Round(time.Millisecond))
		}

		log.Printf("Index locked by another process, waiting... (%v elapsed)", elapsed.Round(100*time.Millisecond))
		time.Sleep(lockRetryWait)
	}
}

// Release drops the lock if held
func (l *indexLock) Release() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.held {
		return nil
	}
	if err := l.fl.Unlock(); err != nil {
		return fmt.Errorf("failed to release index lock: %w", err)
	}
	l.held = false
	log.Printf("✓ Index lock released")
	return nil
}

// Held reports whether this process holds the lock
func (l *indexLock) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}
