package tools

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
)

func TestIndexLock(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "search", "index.lock")

	t.Run("acquire and release lock", func(t *testing.T) {
		l := newIndexLock(lockPath, time.Second)

		if err := l.Acquire(); err != nil {
			t.Fatalf("Failed to acquire lock: %v", err)
		}
		if !l.Held() {
			t.Error("Lock should be held after Acquire")
		}

		// Another handle on the same file must not get it
		other := flock.New(lockPath)
		locked, err := other.TryLock()
		if err != nil {
			t.Fatalf("TryLock failed: %v", err)
		}
		if locked {
			other.Unlock()
			t.Fatal("Second handle acquired a held lock")
		}

		if err := l.Release(); err != nil {
			t.Fatalf("Failed to release lock: %v", err)
		}
		if l.Held() {
			t.Error("Lock should not be held after Release")
		}
	})

	t.Run("reacquire same lock", func(t *testing.T) {
		l := newIndexLock(lockPath, time.Second)
		defer l.Release()

		if err := l.Acquire(); err != nil {
			t.Fatalf("First acquire failed: %v", err)
		}
		if err := l.Acquire(); err != nil {
			t.Errorf("Reacquiring an owned lock should succeed: %v", err)
		}
	})

	t.Run("release without acquire", func(t *testing.T) {
		l := newIndexLock(lockPath, time.Second)
		if err := l.Release(); err != nil {
			t.Errorf("Release of an unheld lock should be a no-op: %v", err)
		}
	})

	t.Run("timeout on held lock", func(t *testing.T) {
		other := flock.New(lockPath)
		locked, err := other.TryLock()
		if err != nil || !locked {
			t.Fatalf("Failed to take lock with second handle: locked=%v err=%v", locked, err)
		}

		l := newIndexLock(lockPath, 300*time.Millisecond)
		start := time.Now()
		if err := l.Acquire(); err == nil {
			l.Release()
			t.Fatal("Expected timeout while another handle holds the lock")
		}
		if elapsed := time.Since(start); elapsed < 300*time.Millisecond {
			t.Errorf("Acquire gave up after %v, before the timeout", elapsed)
		}

		// Once released, the lock is available again
		if err := other.Unlock(); err != nil {
			t.Fatalf("Unlock failed: %v", err)
		}
		if err := l.Acquire(); err != nil {
			t.Errorf("Acquire after release failed: %v", err)
		}
		l.Release()
	})
}
