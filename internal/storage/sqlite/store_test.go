package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
)

// setupTestStore creates a temporary SQLite database for testing
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := New(DefaultConfig(dbPath))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestIncrement(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := store.Increment(ctx, "2026-10-19", "log_flash")
		if err != nil {
			t.Fatalf("Increment failed: %v", err)
		}
		if got != want {
			t.Errorf("Increment = %d, want %d", got, want)
		}
	}

	if _, err := store.Increment(ctx, "2026-10-19", "spec_lite"); err != nil {
		t.Fatalf("Increment failed: %v", err)
	}

	counts, err := store.Counts(ctx, "2026-10-19")
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts["log_flash"] != 3 || counts["spec_lite"] != 1 {
		t.Errorf("Unexpected counts: %v", counts)
	}
}

func TestCounts_UnknownDate(t *testing.T) {
	store := setupTestStore(t)

	counts, err := store.Counts(context.Background(), "1999-01-01")
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if len(counts) != 0 {
		t.Errorf("Expected no counts, got %v", counts)
	}
}

func TestPurge(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	store.Increment(ctx, "2026-10-18", "log_pro")
	store.Increment(ctx, "2026-10-19", "log_pro")

	if err := store.Purge(ctx, "2026-10-19"); err != nil {
		t.Fatalf("Purge failed: %v", err)
	}

	old, _ := store.Counts(ctx, "2026-10-18")
	if len(old) != 0 {
		t.Errorf("Expected old day purged, got %v", old)
	}
	today, _ := store.Counts(ctx, "2026-10-19")
	if today["log_pro"] != 1 {
		t.Errorf("Expected today's counter kept, got %v", today)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "usage.db")
	ctx := context.Background()

	store, err := New(DefaultConfig(dbPath))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	store.Increment(ctx, "2026-10-19", "os_lite")
	store.Close()

	reopened, err := New(DefaultConfig(dbPath))
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()

	counts, err := reopened.Counts(ctx, "2026-10-19")
	if err != nil {
		t.Fatalf("Counts failed: %v", err)
	}
	if counts["os_lite"] != 1 {
		t.Errorf("Expected persisted counter, got %v", counts)
	}
}

func TestConcurrentIncrement(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	const workers, perWorker = 8, 25
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := store.Increment(ctx, "2026-10-19", "log_lite"); err != nil {
					t.Errorf("Increment failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	counts, _ := store.Counts(ctx, "2026-10-19")
	if counts["log_lite"] != workers*perWorker {
		t.Errorf("Expected %d, got %d", workers*perWorker, counts["log_lite"])
	}
}
