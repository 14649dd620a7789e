package quota_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"botanize/internal/quota"
	"botanize/internal/testsupport"
)

func exerciseStore(t *testing.T, store quota.Store) {
	t.Helper()
	ctx := context.Background()
	if _, found, err := store.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("expected missing key, got found=%v err=%v", found, err)
	}
	if err := store.Set(ctx, "count", "1"); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	if err := store.Set(ctx, "count", "2"); err != nil {
		t.Fatalf("overwrite returned error: %v", err)
	}
	value, found, err := store.Get(ctx, "count")
	if err != nil || !found || value != "2" {
		t.Fatalf("Get = %q, %v, %v", value, found, err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, quota.NewMemoryStore())
	var zero quota.MemoryStore
	exerciseStore(t, &zero)
}

func TestFileStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "quota.json")
	store, err := quota.OpenFileStore(path, nil)
	if err != nil {
		t.Fatalf("OpenFileStore returned error: %v", err)
	}
	exerciseStore(t, store)

	reopened, err := quota.OpenFileStore(path, nil)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	if value, found, _ := reopened.Get(context.Background(), "count"); !found || value != "2" {
		t.Fatalf("expected persisted value, got %q found=%v", value, found)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("expected temp file to be renamed away, stat err = %v", err)
	}
}

func TestFileStoreStartsEmptyOnCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quota.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	store, err := quota.OpenFileStore(path, nil)
	if err != nil {
		t.Fatalf("expected corrupt file to be tolerated, got %v", err)
	}
	exerciseStore(t, store)

	reopened, err := quota.OpenFileStore(path, nil)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	if value, found, _ := reopened.Get(context.Background(), "count"); !found || value != "2" {
		t.Fatalf("expected rewritten file, got %q found=%v", value, found)
	}
}

func TestFileStoreUnreadablePathFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quota.json")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if _, err := quota.OpenFileStore(path, nil); err == nil {
		t.Fatal("expected read error for a directory")
	}
}

func TestSQLiteStorePersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quota.db")
	store, err := quota.OpenSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore returned error: %v", err)
	}
	exerciseStore(t, store)
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := quota.OpenSQLiteStore(ctx, path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })
	if value, found, _ := reopened.Get(ctx, "count"); !found || value != "2" {
		t.Fatalf("expected persisted value, got %q found=%v", value, found)
	}
}

func exerciseCounter(t *testing.T, counter quota.Counter) {
	t.Helper()
	ctx := context.Background()
	req := quota.ConsumeRequest{CountKey: "count", DateKey: "date", Today: "2024-05-01", Limit: 2}
	want := []struct {
		count    int
		accepted bool
	}{{1, true}, {2, true}, {2, false}}
	for i, w := range want {
		count, accepted, err := counter.Consume(ctx, req)
		if err != nil {
			t.Fatalf("consume %d: %v", i+1, err)
		}
		if count != w.count || accepted != w.accepted {
			t.Fatalf("consume %d = (%d, %v), want (%d, %v)", i+1, count, accepted, w.count, w.accepted)
		}
	}

	req.Today = "2024-05-02"
	count, accepted, err := counter.Consume(ctx, req)
	if err != nil || count != 1 || !accepted {
		t.Fatalf("new day consume = (%d, %v, %v), want (1, true, nil)", count, accepted, err)
	}
}

func TestStoresConsumeAtomically(t *testing.T) {
	dir := t.TempDir()
	t.Run("memory", func(t *testing.T) {
		exerciseCounter(t, quota.NewMemoryStore())
	})
	t.Run("file", func(t *testing.T) {
		store, err := quota.OpenFileStore(filepath.Join(dir, "quota.json"), nil)
		if err != nil {
			t.Fatalf("OpenFileStore returned error: %v", err)
		}
		exerciseCounter(t, store)
	})
	t.Run("sqlite", func(t *testing.T) {
		store, err := quota.OpenSQLiteStore(context.Background(), filepath.Join(dir, "quota.db"))
		if err != nil {
			t.Fatalf("OpenSQLiteStore returned error: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		exerciseCounter(t, store)
	})
}

// Two handles on one database stand in for two botanize processes.
func TestSQLiteConsumeAcrossHandlesNeverExceedsLimit(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "quota.db")
	var stores []*quota.SQLiteStore
	for i := 0; i < 2; i++ {
		store, err := quota.OpenSQLiteStore(ctx, path)
		if err != nil {
			t.Fatalf("OpenSQLiteStore returned error: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		stores = append(stores, store)
	}

	req := quota.ConsumeRequest{CountKey: "count", DateKey: "date", Today: "2024-05-01", Limit: 3}
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(store *quota.SQLiteStore) {
			defer wg.Done()
			_, ok, err := store.Consume(ctx, req)
			if err != nil {
				t.Errorf("Consume returned error: %v", err)
				return
			}
			if ok {
				mu.Lock()
				accepted++
				mu.Unlock()
			}
		}(stores[i%2])
	}
	wg.Wait()

	if accepted != 3 {
		t.Fatalf("expected exactly 3 accepted answers, got %d", accepted)
	}
	if value, _, _ := stores[0].Get(ctx, "count"); value != "3" {
		t.Fatalf("expected stored count 3, got %q", value)
	}
}

func TestOpenOrMemoryFallsBack(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Quota.Backend = "etcd"
	backend := quota.OpenOrMemory(context.Background(), cfg, nil)
	if _, ok := backend.(*quota.MemoryStore); !ok {
		t.Fatalf("expected memory fallback, got %T", backend)
	}

	cfg = testsupport.NewConfig(t, testsupport.WithQuotaBackend("sqlite"))
	backend = quota.OpenOrMemory(context.Background(), cfg, nil)
	t.Cleanup(func() { _ = backend.Close() })
	if _, ok := backend.(*quota.SQLiteStore); !ok {
		t.Fatalf("expected sqlite store, got %T", backend)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	for _, backend := range []string{"memory", "file", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			cfg := testsupport.NewConfig(t, testsupport.WithQuotaBackend(backend))
			store, err := quota.Open(context.Background(), cfg, nil)
			if err != nil {
				t.Fatalf("Open returned error: %v", err)
			}
			t.Cleanup(func() { _ = store.Close() })
			exerciseStore(t, store)
		})
	}

	cfg := testsupport.NewConfig(t)
	cfg.Quota.Backend = "etcd"
	if _, err := quota.Open(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected error for unsupported backend")
	}
}

func TestNewTrackerFromConfigUsesLimit(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Quota.FreeDailyLimit = 1
	clock := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	tracker := quota.NewTrackerFromConfig(cfg, quota.NewMemoryStore(), nil, quota.WithClock(func() time.Time { return clock }))

	ctx := context.Background()
	if tracker.RecordAnswer(ctx) != quota.Accepted || tracker.RecordAnswer(ctx) != quota.Denied {
		t.Fatal("expected configured limit of one answer")
	}
}
