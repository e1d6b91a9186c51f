package storage

import (
	"path/filepath"
	"testing"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/samvad-hq/cabbage-miniapp/internal/domain"
)

func openTestStore(t *testing.T, opts Options) *boltStore {
	t.Helper()
	storeRaw, err := openBolt(filepath.Join(t.TempDir(), "journal.db"), normalizeOptions(opts))
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	t.Cleanup(func() { store.Close() })
	return store
}

func countEntries(t *testing.T, b *boltStore) int {
	t.Helper()
	n := 0
	err := b.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket([]byte(operationBucket)).Stats().KeyN
		return nil
	})
	if err != nil {
		t.Fatalf("count entries: %v", err)
	}
	return n
}

func mustOperation(t *testing.T, kind domain.OperationKind, id int64, record any) domain.Operation {
	t.Helper()
	op, err := domain.NewOperation(kind, id, record)
	if err != nil {
		t.Fatalf("NewOperation: %v", err)
	}
	return op
}

func TestBoltStoreRecentReturnsNewestFirst(t *testing.T) {
	store := openTestStore(t, Options{})

	ops := []domain.Operation{
		mustOperation(t, domain.CategoryCreated, 1, map[string]any{"id": 1, "name": "Drinks"}),
		mustOperation(t, domain.OrderCreated, 7, nil),
		mustOperation(t, domain.CategoryDeleted, 1, nil),
	}
	for _, op := range ops {
		if err := store.Record(op); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	recent, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(recent))
	}
	if recent[0].Kind != domain.CategoryDeleted || recent[1].Kind != domain.OrderCreated {
		t.Fatalf("unexpected order %+v", recent)
	}

	all, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent(0): %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(all))
	}
	if string(all[2].Record) != `{"id":1,"name":"Drinks"}` {
		t.Fatalf("record not preserved: %s", all[2].Record)
	}
}

func TestBoltStoreExpiresOperations(t *testing.T) {
	store := openTestStore(t, Options{
		OperationTTL:    time.Minute,
		CleanupInterval: time.Hour,
	})

	base := time.Now()
	store.now = func() time.Time { return base }
	if err := store.Record(mustOperation(t, domain.OrderCreated, 1, nil)); err != nil {
		t.Fatalf("Record: %v", err)
	}

	// Past the TTL the entry is hidden even before the sweep runs.
	store.now = func() time.Time { return base.Add(2 * time.Minute) }
	recent, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 0 {
		t.Fatalf("expected expired entry to be hidden, got %+v", recent)
	}
	if n := countEntries(t, store); n != 1 {
		t.Fatalf("expected entry still stored before sweep, got %d", n)
	}

	// Past the cleanup cadence the next write sweeps it.
	store.now = func() time.Time { return base.Add(2 * time.Hour) }
	if err := store.Record(mustOperation(t, domain.OrderCreated, 2, nil)); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if n := countEntries(t, store); n != 1 {
		t.Fatalf("expected sweep to leave only the fresh entry, got %d", n)
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.Record(domain.Operation{}); err != nil {
		t.Fatalf("noop store Record: %v", err)
	}
	ops, err := store.Recent(10)
	if err != nil || ops != nil {
		t.Fatalf("noop store Recent = %v, %v", ops, err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore("bbolt", " ", Options{}); err == nil {
		t.Fatalf("expected error for missing bbolt path")
	}
}
