package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/samvad-hq/cabbage-miniapp/internal/domain"
)

const (
	operationBucket  = "operations"
	expiryValueBytes = 8
)

// boltStore implements a Store backed by BoltDB.
//
// Keys are the big-endian record time followed by the bucket sequence, so a
// cursor walks entries in insertion order. Values are an 8 byte expiry
// followed by the JSON-encoded operation.
type boltStore struct {
	db              *bolt.DB
	cleanupMu       sync.Mutex
	lastCleanup     atomic.Int64
	operationTTL    time.Duration
	cleanupInterval time.Duration
	now             func() time.Time
}

// openBolt initializes a BoltDB-backed Store.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(operationBucket))
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	store := &boltStore{
		db:              db,
		operationTTL:    opts.OperationTTL,
		cleanupInterval: opts.CleanupInterval,
		now:             time.Now,
	}
	store.lastCleanup.Store(store.now().Unix())
	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Record appends an operation to the journal.
func (b *boltStore) Record(op domain.Operation) error {
	if b == nil || b.db == nil {
		return nil
	}

	now := b.now()
	if err := b.maybeCleanupExpired(now); err != nil {
		return err
	}

	payload, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("encode operation: %w", err)
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(operationBucket))
		if bucket == nil {
			return fmt.Errorf("operation bucket missing")
		}
		seq, err := bucket.NextSequence()
		if err != nil {
			return err
		}

		key := make([]byte, 16)
		binary.BigEndian.PutUint64(key[:8], uint64(now.UnixNano()))
		binary.BigEndian.PutUint64(key[8:], seq)

		value := make([]byte, expiryValueBytes+len(payload))
		binary.BigEndian.PutUint64(value[:expiryValueBytes], uint64(now.Add(b.operationTTL).Unix()))
		copy(value[expiryValueBytes:], payload)
		return bucket.Put(key, value)
	})
}

// Recent returns up to limit unexpired operations, newest first. A limit of
// zero or less returns every entry.
func (b *boltStore) Recent(limit int) ([]domain.Operation, error) {
	if b == nil || b.db == nil {
		return nil, nil
	}

	now := b.now()
	var out []domain.Operation
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(operationBucket))
		if bucket == nil {
			return fmt.Errorf("operation bucket missing")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				continue
			}
			var op domain.Operation
			if err := json.Unmarshal(v[expiryValueBytes:], &op); err != nil {
				return fmt.Errorf("decode operation: %w", err)
			}
			out = append(out, op)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
		return nil
	})
	return out, err
}

// maybeCleanupExpired removes expired operations on a fixed cadence to avoid unbounded growth.
func (b *boltStore) maybeCleanupExpired(now time.Time) error {
	if b == nil || b.db == nil {
		return nil
	}

	last := time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	b.cleanupMu.Lock()
	defer b.cleanupMu.Unlock()

	last = time.Unix(b.lastCleanup.Load(), 0)
	if now.Sub(last) < b.cleanupInterval {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(operationBucket))
		if bucket == nil {
			return fmt.Errorf("operation bucket missing")
		}

		var expired [][]byte
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			expiry, ok := decodeExpiry(v)
			if !ok || !expiry.After(now) {
				expired = append(expired, append([]byte(nil), k...))
			}
		}
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err == nil {
		b.lastCleanup.Store(now.Unix())
	}
	return err
}

// decodeExpiry decodes the expiry time from the head of a stored value.
func decodeExpiry(value []byte) (time.Time, bool) {
	if len(value) < expiryValueBytes {
		return time.Time{}, false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryValueBytes]))
	if unix <= 0 {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
