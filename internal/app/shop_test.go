package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/cabbage-miniapp/internal/config"
	"github.com/samvad-hq/cabbage-miniapp/internal/domain"
	"github.com/samvad-hq/cabbage-miniapp/internal/logger"
	"github.com/samvad-hq/cabbage-miniapp/pkg/publishers"
	"github.com/samvad-hq/cabbage-miniapp/pkg/shopapi"
)

type fakeCategories struct {
	created *shopapi.CategoryRecord
	deleted *shopapi.CategoryRecord
	err     error
}

func (f *fakeCategories) CreateCategory(context.Context, shopapi.CategoryPayload) (*shopapi.CategoryRecord, error) {
	return f.created, f.err
}

func (f *fakeCategories) DeleteCategory(context.Context, int64) (*shopapi.CategoryRecord, error) {
	return f.deleted, f.err
}

type fakeOrders struct {
	rec *shopapi.OrderRecord
	err error
}

func (f *fakeOrders) CreateOrder(context.Context, shopapi.OrderPayload) (*shopapi.OrderRecord, error) {
	return f.rec, f.err
}

// memoryStore keeps operations in insertion order.
type memoryStore struct {
	ops []domain.Operation
	err error
}

func (m *memoryStore) Close() error { return nil }
func (m *memoryStore) Record(op domain.Operation) error {
	if m.err != nil {
		return m.err
	}
	m.ops = append(m.ops, op)
	return nil
}
func (m *memoryStore) Recent(limit int) ([]domain.Operation, error) {
	out := make([]domain.Operation, 0, len(m.ops))
	for i := len(m.ops) - 1; i >= 0; i-- {
		out = append(out, m.ops[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type fakeEvents struct {
	events []publishers.Event
	err    error
}

func (f *fakeEvents) Publish(_ context.Context, evt publishers.Event) (int, error) {
	f.events = append(f.events, evt)
	if f.err != nil {
		return 0, f.err
	}
	return 1, nil
}

func TestShopCreateCategoryJournalsAndPublishes(t *testing.T) {
	store := &memoryStore{}
	events := &fakeEvents{}
	shop := newShop(&fakeCategories{created: &shopapi.CategoryRecord{ID: 3, Name: "Drinks"}}, &fakeOrders{}, store, events, nil)

	rec, err := shop.CreateCategory(context.Background(), shopapi.CategoryPayload{Name: "Drinks"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if rec.ID != 3 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if len(store.ops) != 1 || store.ops[0].Kind != domain.CategoryCreated || store.ops[0].ResourceID != 3 {
		t.Fatalf("unexpected journal %+v", store.ops)
	}
	if len(events.events) != 1 || events.events[0].ResourceID != 3 {
		t.Fatalf("unexpected events %+v", events.events)
	}
}

func TestShopDeleteCategoryWithEmptyBody(t *testing.T) {
	store := &memoryStore{}
	shop := newShop(&fakeCategories{}, &fakeOrders{}, store, nil, nil)

	rec, err := shop.DeleteCategory(context.Background(), 9)
	if err != nil || rec != nil {
		t.Fatalf("DeleteCategory = %+v, %v", rec, err)
	}
	if len(store.ops) != 1 || store.ops[0].ResourceID != 9 || store.ops[0].Record != nil {
		t.Fatalf("unexpected journal %+v", store.ops)
	}
}

func TestShopReturnsClientErrorUnchanged(t *testing.T) {
	cause := errors.New("Not Found")
	store := &memoryStore{}
	events := &fakeEvents{}
	shop := newShop(&fakeCategories{err: cause}, &fakeOrders{err: cause}, store, events, nil)

	if _, err := shop.DeleteCategory(context.Background(), 1); err != cause {
		t.Fatalf("expected cause, got %v", err)
	}
	if _, err := shop.CreateOrder(context.Background(), shopapi.OrderPayload{}); err != cause {
		t.Fatalf("expected cause, got %v", err)
	}
	if len(store.ops) != 0 || len(events.events) != 0 {
		t.Fatalf("failures must not be journaled or published")
	}
}

func TestShopSideEffectFailuresDoNotFailCall(t *testing.T) {
	store := &memoryStore{err: errors.New("disk full")}
	events := &fakeEvents{err: errors.New("sink down")}
	shop := newShop(&fakeCategories{}, &fakeOrders{rec: &shopapi.OrderRecord{ID: 8}}, store, events, nil)

	rec, err := shop.CreateOrder(context.Background(), shopapi.OrderPayload{})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if rec.ID != 8 {
		t.Fatalf("unexpected record %+v", rec)
	}
}

type warnRecorder struct {
	logger.NopLogger
	warnings []string
}

func (w *warnRecorder) WarnObj(msg, _ string, _ interface{}) {
	w.warnings = append(w.warnings, msg)
}

func TestShopJournalsOperationWhenRecordCannotBeEncoded(t *testing.T) {
	// time.Time refuses to marshal years past 9999.
	rec := &shopapi.OrderRecord{ID: 5, OrderDate: shopapi.Timestamp{Time: time.Date(10000, 1, 1, 0, 0, 0, 0, time.UTC)}}
	store := &memoryStore{}
	events := &fakeEvents{}
	log := &warnRecorder{}
	shop := newShop(&fakeCategories{}, &fakeOrders{rec: rec}, store, events, log)

	got, err := shop.CreateOrder(context.Background(), shopapi.OrderPayload{})
	if err != nil || got != rec {
		t.Fatalf("CreateOrder = %+v, %v", got, err)
	}
	if len(store.ops) != 1 || store.ops[0].ResourceID != 5 || store.ops[0].Record != nil {
		t.Fatalf("unexpected journal %+v", store.ops)
	}
	if len(events.events) != 1 {
		t.Fatalf("expected event to be published, got %d", len(events.events))
	}
	if len(log.warnings) != 1 || log.warnings[0] != "operation record dropped" {
		t.Fatalf("unexpected warnings %v", log.warnings)
	}
}

func TestShopHistoryNewestFirst(t *testing.T) {
	store := &memoryStore{}
	shop := newShop(&fakeCategories{created: &shopapi.CategoryRecord{ID: 1}}, &fakeOrders{rec: &shopapi.OrderRecord{ID: 2}}, store, nil, nil)

	if _, err := shop.CreateCategory(context.Background(), shopapi.CategoryPayload{Name: "a"}); err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if _, err := shop.CreateOrder(context.Background(), shopapi.OrderPayload{}); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	ops, err := shop.History(1)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != domain.OrderCreated {
		t.Fatalf("unexpected history %+v", ops)
	}
}

func TestNewShopEndToEnd(t *testing.T) {
	var hookCalls atomic.Int32
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hookCalls.Add(1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer hook.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Telegram-Id") != "77" {
			t.Fatalf("missing X-Telegram-Id header")
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1,"name":"Drinks"}`))
	}))
	defer api.Close()

	dir := t.TempDir()
	pubFile := filepath.Join(dir, "publishers.yaml")
	raw := "publishers:\n  - id: hook\n    type: http\n    http:\n      url: " + hook.URL + "\n"
	if err := os.WriteFile(pubFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers file: %v", err)
	}

	cfg := &config.Config{
		APIBaseURL:             api.URL,
		APITimeout:             2 * time.Second,
		APITelegramID:          "77",
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(dir, "journal.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
		PublishersFile:         pubFile,
	}
	shop, err := NewShop(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewShop: %v", err)
	}
	defer shop.Close()

	rec, err := shop.CreateCategory(context.Background(), shopapi.CategoryPayload{Name: "Drinks"})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	if rec.ID != 1 || rec.Name != "Drinks" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if n := hookCalls.Load(); n != 1 {
		t.Fatalf("expected webhook to be called once, got %d", n)
	}

	ops, err := shop.History(10)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if len(ops) != 1 || ops[0].Kind != domain.CategoryCreated {
		t.Fatalf("unexpected history %+v", ops)
	}
}

func TestNewShopRejectsNilConfig(t *testing.T) {
	if _, err := NewShop(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
