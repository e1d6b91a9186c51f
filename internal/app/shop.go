package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/samvad-hq/cabbage-miniapp/internal/config"
	"github.com/samvad-hq/cabbage-miniapp/internal/domain"
	"github.com/samvad-hq/cabbage-miniapp/internal/logger"
	"github.com/samvad-hq/cabbage-miniapp/internal/storage"
	"github.com/samvad-hq/cabbage-miniapp/pkg/httpclient"
	"github.com/samvad-hq/cabbage-miniapp/pkg/publishers"
	"github.com/samvad-hq/cabbage-miniapp/pkg/shopapi"
)

// CategoryAPI is the category surface of the shop API.
type CategoryAPI interface {
	CreateCategory(ctx context.Context, payload shopapi.CategoryPayload) (*shopapi.CategoryRecord, error)
	DeleteCategory(ctx context.Context, id int64) (*shopapi.CategoryRecord, error)
}

// OrderAPI is the order surface of the shop API.
type OrderAPI interface {
	CreateOrder(ctx context.Context, payload shopapi.OrderPayload) (*shopapi.OrderRecord, error)
}

// EventPublisher publishes operation events downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Shop is the CLI runtime. It forwards calls to the API clients and, on
// success, journals the operation and announces it to the configured sinks.
type Shop struct {
	categories CategoryAPI
	orders     OrderAPI
	store      storage.Store
	events     EventPublisher
	closers    []func() error
	log        logger.Logger
}

// NewShop builds the runtime from config.
func NewShop(ctx context.Context, cfg *config.Config, log logger.Logger) (*Shop, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	gw := httpclient.NewRestyGateway(httpclient.Options{
		BaseURL: cfg.APIBaseURL,
		Timeout: cfg.APITimeout,
		Headers: cfg.APIHeaders(),
	})
	log.InfoObj("api gateway configured", "api_config", map[string]any{
		"base_url":        cfg.APIBaseURL,
		"timeout_seconds": int(cfg.APITimeout.Seconds()),
		"identified":      cfg.APIHeaders() != nil,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		OperationTTL:    cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"operation_ttl_seconds":    int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	shop := newShop(shopapi.NewCategoryClient(gw, log), shopapi.NewOrderClient(gw, log), store, fanout, log)
	shop.closers = []func() error{fanout.Close, store.Close}
	return shop, nil
}

func newShop(categories CategoryAPI, orders OrderAPI, store storage.Store, events EventPublisher, log logger.Logger) *Shop {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Shop{
		categories: categories,
		orders:     orders,
		store:      store,
		events:     events,
		log:        log,
	}
}

// buildFanout loads the optional publishers file. No file means no sinks.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if path == "" {
		return publishers.NewFanout(), nil
	}

	cfg, err := publishers.LoadConfig(path)
	if err != nil {
		return nil, err
	}
	enabled := cfg.Enabled()
	routes, err := publishers.BuildRoutes(ctx, publishers.DefaultBuilders(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]any, 0, len(enabled))
	for _, c := range enabled {
		events := "all"
		if len(c.Events) > 0 {
			events = fmt.Sprint(c.Events)
		}
		summaries = append(summaries, map[string]any{"id": c.ID, "type": c.Type, "events": events})
	}
	log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(routes...), nil
}

// CreateCategory creates a category through the API.
func (s *Shop) CreateCategory(ctx context.Context, payload shopapi.CategoryPayload) (*shopapi.CategoryRecord, error) {
	rec, err := s.categories.CreateCategory(ctx, payload)
	if err != nil {
		return nil, err
	}
	var id int64
	if rec != nil {
		id = rec.ID
	}
	s.afterSuccess(ctx, domain.CategoryCreated, id, rec)
	return rec, nil
}

// DeleteCategory deletes a category through the API.
func (s *Shop) DeleteCategory(ctx context.Context, id int64) (*shopapi.CategoryRecord, error) {
	rec, err := s.categories.DeleteCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	s.afterSuccess(ctx, domain.CategoryDeleted, id, rec)
	return rec, nil
}

// CreateOrder creates an order through the API.
func (s *Shop) CreateOrder(ctx context.Context, payload shopapi.OrderPayload) (*shopapi.OrderRecord, error) {
	rec, err := s.orders.CreateOrder(ctx, payload)
	if err != nil {
		return nil, err
	}
	var id int64
	if rec != nil {
		id = rec.ID
	}
	s.afterSuccess(ctx, domain.OrderCreated, id, rec)
	return rec, nil
}

// History returns the most recent journal entries, newest first.
func (s *Shop) History(limit int) ([]domain.Operation, error) {
	if s.store == nil {
		return nil, nil
	}
	ops, err := s.store.Recent(limit)
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}
	return ops, nil
}

// Close releases the journal and publisher connections.
func (s *Shop) Close() error {
	var errs []error
	for _, c := range s.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// afterSuccess journals and publishes the operation. Failures here are logged
// only: the remote mutation already happened.
func (s *Shop) afterSuccess(ctx context.Context, kind domain.OperationKind, id int64, rec any) {
	op, err := domain.NewOperation(kind, id, rec)
	if err != nil {
		s.log.WarnObj("operation record dropped", "journal_error", map[string]any{
			"kind":        string(kind),
			"resource_id": id,
			"error":       err.Error(),
		})
	}

	if s.store != nil {
		if err := s.store.Record(op); err != nil {
			s.log.WarnObj("journal write failed", "journal_error", map[string]any{
				"kind":        string(op.Kind),
				"resource_id": op.ResourceID,
				"error":       err.Error(),
			})
		}
	}

	if s.events == nil {
		return
	}
	delivered, err := s.events.Publish(ctx, publishers.NewEvent(op))
	if err != nil {
		s.log.WarnObj("event publish failed", "publish_error", map[string]any{
			"kind":        string(op.Kind),
			"resource_id": op.ResourceID,
			"delivered":   delivered,
			"error":       err.Error(),
		})
		return
	}
	if delivered > 0 {
		s.log.DebugObj("event published", "publish_result", map[string]any{
			"kind":      string(op.Kind),
			"delivered": delivered,
		})
	}
}
