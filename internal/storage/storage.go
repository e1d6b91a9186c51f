package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/cabbage-miniapp/internal/domain"
)

// Package storage provides the local operation journal.

// Store records successful operations made through the CLI.
type Store interface {
	Close() error
	Record(op domain.Operation) error
	Recent(limit int) ([]domain.Operation, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	OperationTTL    time.Duration
	CleanupInterval time.Duration
}

const (
	defaultOperationTTL    = 30 * 24 * time.Hour
	defaultCleanupInterval = 12 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.OperationTTL <= 0 {
		opts.OperationTTL = defaultOperationTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                           { return nil }
func (noopStore) Record(domain.Operation) error          { return nil }
func (noopStore) Recent(int) ([]domain.Operation, error) { return nil, nil }
