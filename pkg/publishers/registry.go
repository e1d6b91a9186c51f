package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// Builder creates a Publisher from a config entry.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

// Builders maps a publisher type to its Builder.
type Builders map[string]Builder

// DefaultBuilders knows every sink type the publishers file accepts.
func DefaultBuilders() Builders {
	return Builders{
		TypeHTTP:      newWebhookPublisher,
		TypeSQS:       newSQSPublisher,
		TypeSNS:       newSNSPublisher,
		TypeGCPPubSub: newGCPPubSubPublisher,
	}
}

// Build constructs the publisher declared by cfg.
func (b Builders) Build(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	build, ok := b[cfg.Type]
	if !ok || build == nil {
		return nil, fmt.Errorf("no builder for publisher %q of type %q", cfg.ID, cfg.Type)
	}
	return build(ctx, cfg, ensureLogger(log))
}

// BuildRoutes builds a route per config, carrying its event subscription.
// Publishers already built are closed when a later one fails.
func BuildRoutes(ctx context.Context, b Builders, cfgs []PublisherConfig, log Logger) ([]Route, error) {
	routes := make([]Route, 0, len(cfgs))
	for _, cfg := range cfgs {
		pub, err := b.Build(ctx, cfg, log)
		if err != nil {
			return nil, errors.Join(err, closeRoutes(routes))
		}
		routes = append(routes, Route{Publisher: pub, Events: cfg.Events})
	}
	return routes, nil
}

func closeRoutes(routes []Route) error {
	var errs []error
	for _, r := range routes {
		c, ok := r.Publisher.(io.Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s publisher[%s]: %w", r.Publisher.Type(), r.Publisher.ID(), err))
		}
	}
	return errors.Join(errs...)
}
