package publishers

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/samvad-hq/cabbage-miniapp/internal/domain"
)

// Route binds a publisher to the operation kinds it receives. Nil or empty
// Events means every kind.
type Route struct {
	Publisher Publisher
	Events    []domain.OperationKind
}

func (r Route) accepts(kind domain.OperationKind) bool {
	return len(r.Events) == 0 || slices.Contains(r.Events, kind)
}

// Fanout delivers each event to the routes subscribed to its kind.
type Fanout struct {
	routes []Route
}

// NewFanout drops routes without a publisher.
func NewFanout(routes ...Route) *Fanout {
	f := &Fanout{}
	for _, r := range routes {
		if r.Publisher != nil {
			f.routes = append(f.routes, r)
		}
	}
	return f
}

// Publish returns how many subscribed publishers accepted evt, plus every
// delivery error joined.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil {
		return 0, nil
	}

	delivered := 0
	var errs []error
	for _, r := range f.routes {
		if !r.accepts(evt.Kind) {
			continue
		}
		if err := r.Publisher.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher[%s]: %w", r.Publisher.Type(), r.Publisher.ID(), err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Size returns the number of routes.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.routes)
}

// Subscribers counts the routes that receive kind.
func (f *Fanout) Subscribers(kind domain.OperationKind) int {
	if f == nil {
		return 0
	}
	n := 0
	for _, r := range f.routes {
		if r.accepts(kind) {
			n++
		}
	}
	return n
}

// Close releases publishers that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	return closeRoutes(f.routes)
}
