package publishers

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/samvad-hq/cabbage-miniapp/internal/domain"
)

// Event is the payload published downstream after a successful API mutation.
type Event struct {
	Kind       domain.OperationKind `json:"kind"`
	Resource   string               `json:"resource"`
	ResourceID int64                `json:"resource_id"`
	Record     json.RawMessage      `json:"record,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// NewEvent constructs an Event from a journal operation.
func NewEvent(op domain.Operation) Event {
	return Event{
		Kind:       op.Kind,
		Resource:   op.Kind.Resource(),
		ResourceID: op.ResourceID,
		Record:     op.Record,
		OccurredAt: op.OccurredAt,
	}
}

// DeliveryID is stable for one event across every sink, so receivers can
// drop duplicates.
func (e Event) DeliveryID() string {
	return fmt.Sprintf("%s:%d:%d", e.Kind, e.ResourceID, e.OccurredAt.UnixNano())
}

// attributes are the message attributes attached by queue-style sinks.
func (e Event) attributes() map[string]string {
	return map[string]string{
		"event_kind":  string(e.Kind),
		"resource":    e.Resource,
		"resource_id": strconv.FormatInt(e.ResourceID, 10),
		"delivery_id": e.DeliveryID(),
	}
}
