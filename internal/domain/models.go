package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Domain contains core models shared by the runtime packages.

// OperationKind names a successful mutation made against the shop API.
type OperationKind string

const (
	CategoryCreated OperationKind = "category.created"
	CategoryDeleted OperationKind = "category.deleted"
	OrderCreated    OperationKind = "order.created"
)

// Kinds lists every operation kind the runtime emits.
func Kinds() []OperationKind {
	return []OperationKind{CategoryCreated, CategoryDeleted, OrderCreated}
}

// Valid reports whether k is one of Kinds.
func (k OperationKind) Valid() bool {
	switch k {
	case CategoryCreated, CategoryDeleted, OrderCreated:
		return true
	}
	return false
}

// Resource is the part before the dot, e.g. "category".
func (k OperationKind) Resource() string {
	resource, _, _ := strings.Cut(string(k), ".")
	return resource
}

// Operation is one journal entry.
type Operation struct {
	Kind       OperationKind   `json:"kind"`
	ResourceID int64           `json:"resource_id"`
	Record     json.RawMessage `json:"record,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// NewOperation builds an Operation stamped with the current UTC time. When
// record cannot be encoded the operation is still returned, without a record,
// alongside the encoding error.
func NewOperation(kind OperationKind, resourceID int64, record any) (Operation, error) {
	op := Operation{
		Kind:       kind,
		ResourceID: resourceID,
		OccurredAt: time.Now().UTC(),
	}
	if record == nil {
		return op, nil
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return op, fmt.Errorf("encode %s record: %w", kind, err)
	}
	if string(raw) != "null" {
		op.Record = raw
	}
	return op, nil
}
