package shopapi

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// CategoryPayload is the body sent when creating a category. The remote API owns validation.
type CategoryPayload struct {
	Name        string  `json:"name" yaml:"name"`
	ParentID    *int64  `json:"parent_id,omitempty" yaml:"parent_id"`
	Description *string `json:"description,omitempty" yaml:"description"`
}

// CategoryRecord is a category as returned by the remote API.
type CategoryRecord struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name,omitempty"`
	ParentID    *int64  `json:"parent_id,omitempty"`
	Description *string `json:"description,omitempty"`
}

// OrderItemPayload is one order line: a product and a quantity.
type OrderItemPayload struct {
	ProductID int64   `json:"product_id" yaml:"product_id"`
	Quantity  float64 `json:"quantity" yaml:"quantity"`
}

// OrderPayload is the body sent when creating an order.
type OrderPayload struct {
	Items         []OrderItemPayload `json:"items" yaml:"items"`
	DeliveryType  string             `json:"delivery_type,omitempty" yaml:"delivery_type"`
	AddressID     *int64             `json:"address_id,omitempty" yaml:"address_id"`
	PaymentMethod *string            `json:"payment_method,omitempty" yaml:"payment_method"`
}

// Delivery types understood by the remote API.
const (
	DeliveryTypeDelivery = "delivery"
	DeliveryTypePickup   = "pickup"
)

// OrderItemRecord is an order line priced by the remote API.
type OrderItemRecord struct {
	ProductID int64   `json:"product_id"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
}

// OrderRecord is an order as returned by the remote API.
type OrderRecord struct {
	ID           int64             `json:"id"`
	OrderDate    Timestamp         `json:"order_date"`
	Status       string            `json:"status"`
	IsPaid       bool              `json:"is_paid"`
	DeliveryType string            `json:"delivery_type"`
	AddressID    *int64            `json:"address_id"`
	TotalAmount  *float64          `json:"total_amount"`
	Items        []OrderItemRecord `json:"items"`
}

// timestampLayouts lists the layouts the API emits; naive timestamps are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// Timestamp decodes API datetimes with or without a zone offset.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	raw, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", raw)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.Time.MarshalJSON()
}
