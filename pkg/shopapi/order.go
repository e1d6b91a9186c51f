package shopapi

import (
	"context"

	"github.com/samvad-hq/cabbage-miniapp/pkg/httpclient"
)

const orderPath = "order"

// OrderClient relays order-creation intents to the shop API.
type OrderClient struct {
	gw  httpclient.Gateway
	log Logger
}

// NewOrderClient builds an OrderClient on top of gw.
func NewOrderClient(gw httpclient.Gateway, log Logger) *OrderClient {
	return &OrderClient{gw: gw, log: ensureLogger(log)}
}

// CreateOrder posts payload to the order resource and returns the created record.
func (c *OrderClient) CreateOrder(ctx context.Context, payload OrderPayload) (*OrderRecord, error) {
	return relay[OrderRecord](ctx, c.log, call{
		component: "OrderClient",
		operation: "creating",
		resource:  "Order",
		path:      orderPath,
	}, func(ctx context.Context) (httpclient.Response, error) {
		return c.gw.Post(ctx, orderPath, payload)
	})
}
