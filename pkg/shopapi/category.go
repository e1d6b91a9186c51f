package shopapi

import (
	"context"
	"strconv"

	"github.com/samvad-hq/cabbage-miniapp/pkg/httpclient"
)

const categoriesPath = "categories"

// CategoryClient relays category create/delete intents to the shop API.
type CategoryClient struct {
	gw  httpclient.Gateway
	log Logger
}

// NewCategoryClient builds a CategoryClient on top of gw.
func NewCategoryClient(gw httpclient.Gateway, log Logger) *CategoryClient {
	return &CategoryClient{gw: gw, log: ensureLogger(log)}
}

// CreateCategory posts payload to the categories resource and returns the created record.
func (c *CategoryClient) CreateCategory(ctx context.Context, payload CategoryPayload) (*CategoryRecord, error) {
	return relay[CategoryRecord](ctx, c.log, call{
		component: "CategoryClient",
		operation: "creating",
		resource:  "Categories",
		path:      categoriesPath,
	}, func(ctx context.Context) (httpclient.Response, error) {
		return c.gw.Post(ctx, categoriesPath, payload)
	})
}

// DeleteCategory deletes the category with the given id. The record is nil
// when the API answers with an empty body.
func (c *CategoryClient) DeleteCategory(ctx context.Context, id int64) (*CategoryRecord, error) {
	path := categoriesPath + "/" + strconv.FormatInt(id, 10)
	return relay[CategoryRecord](ctx, c.log, call{
		component: "CategoryClient",
		operation: "deleting",
		resource:  "Categories",
		path:      path,
	}, func(ctx context.Context) (httpclient.Response, error) {
		return c.gw.Delete(ctx, path)
	})
}
