package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Options configures a RestyGateway.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Headers map[string]string
}

// RestyGateway adapts resty.Client to the httpclient.Gateway interface.
type RestyGateway struct {
	client *resty.Client
}

// NewRestyGateway creates a gateway bound to the shop API base URL.
func NewRestyGateway(opts Options) *RestyGateway {
	c := NewRestyHTTPClient(opts.Timeout)
	c.SetBaseURL(opts.BaseURL)
	c.SetHeader("Accept", "application/json")
	if len(opts.Headers) > 0 {
		c.SetHeaders(opts.Headers)
	}
	return &RestyGateway{client: c}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers needing custom verbs.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	c.SetTimeout(timeout)
	return c
}

// Post sends body as JSON to path.
func (g *RestyGateway) Post(ctx context.Context, path string, body any) (Response, error) {
	req := g.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body)
	return g.do(req, http.MethodPost, path)
}

// Delete issues a DELETE without a body.
func (g *RestyGateway) Delete(ctx context.Context, path string) (Response, error) {
	return g.do(g.client.R().SetContext(ctx), http.MethodDelete, path)
}

func (g *RestyGateway) do(req *resty.Request, method, path string) (Response, error) {
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, NewTransportFailure(method, path, err)
	}
	if !resp.IsSuccess() {
		return nil, NewStatusFailure(method, path, resp.StatusCode(), resp.Body())
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte    { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int { return r.resp.StatusCode() }
