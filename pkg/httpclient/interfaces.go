package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Gateway abstracts calls against the shop API so callers can inject mocks or different transports.
// Paths are relative to the gateway's base URL.
type Gateway interface {
	Post(ctx context.Context, path string, body any) (Response, error)
	Delete(ctx context.Context, path string) (Response, error)
}
