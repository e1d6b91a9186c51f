package shopapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samvad-hq/cabbage-miniapp/pkg/httpclient"
)

// call identifies one client operation for diagnostics.
type call struct {
	component string
	operation string
	resource  string
	path      string
}

func (c call) message() string {
	return fmt.Sprintf("[%s] %s request failed while %s", c.component, c.resource, c.operation)
}

// relay issues one request, decodes the response into T and logs any failure
// before returning it unchanged. A nil response or an empty body yields a nil
// record.
func relay[T any](ctx context.Context, log Logger, c call, send func(context.Context) (httpclient.Response, error)) (*T, error) {
	resp, err := send(ctx)
	if err != nil {
		logFailure(log, c, err)
		return nil, err
	}

	if resp == nil {
		return nil, nil
	}
	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return nil, nil
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		failure := httpclient.NewDecodeFailure(c.path, resp.StatusCode(), err)
		logFailure(log, c, failure)
		return nil, failure
	}
	return &out, nil
}

func logFailure(log Logger, c call, err error) {
	fields := map[string]any{
		"component": c.component,
		"operation": c.operation,
		"path":      c.path,
		"error":     err.Error(),
	}
	var failure *httpclient.RequestFailure
	if errors.As(err, &failure) && failure.StatusCode != 0 {
		fields["status"] = failure.StatusCode
	}
	log.ErrorObj(c.message(), "request_error", fields)
}
