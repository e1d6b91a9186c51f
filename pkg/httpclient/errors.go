package httpclient

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// RequestFailure is returned when a remote call does not succeed end-to-end:
// transport errors, non-2xx statuses and undecodable bodies all surface as one.
type RequestFailure struct {
	Method     string
	Path       string
	StatusCode int // zero when no response was received
	Message    string
	Err        error
}

// Error returns the underlying message unchanged.
func (f *RequestFailure) Error() string { return f.Message }

func (f *RequestFailure) Unwrap() error { return f.Err }

// NewTransportFailure wraps an error raised before a response was received.
func NewTransportFailure(method, path string, err error) *RequestFailure {
	return &RequestFailure{
		Method:  method,
		Path:    path,
		Message: err.Error(),
		Err:     err,
	}
}

// NewStatusFailure builds a failure for a non-2xx response.
func NewStatusFailure(method, path string, status int, body []byte) *RequestFailure {
	return &RequestFailure{
		Method:     method,
		Path:       path,
		StatusCode: status,
		Message:    statusMessage(status, body),
	}
}

// NewDecodeFailure wraps a response body decoding error.
func NewDecodeFailure(path string, status int, err error) *RequestFailure {
	return &RequestFailure{
		Path:       path,
		StatusCode: status,
		Message:    err.Error(),
		Err:        err,
	}
}

// statusMessage prefers the server's "detail" or "message" field and falls
// back to the canonical status text.
func statusMessage(status int, body []byte) string {
	if len(body) > 0 {
		var payload struct {
			Detail  any    `json:"detail"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			if detail, ok := payload.Detail.(string); ok && strings.TrimSpace(detail) != "" {
				return detail
			}
			if strings.TrimSpace(payload.Message) != "" {
				return payload.Message
			}
		}
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("unexpected status %d", status)
}
