package publishers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/samvad-hq/cabbage-miniapp/pkg/httpclient"
)

// Headers set on every webhook delivery.
const (
	HeaderEvent      = "X-Shop-Event"
	HeaderResourceID = "X-Shop-Resource-Id"
	HeaderDelivery   = "X-Shop-Delivery"
	HeaderSignature  = "X-Shop-Signature"
)

// webhookPublisher posts events to an HTTP endpoint.
type webhookPublisher struct {
	id      string
	method  string
	url     string
	headers map[string]string
	secret  []byte
	client  *resty.Client
	log     Logger
}

func newWebhookPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}

	w := &webhookPublisher{
		id:      cfg.ID,
		method:  cfg.HTTP.Method,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyHTTPClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
		log:     ensureLogger(log),
	}
	if w.method == "" {
		w.method = webhookDefaultMethod
	}
	if cfg.HTTP.Secret != "" {
		w.secret = []byte(cfg.HTTP.Secret)
	}
	return w, nil
}

func (w *webhookPublisher) ID() string   { return w.id }
func (w *webhookPublisher) Type() string { return TypeHTTP }

// Publish sends evt as the JSON body. Configured headers never override the
// X-Shop-* headers.
func (w *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	req := w.client.R().
		SetContext(ctx).
		SetHeaders(w.headers).
		SetHeader("Content-Type", "application/json").
		SetHeader(HeaderEvent, string(evt.Kind)).
		SetHeader(HeaderResourceID, strconv.FormatInt(evt.ResourceID, 10)).
		SetHeader(HeaderDelivery, evt.DeliveryID()).
		SetBody(body)
	if w.secret != nil {
		req.SetHeader(HeaderSignature, "sha256="+sign(w.secret, body))
	}

	resp, err := req.Execute(w.method, w.url)
	if err == nil && !resp.IsSuccess() {
		err = fmt.Errorf("webhook answered %d: %s", resp.StatusCode(), snippet(resp.Body()))
	}
	logDelivery(w.log, w, evt, err)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	return nil
}

// sign returns the hex HMAC-SHA256 of body under secret.
func sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func snippet(body []byte) string {
	const limit = 256
	if len(body) > limit {
		body = body[:limit]
	}
	return strings.TrimSpace(string(body))
}
