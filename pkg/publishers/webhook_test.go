package publishers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samvad-hq/cabbage-miniapp/internal/domain"
)

func orderEvent(t *testing.T) Event {
	t.Helper()
	op, err := domain.NewOperation(domain.OrderCreated, 11, map[string]any{"id": 11})
	if err != nil {
		t.Fatalf("NewOperation: %v", err)
	}
	return NewEvent(op)
}

func TestWebhookPublisherSendsShopHeaders(t *testing.T) {
	evt := orderEvent(t)

	var received Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Fatalf("missing configured header, got %q", got)
		}
		if got := r.Header.Get(HeaderEvent); got != string(domain.OrderCreated) {
			t.Fatalf("%s = %q", HeaderEvent, got)
		}
		if got := r.Header.Get(HeaderResourceID); got != "11" {
			t.Fatalf("%s = %q", HeaderResourceID, got)
		}
		if got := r.Header.Get(HeaderDelivery); got != evt.DeliveryID() {
			t.Fatalf("%s = %q, want %q", HeaderDelivery, got, evt.DeliveryID())
		}
		if got := r.Header.Get(HeaderSignature); got != "" {
			t.Fatalf("unsigned webhook sent signature %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	pub, err := newWebhookPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{
			URL:            srv.URL,
			Method:         http.MethodPost,
			Headers:        map[string]string{"X-Test": "1", HeaderEvent: "spoofed"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newWebhookPublisher: %v", err)
	}

	if err := pub.Publish(context.Background(), evt); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if received.Kind != domain.OrderCreated || received.Resource != "order" || received.ResourceID != 11 {
		t.Fatalf("server received %+v", received)
	}
	if string(received.Record) != `{"id":11}` {
		t.Fatalf("record = %s", received.Record)
	}
}

func TestWebhookPublisherSignsBody(t *testing.T) {
	const secret = "s3cret"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		mac := hmac.New(sha256.New, []byte(secret))
		mac.Write(body)
		want := "sha256=" + hex.EncodeToString(mac.Sum(nil))
		if got := r.Header.Get(HeaderSignature); got != want {
			t.Fatalf("%s = %q, want %q", HeaderSignature, got, want)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	pub, err := newWebhookPublisher(context.Background(), PublisherConfig{
		ID:   "signed",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: srv.URL, TimeoutSeconds: 2, Secret: secret},
	}, nil)
	if err != nil {
		t.Fatalf("newWebhookPublisher: %v", err)
	}
	if err := pub.Publish(context.Background(), orderEvent(t)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestWebhookPublisherErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	pub, err := newWebhookPublisher(context.Background(), PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: srv.URL, TimeoutSeconds: 1},
	}, nil)
	if err != nil {
		t.Fatalf("newWebhookPublisher: %v", err)
	}

	if err := pub.Publish(context.Background(), orderEvent(t)); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}

func TestNewWebhookPublisherRequiresConfig(t *testing.T) {
	if _, err := newWebhookPublisher(context.Background(), PublisherConfig{ID: "hook", Type: TypeHTTP}, nil); err == nil {
		t.Fatalf("expected error without http block")
	}
}
