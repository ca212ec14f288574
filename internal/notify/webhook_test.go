package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/autodns/autodns/internal/notify"
	"go.uber.org/zap"
)

func TestWebhookNotifierDelivers(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got.Store(string(body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := notify.NewWebhookNotifier([]string{srv.URL}, time.Second, zap.NewNop())
	if !n.Notify(context.Background(), "DNS record for home.example.com updated to 203.0.113.7.") {
		t.Fatal("Notify reported not delivered")
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(got.Load().(string)), &payload); err != nil {
		t.Fatalf("decode webhook payload: %v", err)
	}
	if payload.Message == "" {
		t.Fatal("webhook payload missing message")
	}
}

func TestWebhookNotifierSwallowsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	// A failing channel and an unreachable one: not delivered, but no panic
	// and no error surfaces.
	n := notify.NewWebhookNotifier([]string{srv.URL, "http://127.0.0.1:1/nope", ""}, time.Second, zap.NewNop())
	if n.Notify(context.Background(), "message") {
		t.Fatal("Notify reported delivery despite all channels failing")
	}
}

func TestWebhookNotifierPartialDeliveryCounts(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ok.Close()
	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer bad.Close()

	n := notify.NewWebhookNotifier([]string{bad.URL, ok.URL}, time.Second, zap.NewNop())
	if !n.Notify(context.Background(), "message") {
		t.Fatal("one successful channel should count as delivered")
	}
}

func TestNoopNotifierReportsNotSent(t *testing.T) {
	n := notify.NewNoopNotifier(zap.NewNop())
	if n.Notify(context.Background(), "message") {
		t.Fatal("noop notifier must report not sent")
	}
}
