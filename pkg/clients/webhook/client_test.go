package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNotifyListReady(t *testing.T) {
	t.Run("delivers the payload with an event id", func(t *testing.T) {
		var received Notification
		var requestID string

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID = r.Header.Get("X-Request-ID")
			if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
				t.Errorf("decode payload: %v", err)
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		notification := Notification{
			Username:       "lucy",
			TotalItems:     3,
			EstimatedTotal: 12.5,
			GeneratedAt:    time.Date(2025, 6, 1, 6, 0, 0, 0, time.UTC),
		}

		if err := client.NotifyListReady(context.Background(), notification); err != nil {
			t.Fatalf("NotifyListReady: %v", err)
		}

		if received.Username != "lucy" || received.TotalItems != 3 {
			t.Errorf("received = %+v, want lucy's summary", received)
		}
		if received.EventID == "" {
			t.Error("event id was not filled in")
		}
		if requestID != received.EventID {
			t.Errorf("X-Request-ID = %q, want event id %q", requestID, received.EventID)
		}
	})

	t.Run("server errors are surfaced", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		if err := client.NotifyListReady(context.Background(), Notification{Username: "lucy"}); err == nil {
			t.Fatal("expected error for 500 response")
		}
	})

	t.Run("caller supplied event id is kept", func(t *testing.T) {
		var requestID string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID = r.Header.Get("X-Request-ID")
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := NewClient(server.URL)
		notification := Notification{EventID: "evt-123", Username: "lucy"}

		if err := client.NotifyListReady(context.Background(), notification); err != nil {
			t.Fatalf("NotifyListReady: %v", err)
		}
		if requestID != "evt-123" {
			t.Errorf("X-Request-ID = %q, want evt-123", requestID)
		}
	})
}
