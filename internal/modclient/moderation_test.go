package modclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/memoryline/yearbook/internal/domain/enums"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	client, err := NewClient(server.URL, "admin-token", time.Second)
	if err != nil {
		server.Close()
		t.Fatalf("create client: %v", err)
	}
	return client, server
}

func TestListPendingDecodesBareArray(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/admin/moderation/photos/pending" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer admin-token" {
			t.Fatalf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"item_id":1,"kind":"photo","entity_id":42,"owner_id":7,"queue_size":1,"submitted_at":"2026-05-20T12:00:00Z"}]`))
	})
	defer server.Close()

	items, err := client.ListPending(context.Background(), enums.EntityKindPhoto)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(items) != 1 || items[0].EntityID != 42 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestListPendingDecodesResultsEnvelope(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[{"item_id":1,"kind":"memory","entity_id":11,"owner_id":7,"queue_size":3,"submitted_at":"2026-05-20T12:00:00Z"}]}`))
	})
	defer server.Close()

	items, err := client.ListPending(context.Background(), enums.EntityKindMemory)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(items) != 1 || items[0].QueueSize != 3 {
		t.Fatalf("unexpected items: %+v", items)
	}
}

func TestListPendingRejectsUnknownEnvelope(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"item_id":1,"kind":"photo","entity_id":42,"owner_id":7,"queue_size":1,"submitted_at":"2026-05-20T12:00:00Z"}]}`))
	})
	defer server.Close()

	items, err := client.ListPending(context.Background(), enums.EntityKindPhoto)
	if err == nil {
		t.Fatalf("an unrecognized envelope must fail decode, got items: %+v", items)
	}
	if len(items) != 0 {
		t.Fatalf("no items must be returned on decode failure, got %+v", items)
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected RequestError, got %v", err)
	}
	if IsRetryable(err) {
		t.Fatalf("a decode failure must not be retryable")
	}
}

func TestApproveHitsPerEntityEndpoint(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/admin/moderation/events/42/approve" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"event","entity_id":42,"status":"approved","moderator_id":99,"decided_at":"2026-05-20T12:00:00Z"}`))
	})
	defer server.Close()

	decision, err := client.Approve(context.Background(), enums.EntityKindEvent, 42)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if decision.Status != "approved" || decision.EntityID != 42 {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestRejectSendsReason(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body rejectRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode reject body: %v", err)
		}
		if body.Reason != "blurry photo" {
			t.Fatalf("unexpected reason: %q", body.Reason)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"kind":"photo","entity_id":42,"status":"rejected","moderator_id":99,"reject_reason":"blurry photo","decided_at":"2026-05-20T12:00:00Z"}`))
	})
	defer server.Close()

	decision, err := client.Reject(context.Background(), enums.EntityKindPhoto, 42, "blurry photo")
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if decision.RejectReason != "blurry photo" {
		t.Fatalf("unexpected decision: %+v", decision)
	}
}

func TestConflictMapsToSentinel(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	defer server.Close()

	_, err := client.Approve(context.Background(), enums.EntityKindPhoto, 42)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if IsRetryable(err) {
		t.Fatalf("a conflict must not be retryable")
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	defer server.Close()

	_, err := client.ListPending(context.Background(), enums.EntityKindPhoto)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestServerErrorIsRetryable(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer server.Close()

	_, err := client.ListPending(context.Background(), enums.EntityKindPhoto)
	if err == nil {
		t.Fatalf("expected error on 500 response")
	}
	if !IsRetryable(err) {
		t.Fatalf("a 5xx failure must be retryable")
	}
}

func TestNewClientValidatesInputs(t *testing.T) {
	if _, err := NewClient("", "token", time.Second); err == nil {
		t.Fatalf("empty base url must fail")
	}
	if _, err := NewClient("http://localhost:8080", "", time.Second); err == nil {
		t.Fatalf("empty token must fail")
	}
	if _, err := NewClient("not-a-url", "token", time.Second); err == nil {
		t.Fatalf("invalid base url must fail")
	}
}
