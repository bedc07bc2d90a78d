package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/memoryline/yearbook/internal/domain/enums"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
	authsvc "github.com/memoryline/yearbook/internal/services/auth"
	modsvc "github.com/memoryline/yearbook/internal/services/moderation"
	"github.com/memoryline/yearbook/internal/transport/http/dto"
)

type modTxRunner struct{}

func (modTxRunner) RunTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return fn(ctx, nil)
}

type modQueue struct {
	items map[int64]*pgrepo.ModerationItemRecord
}

func (q *modQueue) ListPending(_ context.Context, kind enums.EntityKind, _ int) ([]pgrepo.ModerationItemRecord, error) {
	out := make([]pgrepo.ModerationItemRecord, 0)
	for _, item := range q.items {
		if item.EntityKind == string(kind) && item.Status == string(enums.ModerationStatusPending) {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (q *modQueue) CountPending(_ context.Context, kind enums.EntityKind) (int, error) {
	count := 0
	for _, item := range q.items {
		if item.EntityKind == string(kind) && item.Status == string(enums.ModerationStatusPending) {
			count++
		}
	}
	return count, nil
}

func (q *modQueue) Decide(_ context.Context, _ pgx.Tx, kind enums.EntityKind, entityID int64, status enums.ModerationStatus, moderatorID int64, reason string) (pgrepo.ModerationItemRecord, error) {
	for _, item := range q.items {
		if item.EntityKind != string(kind) || item.EntityID != entityID {
			continue
		}
		if item.Status != string(enums.ModerationStatusPending) {
			return pgrepo.ModerationItemRecord{}, pgrepo.ErrModerationItemDecided
		}
		now := time.Now().UTC()
		item.Status = string(status)
		item.ModeratorID = &moderatorID
		if reason != "" {
			item.RejectReason = &reason
		}
		item.DecidedAt = &now
		return *item, nil
	}
	return pgrepo.ModerationItemRecord{}, pgrepo.ErrModerationItemNotFound
}

type modSource struct{}

func (modSource) ApplyDecision(_ context.Context, _ pgx.Tx, _ int64, _ enums.ModerationStatus) error {
	return nil
}

func (modSource) Summary(_ context.Context, _ int64) (modsvc.EntitySummary, error) {
	return modsvc.EntitySummary{Title: "graduation ball", Preview: "after-party shots"}, nil
}

func newModerationHandler(queue *modQueue) *ModerationHandler {
	sources := map[enums.EntityKind]modsvc.EntitySource{
		enums.EntityKindMemory: modSource{},
	}
	service := modsvc.NewService(modTxRunner{}, queue, sources, nil, nil, nil, modsvc.Config{})
	return NewModerationHandler(service)
}

func moderationRequest(method, target, body string, identity *authsvc.Identity, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	ctx := req.Context()
	if identity != nil {
		ctx = authsvc.WithIdentity(ctx, *identity)
	}
	routeCtx := chi.NewRouteContext()
	for key, value := range params {
		routeCtx.URLParams.Add(key, value)
	}
	ctx = context.WithValue(ctx, chi.RouteCtxKey, routeCtx)
	return req.WithContext(ctx)
}

func adminIdentity() authsvc.Identity {
	return authsvc.Identity{UserID: 99, SID: "sid-admin", Role: enums.RoleAdmin, Approved: true}
}

func pendingMemoryItem(id, entityID int64) *pgrepo.ModerationItemRecord {
	return &pgrepo.ModerationItemRecord{
		ID:         id,
		EntityKind: string(enums.EntityKindMemory),
		EntityID:   entityID,
		OwnerID:    7,
		Status:     string(enums.ModerationStatusPending),
		CreatedAt:  time.Now().UTC(),
	}
}

func TestListPendingRequiresIdentity(t *testing.T) {
	handler := newModerationHandler(&modQueue{items: map[int64]*pgrepo.ModerationItemRecord{}})

	req := moderationRequest(http.MethodGet, "/admin/moderation/memories/pending", "", nil, map[string]string{"kind": "memories"})
	rr := httptest.NewRecorder()
	handler.ListPending(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusUnauthorized)
	}
}

func TestListPendingForbiddenForMember(t *testing.T) {
	handler := newModerationHandler(&modQueue{items: map[int64]*pgrepo.ModerationItemRecord{}})
	member := authsvc.Identity{UserID: 7, SID: "sid-7", Role: enums.RoleUser, Approved: true}

	req := moderationRequest(http.MethodGet, "/admin/moderation/memories/pending", "", &member, map[string]string{"kind": "memories"})
	rr := httptest.NewRecorder()
	handler.ListPending(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusForbidden)
	}
}

func TestListPendingReturnsEnvelope(t *testing.T) {
	queue := &modQueue{items: map[int64]*pgrepo.ModerationItemRecord{
		1: pendingMemoryItem(1, 11),
	}}
	handler := newModerationHandler(queue)
	admin := adminIdentity()

	req := moderationRequest(http.MethodGet, "/admin/moderation/memories/pending", "", &admin, map[string]string{"kind": "memories"})
	rr := httptest.NewRecorder()
	handler.ListPending(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusOK)
	}

	var response dto.ModerationPendingResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(response.Results) != 1 {
		t.Fatalf("unexpected result count: got=%d want=1", len(response.Results))
	}
	item := response.Results[0]
	if item.EntityID != 11 || item.Title != "graduation ball" || item.QueueSize != 1 {
		t.Fatalf("unexpected queue item: %+v", item)
	}
}

func TestListPendingUnknownKindBadRequest(t *testing.T) {
	handler := newModerationHandler(&modQueue{items: map[int64]*pgrepo.ModerationItemRecord{}})
	admin := adminIdentity()

	req := moderationRequest(http.MethodGet, "/admin/moderation/stickers/pending", "", &admin, map[string]string{"kind": "stickers"})
	rr := httptest.NewRecorder()
	handler.ListPending(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusBadRequest)
	}
}

func TestApproveDecidesItem(t *testing.T) {
	queue := &modQueue{items: map[int64]*pgrepo.ModerationItemRecord{
		1: pendingMemoryItem(1, 11),
	}}
	handler := newModerationHandler(queue)
	admin := adminIdentity()

	req := moderationRequest(http.MethodPost, "/admin/moderation/memories/11/approve", "", &admin, map[string]string{
		"kind": "memories",
		"id":   strconv.FormatInt(11, 10),
	})
	rr := httptest.NewRecorder()
	handler.Approve(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusOK)
	}

	var response dto.ModerationDecisionResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Status != string(enums.ModerationStatusApproved) || response.ModeratorID != admin.UserID {
		t.Fatalf("unexpected decision: %+v", response)
	}
}

func TestApproveDecidedItemConflicts(t *testing.T) {
	item := pendingMemoryItem(1, 11)
	item.Status = string(enums.ModerationStatusRejected)
	handler := newModerationHandler(&modQueue{items: map[int64]*pgrepo.ModerationItemRecord{1: item}})
	admin := adminIdentity()

	req := moderationRequest(http.MethodPost, "/admin/moderation/memories/11/approve", "", &admin, map[string]string{
		"kind": "memories",
		"id":   "11",
	})
	rr := httptest.NewRecorder()
	handler.Approve(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusConflict)
	}
}

func TestRejectRequiresReason(t *testing.T) {
	queue := &modQueue{items: map[int64]*pgrepo.ModerationItemRecord{
		1: pendingMemoryItem(1, 11),
	}}
	handler := newModerationHandler(queue)
	admin := adminIdentity()

	req := moderationRequest(http.MethodPost, "/admin/moderation/memories/11/reject", `{"reason":"  "}`, &admin, map[string]string{
		"kind": "memories",
		"id":   "11",
	})
	rr := httptest.NewRecorder()
	handler.Reject(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusBadRequest)
	}
	if queue.items[1].Status != string(enums.ModerationStatusPending) {
		t.Fatalf("rejected without a reason must leave the item pending")
	}
}

func TestRejectRecordsReason(t *testing.T) {
	queue := &modQueue{items: map[int64]*pgrepo.ModerationItemRecord{
		1: pendingMemoryItem(1, 11),
	}}
	handler := newModerationHandler(queue)
	admin := adminIdentity()

	req := moderationRequest(http.MethodPost, "/admin/moderation/memories/11/reject", `{"reason":"duplicate submission"}`, &admin, map[string]string{
		"kind": "memories",
		"id":   "11",
	})
	rr := httptest.NewRecorder()
	handler.Reject(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rr.Code, http.StatusOK)
	}

	var response dto.ModerationDecisionResponse
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if response.Status != string(enums.ModerationStatusRejected) || response.RejectReason != "duplicate submission" {
		t.Fatalf("unexpected decision: %+v", response)
	}
}
