package handlers

import (
	"errors"
	"net/http"

	"github.com/memoryline/yearbook/internal/domain/enums"
	pgrepo "github.com/memoryline/yearbook/internal/repo/postgres"
	authsvc "github.com/memoryline/yearbook/internal/services/auth"
	modsvc "github.com/memoryline/yearbook/internal/services/moderation"
	"github.com/memoryline/yearbook/internal/transport/http/dto"
	httperrors "github.com/memoryline/yearbook/internal/transport/http/errors"
)

type ModerationHandler struct {
	service *modsvc.Service
}

func NewModerationHandler(service *modsvc.Service) *ModerationHandler {
	return &ModerationHandler{service: service}
}

func (h *ModerationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	actor, kind, ok := h.queueArgs(w, r)
	if !ok {
		return
	}

	items, err := h.service.ListPending(r.Context(), actor, kind)
	if err != nil {
		if errors.Is(err, modsvc.ErrNotAdmin) {
			writeForbidden(w, "FORBIDDEN", "admin role required")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to list pending queue")
		return
	}

	results := make([]dto.ModerationQueueItem, 0, len(items))
	for _, item := range items {
		results = append(results, dto.ModerationQueueItem{
			ItemID:      item.ItemID,
			Kind:        string(item.Kind),
			EntityID:    item.EntityID,
			OwnerID:     item.OwnerID,
			Title:       item.Title,
			Preview:     item.Preview,
			PhotoURL:    item.PhotoURL,
			QueueSize:   item.QueueSize,
			SubmittedAt: item.SubmittedAt,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.ModerationPendingResponse{Results: results})
}

func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	actor, kind, ok := h.queueArgs(w, r)
	if !ok {
		return
	}
	entityID, ok := idFromRequest(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid entity id")
		return
	}

	decision, err := h.service.Approve(r.Context(), actor, kind, entityID)
	if err != nil {
		h.writeDecisionError(w, err)
		return
	}

	writeDecision(w, decision)
}

func (h *ModerationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	actor, kind, ok := h.queueArgs(w, r)
	if !ok {
		return
	}
	entityID, ok := idFromRequest(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid entity id")
		return
	}

	var req dto.ModerationRejectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid request body")
		return
	}

	decision, err := h.service.Reject(r.Context(), actor, kind, entityID, req.Reason)
	if err != nil {
		if errors.Is(err, modsvc.ErrRejectReasonRequired) {
			writeBadRequest(w, "VALIDATION_ERROR", "reject reason is required")
			return
		}
		h.writeDecisionError(w, err)
		return
	}

	writeDecision(w, decision)
}

func (h *ModerationHandler) queueArgs(w http.ResponseWriter, r *http.Request) (authsvc.Identity, enums.EntityKind, bool) {
	actor, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, "", false
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_SERVICE_UNAVAILABLE", "moderation service is unavailable")
		return authsvc.Identity{}, "", false
	}

	kind, ok := entityKindFromRequest(r)
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown entity kind")
		return authsvc.Identity{}, "", false
	}

	return actor, kind, true
}

func (h *ModerationHandler) writeDecisionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, modsvc.ErrNotAdmin):
		writeForbidden(w, "FORBIDDEN", "admin role required")
	case errors.Is(err, pgrepo.ErrModerationItemNotFound):
		writeNotFound(w, "NOT_FOUND", "moderation item not found")
	case errors.Is(err, pgrepo.ErrModerationItemDecided):
		// Another admin got there first. The snapshot the caller holds is
		// stale, not wrong.
		writeConflict(w, "ALREADY_DECIDED", "moderation item already decided")
	default:
		writeInternal(w, "INTERNAL_ERROR", "failed to apply moderation decision")
	}
}

func writeDecision(w http.ResponseWriter, decision modsvc.Decision) {
	httperrors.Write(w, http.StatusOK, dto.ModerationDecisionResponse{
		Kind:         string(decision.Kind),
		EntityID:     decision.EntityID,
		Status:       string(decision.Status),
		ModeratorID:  decision.ModeratorID,
		RejectReason: decision.RejectReason,
		DecidedAt:    decision.DecidedAt,
	})
}
