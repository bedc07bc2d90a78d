package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/memoryline/yearbook/internal/services/auth"
	eventsvc "github.com/memoryline/yearbook/internal/services/events"
	"github.com/memoryline/yearbook/internal/transport/http/dto"
	httperrors "github.com/memoryline/yearbook/internal/transport/http/errors"
)

type EventsHandler struct {
	service *eventsvc.Service
}

func NewEventsHandler(service *eventsvc.Service) *EventsHandler {
	return &EventsHandler{service: service}
}

func (h *EventsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "EVENT_SERVICE_UNAVAILABLE", "event service is unavailable")
		return
	}

	var req dto.SubmitEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	event, err := h.service.Submit(r.Context(), identity.UserID, eventsvc.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
	})
	if err != nil {
		if errors.Is(err, eventsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "event validation failed")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to submit event")
		return
	}

	httperrors.Write(w, http.StatusCreated, event)
}

func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "EVENT_SERVICE_UNAVAILABLE", "event service is unavailable")
		return
	}

	events, err := h.service.List(r.Context(), viewerFromRequest(r))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list events")
		return
	}

	httperrors.Write(w, http.StatusOK, events)
}

func (h *EventsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "EVENT_SERVICE_UNAVAILABLE", "event service is unavailable")
		return
	}

	eventID, ok := idFromRequest(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid event id")
		return
	}

	event, err := h.service.Get(r.Context(), viewerFromRequest(r), eventID)
	if err != nil {
		if errors.Is(err, eventsvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "event not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to get event")
		return
	}

	httperrors.Write(w, http.StatusOK, event)
}
