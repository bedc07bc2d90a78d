package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/memoryline/yearbook/internal/services/auth"
	memorysvc "github.com/memoryline/yearbook/internal/services/memories"
	"github.com/memoryline/yearbook/internal/transport/http/dto"
	httperrors "github.com/memoryline/yearbook/internal/transport/http/errors"
)

type MemoriesHandler struct {
	service *memorysvc.Service
}

func NewMemoriesHandler(service *memorysvc.Service) *MemoriesHandler {
	return &MemoriesHandler{service: service}
}

func (h *MemoriesHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "MEMORY_SERVICE_UNAVAILABLE", "memory service is unavailable")
		return
	}

	var req dto.SubmitMemoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	memory, err := h.service.Submit(r.Context(), identity.UserID, req.Title, req.Body)
	if err != nil {
		if errors.Is(err, memorysvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "memory validation failed")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to submit memory")
		return
	}

	httperrors.Write(w, http.StatusCreated, memory)
}

func (h *MemoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEMORY_SERVICE_UNAVAILABLE", "memory service is unavailable")
		return
	}

	memories, err := h.service.List(r.Context(), viewerFromRequest(r))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list memories")
		return
	}

	httperrors.Write(w, http.StatusOK, memories)
}

func (h *MemoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "MEMORY_SERVICE_UNAVAILABLE", "memory service is unavailable")
		return
	}

	memoryID, ok := idFromRequest(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid memory id")
		return
	}

	memory, err := h.service.Get(r.Context(), viewerFromRequest(r), memoryID)
	if err != nil {
		if errors.Is(err, memorysvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "memory not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to get memory")
		return
	}

	httperrors.Write(w, http.StatusOK, memory)
}
