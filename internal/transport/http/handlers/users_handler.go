package handlers

import (
	"errors"
	"net/http"

	usersvc "github.com/memoryline/yearbook/internal/services/users"
	httperrors "github.com/memoryline/yearbook/internal/transport/http/errors"
)

type UsersHandler struct {
	service *usersvc.Service
}

func NewUsersHandler(service *usersvc.Service) *UsersHandler {
	return &UsersHandler{service: service}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	users, err := h.service.List(r.Context(), viewerFromRequest(r))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list users")
		return
	}

	httperrors.Write(w, http.StatusOK, users)
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	userID, ok := idFromRequest(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid user id")
		return
	}

	user, err := h.service.Get(r.Context(), viewerFromRequest(r), userID)
	if err != nil {
		if errors.Is(err, usersvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "user not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to get user")
		return
	}

	httperrors.Write(w, http.StatusOK, user)
}
