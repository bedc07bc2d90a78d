package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/memoryline/yearbook/internal/services/auth"
	profilesvc "github.com/memoryline/yearbook/internal/services/profiles"
	"github.com/memoryline/yearbook/internal/transport/http/dto"
	httperrors "github.com/memoryline/yearbook/internal/transport/http/errors"
)

type ProfilesHandler struct {
	service *profilesvc.Service
}

func NewProfilesHandler(service *profilesvc.Service) *ProfilesHandler {
	return &ProfilesHandler{service: service}
}

func (h *ProfilesHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	var req dto.SubmitProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	profile, err := h.service.Submit(r.Context(), identity.UserID, profilesvc.SubmitInput{
		Nickname: req.Nickname,
		FullName: req.FullName,
		Bio:      req.Bio,
		Quote:    req.Quote,
		GradYear: req.GradYear,
		PhotoKey: req.PhotoKey,
	})
	if err != nil {
		if errors.Is(err, profilesvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "profile validation failed")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to submit profile")
		return
	}

	httperrors.Write(w, http.StatusCreated, profile)
}

func (h *ProfilesHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	views, err := h.service.List(r.Context(), viewerFromRequest(r))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list profiles")
		return
	}

	httperrors.Write(w, http.StatusOK, views)
}

func (h *ProfilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROFILE_SERVICE_UNAVAILABLE", "profile service is unavailable")
		return
	}

	profileID, ok := idFromRequest(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
		return
	}

	view, err := h.service.Get(r.Context(), viewerFromRequest(r), profileID)
	if err != nil {
		if errors.Is(err, profilesvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "profile not found")
			return
		}
		if errors.Is(err, profilesvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid profile id")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to get profile")
		return
	}

	httperrors.Write(w, http.StatusOK, view)
}
