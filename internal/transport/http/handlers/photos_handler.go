package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	authsvc "github.com/memoryline/yearbook/internal/services/auth"
	photosvc "github.com/memoryline/yearbook/internal/services/photos"
	httperrors "github.com/memoryline/yearbook/internal/transport/http/errors"
)

const maxUploadMemory = 16 << 20

type PhotosHandler struct {
	service *photosvc.Service
}

func NewPhotosHandler(service *photosvc.Service) *PhotosHandler {
	return &PhotosHandler{service: service}
}

// Upload accepts multipart/form-data with a "photo" file part and optional
// "caption" and "event_id" fields.
func (h *PhotosHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "multipart form expected")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "photo file part is required")
		return
	}
	defer file.Close()

	var eventID *int64
	if raw := strings.TrimSpace(r.FormValue("event_id")); raw != "" {
		parsed, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil || parsed <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid event id")
			return
		}
		eventID = &parsed
	}

	photo, err := h.service.Upload(r.Context(), identity.UserID, photosvc.UploadInput{
		EventID:     eventID,
		Caption:     r.FormValue("caption"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
		Size:        header.Size,
	})
	if err != nil {
		if errors.Is(err, photosvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "photo validation failed")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to upload photo")
		return
	}

	httperrors.Write(w, http.StatusCreated, photo)
}

func (h *PhotosHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	var eventID *int64
	if raw := strings.TrimSpace(r.URL.Query().Get("event_id")); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "VALIDATION_ERROR", "invalid event id")
			return
		}
		eventID = &parsed
	}

	views, err := h.service.List(r.Context(), viewerFromRequest(r), eventID)
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list photos")
		return
	}

	httperrors.Write(w, http.StatusOK, views)
}

func (h *PhotosHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PHOTO_SERVICE_UNAVAILABLE", "photo service is unavailable")
		return
	}

	photoID, ok := idFromRequest(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid photo id")
		return
	}

	view, err := h.service.Get(r.Context(), viewerFromRequest(r), photoID)
	if err != nil {
		if errors.Is(err, photosvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "photo not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to get photo")
		return
	}

	httperrors.Write(w, http.StatusOK, view)
}
