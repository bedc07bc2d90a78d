package handlers

import (
	"errors"
	"net/http"

	authsvc "github.com/memoryline/yearbook/internal/services/auth"
	projectsvc "github.com/memoryline/yearbook/internal/services/projects"
	"github.com/memoryline/yearbook/internal/transport/http/dto"
	httperrors "github.com/memoryline/yearbook/internal/transport/http/errors"
)

type ProjectsHandler struct {
	service *projectsvc.Service
}

func NewProjectsHandler(service *projectsvc.Service) *ProjectsHandler {
	return &ProjectsHandler{service: service}
}

func (h *ProjectsHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "PROJECT_SERVICE_UNAVAILABLE", "project service is unavailable")
		return
	}

	var req dto.SubmitProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	project, err := h.service.Submit(r.Context(), identity.UserID, projectsvc.SubmitInput{
		Title:       req.Title,
		Description: req.Description,
		RepoURL:     req.RepoURL,
		DemoURL:     req.DemoURL,
	})
	if err != nil {
		if errors.Is(err, projectsvc.ErrValidation) {
			writeBadRequest(w, "VALIDATION_ERROR", "project validation failed")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to submit project")
		return
	}

	httperrors.Write(w, http.StatusCreated, project)
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROJECT_SERVICE_UNAVAILABLE", "project service is unavailable")
		return
	}

	projects, err := h.service.List(r.Context(), viewerFromRequest(r))
	if err != nil {
		writeInternal(w, "INTERNAL_ERROR", "failed to list projects")
		return
	}

	httperrors.Write(w, http.StatusOK, projects)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "PROJECT_SERVICE_UNAVAILABLE", "project service is unavailable")
		return
	}

	projectID, ok := idFromRequest(r, "id")
	if !ok {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid project id")
		return
	}

	project, err := h.service.Get(r.Context(), viewerFromRequest(r), projectID)
	if err != nil {
		if errors.Is(err, projectsvc.ErrNotFound) {
			writeNotFound(w, "NOT_FOUND", "project not found")
			return
		}
		writeInternal(w, "INTERNAL_ERROR", "failed to get project")
		return
	}

	httperrors.Write(w, http.StatusOK, project)
}
