package handlers

import (
	"errors"
	"net/http"
	"time"

	authsvc "github.com/memoryline/yearbook/internal/services/auth"
	usersvc "github.com/memoryline/yearbook/internal/services/users"
	"github.com/memoryline/yearbook/internal/transport/http/dto"
	httperrors "github.com/memoryline/yearbook/internal/transport/http/errors"
)

type AuthHandler struct {
	auth  *authsvc.Service
	users *usersvc.Service
}

func NewAuthHandler(auth *authsvc.Service, users *usersvc.Service) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

// Register creates a pending account. The response carries no tokens: the
// caller logs in separately, and the account stays out of public listings
// until a moderator approves it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if h.users == nil {
		writeInternal(w, "USER_SERVICE_UNAVAILABLE", "user service is unavailable")
		return
	}

	var req dto.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, usersvc.ErrUsernameTaken):
			writeConflict(w, "USERNAME_TAKEN", "username is already taken")
		case errors.Is(err, usersvc.ErrValidation):
			writeBadRequest(w, "VALIDATION_ERROR", "registration validation failed")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to register")
		}
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.MeResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     string(user.Role),
		Approved: user.Approved(),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidInput):
			writeBadRequest(w, "INVALID_REQUEST", "username and password are required")
		case errors.Is(err, authsvc.ErrInvalidCredentials):
			writeUnauthorized(w, "INVALID_CREDENTIALS", "invalid username or password")
		default:
			writeInternal(w, "INTERNAL_ERROR", "failed to log in")
		}
		return
	}

	writeTokens(w, res)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.RefreshRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		handleAuthError(w, err)
		return
	}

	writeTokens(w, res)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.auth.Logout(r.Context(), identity.SID); err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	if err := h.auth.LogoutAll(r.Context(), identity.UserID); err != nil {
		handleAuthError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.OKResponse{OK: true})
}

// Me reflects the live session, so a freshly approved account sees
// approved=true here without re-authenticating.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}

	httperrors.Write(w, http.StatusOK, dto.MeResponse{
		ID:       identity.UserID,
		Role:     string(identity.Role),
		Approved: identity.Approved,
	})
}

func writeTokens(w http.ResponseWriter, res authsvc.AuthResult) {
	httperrors.Write(w, http.StatusOK, dto.AuthTokensResponse{
		AccessToken:  res.AccessToken,
		RefreshToken: res.RefreshToken,
		ExpiresInSec: maxInt64(0, int64(time.Until(res.AccessExpires).Seconds())),
		Me: dto.MeResponse{
			ID:       res.Me.ID,
			Username: res.Me.Username,
			Role:     string(res.Me.Role),
			Approved: res.Me.Approved,
		},
	})
}

func handleAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, authsvc.ErrInvalidInput):
		writeBadRequest(w, "INVALID_REQUEST", "request validation failed")
	case errors.Is(err, authsvc.ErrUnauthorized):
		writeUnauthorized(w, "UNAUTHORIZED", "authentication failed")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
