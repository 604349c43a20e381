package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/catalog-server/internal/apperror"
	"github.com/sakif/catalog-server/internal/service"
)

// AdminHandler serves the user-management endpoints. Authorization is
// enforced in the service layer, not here.
type AdminHandler struct {
	admin  *service.AdminService
	auths  *service.AuthService
	logger *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(
	admin *service.AdminService,
	auths *service.AuthService,
	logger *slog.Logger,
) *AdminHandler {
	return &AdminHandler{admin: admin, auths: auths, logger: logger}
}

// HandleListUsers returns every user account.
//
// HTTP: GET /api/admin/users
func (h *AdminHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	principal, err := requestPrincipal(r, h.auths)
	if err != nil {
		writeError(w, err)
		return
	}

	users, err := h.admin.ListUsers(r.Context(), principal)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

// activationRequest is the body for the activation toggle.
type activationRequest struct {
	Activated bool `json:"activated"`
}

// HandleSetActivation sets a user's activated flag.
//
// HTTP: PUT /api/admin/users/{id}/activation
func (h *AdminHandler) HandleSetActivation(w http.ResponseWriter, r *http.Request) {
	principal, err := requestPrincipal(r, h.auths)
	if err != nil {
		writeError(w, err)
		return
	}

	var req activationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("", "invalid JSON body"))
		return
	}

	user, err := h.admin.SetUserActivation(r.Context(), principal, chi.URLParam(r, "id"), req.Activated)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
