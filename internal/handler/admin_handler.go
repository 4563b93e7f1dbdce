package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/service"
)

// AdminProvisioner defines the account operations reserved for sys admins.
type AdminProvisioner interface {
	Create(ctx context.Context, username, passwordHash string, isSys bool) (int64, error)
	SetDeleted(ctx context.Context, id int64, deleted bool) error
}

// AdminHandler manages backend accounts. Its routes are restricted to the
// sys role by policy.
type AdminHandler struct {
	admins AdminProvisioner
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admins AdminProvisioner) *AdminHandler {
	return &AdminHandler{admins: admins}
}

func (h *AdminHandler) createAdminHandler(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return apperr.Conflict("malformed admin form")
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		return apperr.Conflict("username and password are required")
	}
	hash, err := service.HashPassword(password)
	if err != nil {
		return err
	}
	isSys := r.PostFormValue("is_sys") == "1"
	id, err := h.admins.Create(r.Context(), username, hash, isSys)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *AdminHandler) deleteAdminHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return apperr.NotFound("no such admin")
	}
	if err := h.admins.SetDeleted(r.Context(), id, true); err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
