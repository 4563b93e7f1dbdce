package handler

import (
	"context"
	"net/http"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/middleware"
	"go-blog-app/internal/session"
)

// AuthServicer defines the authentication operations the handlers need.
type AuthServicer interface {
	Login(ctx context.Context, username, password string) (string, string, error)
	Logout(ctx context.Context, sessionID string) error
	ChangePassword(ctx context.Context, record *session.Record, current, next string) error
}

// AuthHandler holds the dependencies for the authentication handlers.
type AuthHandler struct {
	auth       AuthServicer
	cookieName string
	secure     bool
	lifetime   int
}

// NewAuthHandler creates a new AuthHandler. lifetime is the session TTL in
// seconds, used as the cookie Max-Age so the cookie and the server-side
// record expire together.
func NewAuthHandler(auth AuthServicer, cookieName string, lifetime int, secure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieName: cookieName, lifetime: lifetime, secure: secure}
}

// loginHandler verifies the credentials and sets the session cookie.
func (h *AuthHandler) loginHandler(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return apperr.Auth("malformed login form")
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		return apperr.Auth("username and password are required")
	}

	id, cookieName, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   h.lifetime,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// logoutHandler revokes the server-side session and clears the cookie.
func (h *AuthHandler) logoutHandler(w http.ResponseWriter, r *http.Request) error {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.auth.Logout(r.Context(), cookie.Value); err != nil {
			return err
		}
	}
	// Clear the cookie regardless of whether a session existed.
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// changePasswordHandler re-authenticates the current session and stores a new
// password hash.
func (h *AuthHandler) changePasswordHandler(w http.ResponseWriter, r *http.Request) error {
	record := middleware.GetSession(r.Context())
	if record == nil {
		return apperr.Auth("UNAUTHENTICATED")
	}
	if err := r.ParseForm(); err != nil {
		return apperr.Auth("malformed password form")
	}
	current := r.PostFormValue("password")
	next := r.PostFormValue("new_password")
	if next == "" || next != r.PostFormValue("re_password") {
		return apperr.Auth("new passwords do not match")
	}
	if err := h.auth.ChangePassword(r.Context(), record, current, next); err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
