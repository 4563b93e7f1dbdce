// Package session issues, resolves and revokes server-side admin sessions
// held in the keyed store. Session state lives entirely server-side; the
// browser only carries the opaque id in a cookie.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
)

// Store is the slice of the keyed store the session manager needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Record is the payload stored per session. The password hash is denormalized
// so mid-session re-authentication challenges don't need a database read.
type Record struct {
	AdminID      int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"password"`
	IsSys        bool   `json:"is_sys"`
	ExpiresAt    int64  `json:"expires_at"`
}

// Manager implements the session lifecycle against a keyed store.
type Manager struct {
	store Store
	cfg   config.SessionConfig
}

// NewManager creates a session Manager.
func NewManager(store Store, cfg config.SessionConfig) *Manager {
	return &Manager{store: store, cfg: cfg}
}

// Issue creates a session for the given admin and returns the opaque session
// id along with the cookie attribute name the caller should set.
func (m *Manager) Issue(ctx context.Context, admin *data.Admin) (string, string, error) {
	id := newID()
	record := Record{
		AdminID:      admin.ID,
		Username:     admin.Username,
		PasswordHash: admin.Password,
		IsSys:        admin.IsSys,
		ExpiresAt:    time.Now().Add(m.cfg.TTL()).Unix(),
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return "", "", apperr.Storagef(err, "encoding session payload")
	}
	if err := m.store.Set(ctx, m.key(id), string(payload), m.cfg.TTL()); err != nil {
		return "", "", err
	}
	return id, m.cfg.IDName, nil
}

// Resolve looks up the session for a presented id. A missing, expired or
// undecodable record is reported as not-found, never as a server error:
// a malformed session must fail closed, not take requests down.
func (m *Manager) Resolve(ctx context.Context, id string) (*Record, error) {
	if id == "" {
		return nil, apperr.NotFound("no session")
	}
	payload, ok, err := m.store.Get(ctx, m.key(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("no session")
	}
	var record Record
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, apperr.NotFound("no session")
	}
	return &record, nil
}

// Revoke deletes the session for a presented id. Revoking an absent session
// is not an error.
func (m *Manager) Revoke(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, m.key(id))
}

// FromRequest resolves the session carried by the request's cookie.
func (m *Manager) FromRequest(r *http.Request) (*Record, error) {
	cookie, err := r.Cookie(m.cfg.IDName)
	if err != nil {
		return nil, apperr.NotFound("no session")
	}
	return m.Resolve(r.Context(), strings.TrimSpace(cookie.Value))
}

// CookieName returns the configured cookie attribute name.
func (m *Manager) CookieName() string {
	return m.cfg.IDName
}

func (m *Manager) key(id string) string {
	return m.cfg.Prefix + id
}

// newID generates a random opaque session id.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
