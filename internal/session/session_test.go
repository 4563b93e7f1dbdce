//go:build unit

package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/config"
	"go-blog-app/internal/data"
)

// fakeStore is a map-backed Store that honors TTLs against an adjustable clock.
type fakeStore struct {
	entries map[string]fakeEntry
	now     func() time.Time
}

type fakeEntry struct {
	value     string
	expiresAt time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]fakeEntry), now: time.Now}
}

var _ Store = (*fakeStore)(nil)

func (s *fakeStore) Get(ctx context.Context, key string) (string, bool, error) {
	e, ok := s.entries[key]
	if !ok || s.now().After(e.expiresAt) {
		delete(s.entries, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (s *fakeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	s.entries[key] = fakeEntry{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *fakeStore) Delete(ctx context.Context, key string) error {
	delete(s.entries, key)
	return nil
}

func testConfig() config.SessionConfig {
	return config.SessionConfig{Prefix: "admin_session:", IDName: "blog_session", Lifetime: 1800}
}

func testAdmin() *data.Admin {
	return &data.Admin{ID: 7, Username: "root", Password: "$2a$10$hash", IsSys: true}
}

func TestIssueAndResolveRoundTrip(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, testConfig())
	ctx := context.Background()

	id, cookieName, err := m.Issue(ctx, testAdmin())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if id == "" {
		t.Fatal("expected non-empty session id")
	}
	if cookieName != "blog_session" {
		t.Errorf("want cookie name 'blog_session'; got %q", cookieName)
	}
	if _, ok := store.entries["admin_session:"+id]; !ok {
		t.Error("session key not namespaced with the configured prefix")
	}

	record, err := m.Resolve(ctx, id)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if record.AdminID != 7 || record.Username != "root" || !record.IsSys {
		t.Errorf("unexpected record: %+v", record)
	}
	if record.PasswordHash != "$2a$10$hash" {
		t.Error("password hash not denormalized into the session record")
	}
}

func TestResolveAfterExpiry(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, testConfig())
	ctx := context.Background()

	id, _, err := m.Issue(ctx, testAdmin())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	store.now = func() time.Time { return time.Now().Add(31 * time.Minute) }
	if _, err := m.Resolve(ctx, id); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("want not-found after TTL expiry; got %v", err)
	}
}

func TestResolveAfterRevoke(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, testConfig())
	ctx := context.Background()

	id, _, err := m.Issue(ctx, testAdmin())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if err := m.Revoke(ctx, id); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if _, err := m.Resolve(ctx, id); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("want not-found after revoke; got %v", err)
	}
	// Revoking again is idempotent.
	if err := m.Revoke(ctx, id); err != nil {
		t.Errorf("second Revoke must not fail: %v", err)
	}
}

func TestResolveMalformedPayload(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, testConfig())
	ctx := context.Background()

	store.Set(ctx, "admin_session:broken", "{not json", time.Hour)
	if _, err := m.Resolve(ctx, "broken"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("malformed payload must read as not-found; got %v", err)
	}
}

func TestFromRequest(t *testing.T) {
	store := newFakeStore()
	m := NewManager(store, testConfig())
	ctx := context.Background()

	id, _, err := m.Issue(ctx, testAdmin())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	req := httptest.NewRequest("GET", "/admin", nil)
	req.AddCookie(&http.Cookie{Name: "blog_session", Value: id})
	record, err := m.FromRequest(req)
	if err != nil {
		t.Fatalf("FromRequest failed: %v", err)
	}
	if record.Username != "root" {
		t.Errorf("unexpected record: %+v", record)
	}

	bare := httptest.NewRequest("GET", "/admin", nil)
	if _, err := m.FromRequest(bare); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing cookie must read as not-found; got %v", err)
	}
}
