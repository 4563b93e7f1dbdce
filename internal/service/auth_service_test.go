//go:build unit

package service

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/data"
	"go-blog-app/internal/session"
)

// mockAdminRepository is a mock implementation of the AdminRepository interface.
type mockAdminRepository struct {
	admin             *data.Admin
	updatedID         int64
	updatedHash       string
	findErrToReturn   error
	updateErrToReturn error
}

var _ AdminRepository = (*mockAdminRepository)(nil)

func (m *mockAdminRepository) FindByUsername(ctx context.Context, username string) (*data.Admin, error) {
	if m.findErrToReturn != nil {
		return nil, m.findErrToReturn
	}
	if m.admin == nil || m.admin.Username != username {
		return nil, apperr.NotFound("no such admin")
	}
	return m.admin, nil
}

func (m *mockAdminRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	m.updatedID = id
	m.updatedHash = passwordHash
	return m.updateErrToReturn
}

// mockSessionManager records issued and revoked sessions.
type mockSessionManager struct {
	issuedFor  *data.Admin
	revokedID  string
	idToReturn string
	issueErr   error
}

var _ SessionManager = (*mockSessionManager)(nil)

func (m *mockSessionManager) Issue(ctx context.Context, admin *data.Admin) (string, string, error) {
	m.issuedFor = admin
	if m.issueErr != nil {
		return "", "", m.issueErr
	}
	return m.idToReturn, "blog_session", nil
}

func (m *mockSessionManager) Revoke(ctx context.Context, id string) error {
	m.revokedID = id
	return nil
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing test password: %v", err)
	}
	return string(hash)
}

func TestAuthService_LoginSuccess(t *testing.T) {
	admin := &data.Admin{ID: 1, Username: "root", Password: hashFor(t, "hunter2")}
	sessions := &mockSessionManager{idToReturn: "sess-1"}
	svc := NewAuthService(&mockAdminRepository{admin: admin}, sessions)

	id, cookieName, err := svc.Login(context.Background(), "root", "hunter2")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if id != "sess-1" || cookieName != "blog_session" {
		t.Errorf("unexpected session: id=%q cookie=%q", id, cookieName)
	}
	if sessions.issuedFor != admin {
		t.Error("session issued for the wrong admin")
	}
}

func TestAuthService_LoginWrongPassword(t *testing.T) {
	admin := &data.Admin{ID: 1, Username: "root", Password: hashFor(t, "hunter2")}
	sessions := &mockSessionManager{}
	svc := NewAuthService(&mockAdminRepository{admin: admin}, sessions)

	_, _, err := svc.Login(context.Background(), "root", "wrong")
	if !apperr.Is(err, apperr.KindAuth) {
		t.Fatalf("want auth error; got %v", err)
	}
	if sessions.issuedFor != nil {
		t.Error("no session may be issued on a failed login")
	}
}

func TestAuthService_LoginUnknownUser(t *testing.T) {
	svc := NewAuthService(&mockAdminRepository{}, &mockSessionManager{})
	_, _, err := svc.Login(context.Background(), "ghost", "whatever")
	// Same error kind as a wrong password, so usernames can't be probed.
	if !apperr.Is(err, apperr.KindAuth) {
		t.Fatalf("want auth error; got %v", err)
	}
}

func TestAuthService_Logout(t *testing.T) {
	sessions := &mockSessionManager{}
	svc := NewAuthService(&mockAdminRepository{}, sessions)
	if err := svc.Logout(context.Background(), "sess-9"); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	if sessions.revokedID != "sess-9" {
		t.Errorf("want session 'sess-9' revoked; got %q", sessions.revokedID)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	admins := &mockAdminRepository{}
	svc := NewAuthService(admins, &mockSessionManager{})
	record := &session.Record{AdminID: 4, PasswordHash: hashFor(t, "old-pass")}

	if err := svc.ChangePassword(context.Background(), record, "bad-guess", "new-pass"); !apperr.Is(err, apperr.KindAuth) {
		t.Fatalf("want auth error for wrong current password; got %v", err)
	}
	if admins.updatedID != 0 {
		t.Fatal("password must not change after a failed re-authentication")
	}

	if err := svc.ChangePassword(context.Background(), record, "old-pass", "new-pass"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}
	if admins.updatedID != 4 {
		t.Errorf("password updated for wrong admin id %d", admins.updatedID)
	}
	if bcrypt.CompareHashAndPassword([]byte(admins.updatedHash), []byte("new-pass")) != nil {
		t.Error("stored hash does not match the new password")
	}
}
