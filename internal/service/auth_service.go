package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/data"
	"go-blog-app/internal/session"
)

// AdminRepository defines the account operations the auth service needs.
type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*data.Admin, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// SessionManager defines the session lifecycle operations the auth service needs.
type SessionManager interface {
	Issue(ctx context.Context, admin *data.Admin) (string, string, error)
	Revoke(ctx context.Context, id string) error
}

// AuthService handles admin login, logout and password changes.
type AuthService struct {
	admins   AdminRepository
	sessions SessionManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(admins AdminRepository, sessions SessionManager) *AuthService {
	return &AuthService{admins: admins, sessions: sessions}
}

// Login verifies the credentials and issues a session. The same auth error is
// returned for an unknown username and a wrong password.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, string, error) {
	admin, err := s.admins.FindByUsername(ctx, username)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return "", "", apperr.Auth("invalid username or password")
		}
		return "", "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)); err != nil {
		return "", "", apperr.Auth("invalid username or password")
	}
	return s.sessions.Issue(ctx, admin)
}

// Logout revokes the session. Logging out an absent session is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// ChangePassword re-authenticates against the hash denormalized into the
// session record, then stores the new hash.
func (s *AuthService) ChangePassword(ctx context.Context, record *session.Record, current, next string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(record.PasswordHash), []byte(current)); err != nil {
		return apperr.Auth("current password is incorrect")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Storagef(err, "hashing password")
	}
	return s.admins.UpdatePassword(ctx, record.AdminID, string(hash))
}

// HashPassword produces a bcrypt hash for account provisioning.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperr.Storagef(err, "hashing password")
	}
	return string(hash), nil
}
