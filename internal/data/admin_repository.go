package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"go-blog-app/internal/apperr"
)

// AdminRepository handles backend account storage. Password hashing is the
// auth service's concern; this layer stores whatever hash it is given.
type AdminRepository struct {
	db *sqlx.DB
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(db *sqlx.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// FindByUsername finds a non-deleted admin account.
func (r *AdminRepository) FindByUsername(ctx context.Context, username string) (*Admin, error) {
	var admin Admin
	err := r.db.GetContext(ctx, &admin,
		`SELECT id, username, password, is_sys, is_del FROM admin WHERE username=? AND is_del=0`,
		username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("no such admin")
		}
		return nil, apperr.Storagef(err, "loading admin %q", username)
	}
	return &admin, nil
}

// Create inserts a new admin account with an already-hashed password.
func (r *AdminRepository) Create(ctx context.Context, username, passwordHash string, isSys bool) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM admin WHERE username=?`, username); err != nil {
		return 0, apperr.Storagef(err, "checking admin username %q", username)
	}
	if count > 0 {
		return 0, apperr.Conflict("an admin with this username already exists")
	}
	sys := 0
	if isSys {
		sys = 1
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO admin (username, password, is_sys, is_del) VALUES (?, ?, ?, 0)`,
		username, passwordHash, sys)
	if err != nil {
		return 0, apperr.Storagef(err, "inserting admin")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Storagef(err, "reading new admin id")
	}
	return id, nil
}

// UpdatePassword replaces an admin's password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE admin SET password=? WHERE id=?`, passwordHash, id); err != nil {
		return apperr.Storagef(err, "updating password for admin %d", id)
	}
	return nil
}

// SetDeleted flips the soft-delete flag on an admin account. Deleted
// accounts can no longer log in but keep their authorship history.
func (r *AdminRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	del := 0
	if deleted {
		del = 1
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE admin SET is_del=? WHERE id=?`, del, id)
	if err != nil {
		return apperr.Storagef(err, "flagging admin %d", id)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperr.NotFound("no such admin")
	}
	return nil
}
