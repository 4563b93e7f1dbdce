package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"go-blog-app/internal/apperr"
)

// SubjectRepository handles database operations for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// All retrieves all non-deleted subjects ordered by id.
func (r *SubjectRepository) All(ctx context.Context) ([]*Subject, error) {
	var subjects []*Subject
	err := r.db.SelectContext(ctx, &subjects,
		`SELECT id, name, slug, summary, is_del FROM subject WHERE is_del=0 ORDER BY id`)
	if err != nil {
		return nil, apperr.Storagef(err, "listing subjects")
	}
	return subjects, nil
}

// GetBySlug finds a non-deleted subject by its slug.
func (r *SubjectRepository) GetBySlug(ctx context.Context, slug string) (*Subject, error) {
	var subject Subject
	err := r.db.GetContext(ctx, &subject,
		`SELECT id, name, slug, summary, is_del FROM subject WHERE slug=? AND is_del=0`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("no such subject")
		}
		return nil, apperr.Storagef(err, "loading subject %q", slug)
	}
	return &subject, nil
}

// Create inserts a new subject. A duplicate slug is a conflict.
func (r *SubjectRepository) Create(ctx context.Context, name, slug, summary string) (int64, error) {
	var count int64
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM subject WHERE slug=?`, slug); err != nil {
		return 0, apperr.Storagef(err, "checking subject slug %q", slug)
	}
	if count > 0 {
		return 0, apperr.Conflict("a subject with this slug already exists")
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO subject (name, slug, summary, is_del) VALUES (?, ?, ?, 0)`,
		name, slug, summary)
	if err != nil {
		return 0, apperr.Storagef(err, "inserting subject")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Storagef(err, "reading new subject id")
	}
	return id, nil
}

// Update renames a subject. The new slug must not belong to a different subject.
func (r *SubjectRepository) Update(ctx context.Context, id int64, name, slug, summary string) error {
	var count int64
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM subject WHERE slug=? AND id<>?`, slug, id); err != nil {
		return apperr.Storagef(err, "checking subject slug %q", slug)
	}
	if count > 0 {
		return apperr.Conflict("a different subject with this slug already exists")
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE subject SET name=?, slug=?, summary=? WHERE id=?`,
		name, slug, summary, id); err != nil {
		return apperr.Storagef(err, "updating subject %d", id)
	}
	return nil
}

// SetDeleted soft-deletes or restores a subject.
func (r *SubjectRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	flag := 0
	if deleted {
		flag = 1
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE subject SET is_del=? WHERE id=?`, flag, id); err != nil {
		return apperr.Storagef(err, "flagging subject %d", id)
	}
	return nil
}
