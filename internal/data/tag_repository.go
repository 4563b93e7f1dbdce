package data

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"go-blog-app/internal/apperr"
)

// TagRepository handles standalone tag administration. Authoring-time tag
// registration lives in the topic transaction, not here.
type TagRepository struct {
	db *sqlx.DB
}

// NewTagRepository creates a new TagRepository.
func NewTagRepository(db *sqlx.DB) *TagRepository {
	return &TagRepository{db: db}
}

// All retrieves all non-deleted tags ordered by id.
func (r *TagRepository) All(ctx context.Context) ([]*Tag, error) {
	var tags []*Tag
	err := r.db.SelectContext(ctx, &tags,
		`SELECT id, name, is_del FROM tag WHERE is_del=0 ORDER BY id`)
	if err != nil {
		return nil, apperr.Storagef(err, "listing tags")
	}
	return tags, nil
}

// FindByName finds a tag by exact name, deleted or not.
func (r *TagRepository) FindByName(ctx context.Context, name string) (*Tag, error) {
	var tag Tag
	err := r.db.GetContext(ctx, &tag,
		`SELECT id, name, is_del FROM tag WHERE name=?`, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("no such tag")
		}
		return nil, apperr.Storagef(err, "loading tag %q", name)
	}
	return &tag, nil
}

// Rename changes a tag's name. The new name must not belong to a different tag.
func (r *TagRepository) Rename(ctx context.Context, id int64, name string) error {
	var count int64
	if err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM tag WHERE name=? AND id<>?`, name, id); err != nil {
		return apperr.Storagef(err, "checking tag name %q", name)
	}
	if count > 0 {
		return apperr.Conflict("a tag with this name already exists")
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE tag SET name=? WHERE id=?`, name, id); err != nil {
		return apperr.Storagef(err, "renaming tag %d", id)
	}
	return nil
}

// SetDeleted soft-deletes or restores a tag.
func (r *TagRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	flag := 0
	if deleted {
		flag = 1
	}
	if _, err := r.db.ExecContext(ctx,
		`UPDATE tag SET is_del=? WHERE id=?`, flag, id); err != nil {
		return apperr.Storagef(err, "flagging tag %d", id)
	}
	return nil
}
