package data

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"go-blog-app/internal/apperr"
)

// TopicRepository persists topics, their content bodies and their tag
// associations. Every write runs as a single transaction: either the whole
// topic snapshot commits or nothing does.
type TopicRepository struct {
	db *sqlx.DB
}

// NewTopicRepository creates a new TopicRepository.
func NewTopicRepository(db *sqlx.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// Create inserts a topic, its content row and its tag associations atomically
// and returns the new topic id. A non-deleted topic with the same
// (subject_id, slug) aborts the transaction with a conflict error.
//
// The (subject_id, slug) uniqueness is checked inside the transaction rather
// than enforced by a unique index: soft-deleted rows must not block re-use of
// their slug, and MySQL has no partial unique indexes.
func (r *TopicRepository) Create(ctx context.Context, ct *CreateTopic) (int64, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, apperr.Storagef(err, "beginning topic create")
	}
	// Rollback is a no-op once the transaction has been committed.
	defer tx.Rollback()

	taken, err := slugTaken(ctx, tx, ct.SubjectID, ct.Slug, 0)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, apperr.Conflict("a topic with this slug already exists under the subject")
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO topic (title, subject_id, slug, summary, src, author, hit, dateline, is_del)
		 VALUES (?, ?, ?, ?, ?, ?, 0, ?, 0)`,
		ct.Title, ct.SubjectID, ct.Slug, ct.Summary, ct.Source, ct.Author, time.Now().Unix())
	if err != nil {
		return 0, apperr.Storagef(err, "inserting topic")
	}
	topicID, err := res.LastInsertId()
	if err != nil {
		return 0, apperr.Storagef(err, "reading new topic id")
	}

	if err := upsertContent(ctx, tx, topicID, ct.Markdown, ct.HTML); err != nil {
		return 0, err
	}
	if err := replaceTags(ctx, tx, topicID, ct.Tags, false); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, apperr.Storagef(err, "committing topic create")
	}
	return topicID, nil
}

// Update overwrites a topic and its content in place and replaces its tag set
// wholesale. The new (subject_id, slug) pair must not collide with a different
// non-deleted topic.
func (r *TopicRepository) Update(ctx context.Context, ut *UpdateTopic) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, apperr.Storagef(err, "beginning topic update")
	}
	defer tx.Rollback()

	taken, err := slugTaken(ctx, tx, ut.SubjectID, ut.Slug, ut.ID)
	if err != nil {
		return false, err
	}
	if taken {
		return false, apperr.Conflict("a different topic with this slug already exists under the subject")
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE topic SET title=?, subject_id=?, slug=?, summary=?, src=?, author=? WHERE id=?`,
		ut.Title, ut.SubjectID, ut.Slug, ut.Summary, ut.Source, ut.Author, ut.ID)
	if err != nil {
		return false, apperr.Storagef(err, "updating topic %d", ut.ID)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-change
		// update, so confirm the topic actually exists.
		var exists int
		if err := tx.GetContext(ctx, &exists, `SELECT COUNT(*) FROM topic WHERE id=?`, ut.ID); err != nil {
			return false, apperr.Storagef(err, "checking topic %d", ut.ID)
		}
		if exists == 0 {
			return false, apperr.NotFound("no topic to update")
		}
	}

	if err := upsertContent(ctx, tx, ut.ID, ut.Markdown, ut.HTML); err != nil {
		return false, err
	}
	// The tag set is replace-semantics: drop every existing association
	// before inserting the new set.
	if err := replaceTags(ctx, tx, ut.ID, ut.Tags, true); err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, apperr.Storagef(err, "committing topic update")
	}
	return true, nil
}

// slugTaken reports whether a non-deleted topic other than excludeID already
// occupies (subjectID, slug).
func slugTaken(ctx context.Context, tx *sqlx.Tx, subjectID int64, slug string, excludeID int64) (bool, error) {
	var count int64
	var err error
	if excludeID > 0 {
		err = tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM topic WHERE subject_id=? AND slug=? AND is_del=0 AND id<>?`,
			subjectID, slug, excludeID)
	} else {
		err = tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM topic WHERE subject_id=? AND slug=? AND is_del=0`,
			subjectID, slug)
	}
	if err != nil {
		return false, apperr.Storagef(err, "checking slug %q", slug)
	}
	return count > 0, nil
}

// upsertContent inserts the topic_content row on first save and overwrites it
// on edit. The check-then-write runs inside the caller's transaction, so it is
// not racy with respect to the topic it belongs to.
func upsertContent(ctx context.Context, tx *sqlx.Tx, topicID int64, md, html string) error {
	var count int64
	if err := tx.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM topic_content WHERE topic_id=?`, topicID); err != nil {
		return apperr.Storagef(err, "checking content for topic %d", topicID)
	}
	if count > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE topic_content SET md=?, html=? WHERE topic_id=?`, md, html, topicID); err != nil {
			return apperr.Storagef(err, "updating content for topic %d", topicID)
		}
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO topic_content (topic_id, md, html) VALUES (?, ?, ?)`, topicID, md, html); err != nil {
		return apperr.Storagef(err, "inserting content for topic %d", topicID)
	}
	return nil
}

// replaceTags registers every tag named in the comma-separated input and
// associates it with the topic. Tag registration is idempotent: a name that
// already has a tag row resolves to the existing id, deleted or not. When
// clearExisting is set the topic's previous associations are removed first.
func replaceTags(ctx context.Context, tx *sqlx.Tx, topicID int64, tags string, clearExisting bool) error {
	if clearExisting {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM topic_tag WHERE topic_id=?`, topicID); err != nil {
			return apperr.Storagef(err, "clearing tags for topic %d", topicID)
		}
	}

	names := SplitTags(tags)
	if len(names) == 0 {
		return nil
	}

	for _, name := range names {
		tagID, err := upsertTag(ctx, tx, name)
		if err != nil {
			return err
		}
		// names is already deduplicated, so each (topic, tag) pair is
		// inserted at most once.
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO topic_tag (topic_id, tag_id, is_del) VALUES (?, ?, 0)`,
			topicID, tagID); err != nil {
			return apperr.Storagef(err, "associating tag %q with topic %d", name, topicID)
		}
	}
	return nil
}

// upsertTag returns the id of the tag named name, inserting the row if the
// name is not registered yet.
func upsertTag(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	var id int64
	err := tx.GetContext(ctx, &id, `SELECT id FROM tag WHERE name=?`, name)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, apperr.Storagef(err, "looking up tag %q", name)
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO tag (name, is_del) VALUES (?, 0)`, name)
	if err != nil {
		return 0, apperr.Storagef(err, "inserting tag %q", name)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, apperr.Storagef(err, "reading new tag id")
	}
	return id, nil
}

// SplitTags splits a comma-separated tag field into trimmed, deduplicated
// names, preserving first-seen order. Embedded commas cannot be represented.
func SplitTags(tags string) []string {
	if strings.TrimSpace(tags) == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var names []string
	for _, raw := range strings.Split(tags, ",") {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// topicDetailRow is the scan target for the detail join.
type topicDetailRow struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Slug        string `db:"slug"`
	Summary     string `db:"summary"`
	Author      string `db:"author"`
	Hit         int64  `db:"hit"`
	Dateline    int64  `db:"dateline"`
	HTML        string `db:"html"`
	SubjectID   int64  `db:"subject_id"`
	SubjectName string `db:"subject_name"`
	SubjectSlug string `db:"subject_slug"`
}

// GetDetail loads a non-deleted topic by subject slug and topic slug, joined
// with its rendered content and tag names.
func (r *TopicRepository) GetDetail(ctx context.Context, subjectSlug, slug string) (*TopicDetail, error) {
	var row topicDetailRow
	err := r.db.GetContext(ctx, &row,
		`SELECT t.id, t.title, t.slug, t.summary, t.author, t.hit, t.dateline,
		        c.html, s.id AS subject_id, s.name AS subject_name, s.slug AS subject_slug
		 FROM topic t
		 JOIN subject s ON s.id = t.subject_id
		 JOIN topic_content c ON c.topic_id = t.id
		 WHERE s.slug = ? AND t.slug = ? AND t.is_del = 0 AND s.is_del = 0`,
		subjectSlug, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("no such topic")
		}
		return nil, apperr.Storagef(err, "loading topic %s/%s", subjectSlug, slug)
	}

	var tagNames []string
	err = r.db.SelectContext(ctx, &tagNames,
		`SELECT t.name FROM tag t
		 JOIN topic_tag tt ON tt.tag_id = t.id
		 WHERE tt.topic_id = ? AND tt.is_del = 0 AND t.is_del = 0
		 ORDER BY t.id`,
		row.ID)
	if err != nil {
		return nil, apperr.Storagef(err, "loading tags for topic %d", row.ID)
	}

	return &TopicDetail{
		ID:          row.ID,
		Title:       row.Title,
		Slug:        row.Slug,
		Summary:     row.Summary,
		Author:      row.Author,
		Hit:         row.Hit,
		Dateline:    row.Dateline,
		HTML:        row.HTML,
		SubjectID:   row.SubjectID,
		SubjectName: row.SubjectName,
		SubjectSlug: row.SubjectSlug,
		TagNames:    tagNames,
	}, nil
}

// IncrementHit bumps the topic's view counter.
func (r *TopicRepository) IncrementHit(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE topic SET hit = hit + 1 WHERE id=?`, id); err != nil {
		return apperr.Storagef(err, "incrementing hit for topic %d", id)
	}
	return nil
}

// SetDeleted soft-deletes or restores a topic and mirrors the flag onto its
// tag associations so a restored topic keeps its tag set.
func (r *TopicRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperr.Storagef(err, "beginning topic delete/restore")
	}
	defer tx.Rollback()

	flag := 0
	if deleted {
		flag = 1
	}
	if _, err := tx.ExecContext(ctx, `UPDATE topic SET is_del=? WHERE id=?`, flag, id); err != nil {
		return apperr.Storagef(err, "flagging topic %d", id)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE topic_tag SET is_del=? WHERE topic_id=?`, flag, id); err != nil {
		return apperr.Storagef(err, "flagging tags for topic %d", id)
	}

	if err := tx.Commit(); err != nil {
		return apperr.Storagef(err, "committing topic delete/restore")
	}
	return nil
}
