package service

import (
	"bytes"
	"context"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/data"
)

// TopicRepository defines the authoring and read operations the service needs.
type TopicRepository interface {
	Create(ctx context.Context, ct *data.CreateTopic) (int64, error)
	Update(ctx context.Context, ut *data.UpdateTopic) (bool, error)
	GetDetail(ctx context.Context, subjectSlug, slug string) (*data.TopicDetail, error)
	IncrementHit(ctx context.Context, id int64) error
	SetDeleted(ctx context.Context, id int64, deleted bool) error
}

// ContentGater redacts article HTML behind reveal tokens.
type ContentGater interface {
	Gate(ctx context.Context, html string) (string, []string, error)
}

// TopicService provides business logic for authoring and reading topics.
type TopicService struct {
	repo      TopicRepository
	gater     ContentGater
	markdown  goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// NewTopicService creates a new TopicService.
func NewTopicService(repo TopicRepository, gater ContentGater) *TopicService {
	// UGCPolicy keeps basic formatting (links, lists, code blocks) while
	// stripping dangerous HTML from the rendered markdown.
	return &TopicService{
		repo:      repo,
		gater:     gater,
		markdown:  goldmark.New(goldmark.WithExtensions(extension.GFM)),
		sanitizer: bluemonday.UGCPolicy(),
	}
}

// Create renders and sanitizes the topic's markdown, then persists the whole
// snapshot atomically. Returns the new topic id.
func (s *TopicService) Create(ctx context.Context, ct *data.CreateTopic) (int64, error) {
	html, err := s.render(ct.Markdown)
	if err != nil {
		return 0, err
	}
	ct.HTML = html
	return s.repo.Create(ctx, ct)
}

// Update re-renders the markdown and overwrites the stored snapshot.
func (s *TopicService) Update(ctx context.Context, ut *data.UpdateTopic) (bool, error) {
	html, err := s.render(ut.Markdown)
	if err != nil {
		return false, err
	}
	ut.HTML = html
	return s.repo.Update(ctx, ut)
}

// View loads a topic for display, counts the hit and gates the content HTML.
// It returns the detail (with display HTML substituted in) and the reveal
// token ids for the redacted blocks.
func (s *TopicService) View(ctx context.Context, subjectSlug, slug string) (*data.TopicDetail, []string, error) {
	detail, err := s.repo.GetDetail(ctx, subjectSlug, slug)
	if err != nil {
		return nil, nil, err
	}
	// View counting is best effort; a failed bump must not block the read.
	_ = s.repo.IncrementHit(ctx, detail.ID)

	display, tokens, err := s.gater.Gate(ctx, detail.HTML)
	if err != nil {
		return nil, nil, err
	}
	detail.HTML = display
	return detail, tokens, nil
}

// Delete soft-deletes a topic; Restore brings it back with its tag set.
func (s *TopicService) Delete(ctx context.Context, id int64) error {
	return s.repo.SetDeleted(ctx, id, true)
}

// Restore un-deletes a topic.
func (s *TopicService) Restore(ctx context.Context, id int64) error {
	return s.repo.SetDeleted(ctx, id, false)
}

func (s *TopicService) render(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(markdown), &buf); err != nil {
		return "", apperr.Storagef(err, "rendering markdown")
	}
	return s.sanitizer.Sanitize(buf.String()), nil
}
