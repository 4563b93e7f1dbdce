//go:build unit

package service

import (
	"context"
	"strings"
	"testing"

	"go-blog-app/internal/data"
)

// mockTopicRepository is a mock implementation of the TopicRepository interface.
type mockTopicRepository struct {
	errToReturn    error
	detailToReturn *data.TopicDetail

	createCalled       bool
	updateCalled       bool
	incrementHitCalled int
	setDeletedCalled   bool
	lastDeletedFlag    bool
	lastCreate         *data.CreateTopic
	lastUpdate         *data.UpdateTopic
}

var _ TopicRepository = (*mockTopicRepository)(nil)

func (m *mockTopicRepository) Create(ctx context.Context, ct *data.CreateTopic) (int64, error) {
	m.createCalled = true
	m.lastCreate = ct
	if m.errToReturn != nil {
		return 0, m.errToReturn
	}
	return 1, nil
}

func (m *mockTopicRepository) Update(ctx context.Context, ut *data.UpdateTopic) (bool, error) {
	m.updateCalled = true
	m.lastUpdate = ut
	if m.errToReturn != nil {
		return false, m.errToReturn
	}
	return true, nil
}

func (m *mockTopicRepository) GetDetail(ctx context.Context, subjectSlug, slug string) (*data.TopicDetail, error) {
	if m.errToReturn != nil {
		return nil, m.errToReturn
	}
	return m.detailToReturn, nil
}

func (m *mockTopicRepository) IncrementHit(ctx context.Context, id int64) error {
	m.incrementHitCalled++
	return nil
}

func (m *mockTopicRepository) SetDeleted(ctx context.Context, id int64, deleted bool) error {
	m.setDeletedCalled = true
	m.lastDeletedFlag = deleted
	return m.errToReturn
}

// mockGater records the HTML it was asked to gate.
type mockGater struct {
	lastInput string
	display   string
	tokens    []string
}

var _ ContentGater = (*mockGater)(nil)

func (m *mockGater) Gate(ctx context.Context, html string) (string, []string, error) {
	m.lastInput = html
	if m.display == "" {
		return html, m.tokens, nil
	}
	return m.display, m.tokens, nil
}

func TestTopicService_CreateRendersAndSanitizes(t *testing.T) {
	repo := &mockTopicRepository{}
	svc := NewTopicService(repo, &mockGater{})
	ctx := context.Background()

	_, err := svc.Create(ctx, &data.CreateTopic{
		Title:     "t",
		SubjectID: 1,
		Slug:      "t",
		Markdown:  "# Hello\n\n<script>alert(1)</script>\n\nSome *text*.",
		Tags:      "go",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !repo.createCalled {
		t.Fatal("expected repository Create to be called")
	}
	html := repo.lastCreate.HTML
	if !strings.Contains(html, "<h1>Hello</h1>") {
		t.Errorf("markdown heading not rendered: %q", html)
	}
	if !strings.Contains(html, "<em>text</em>") {
		t.Errorf("markdown emphasis not rendered: %q", html)
	}
	if strings.Contains(html, "<script>") {
		t.Errorf("script tag survived sanitization: %q", html)
	}
}

func TestTopicService_ViewGatesContent(t *testing.T) {
	repo := &mockTopicRepository{
		detailToReturn: &data.TopicDetail{ID: 3, HTML: "<p>a</p><p>b</p>"},
	}
	gater := &mockGater{display: "<p>a</p><div>gated</div>", tokens: []string{"tok1"}}
	svc := NewTopicService(repo, gater)

	detail, tokens, err := svc.View(context.Background(), "go", "slug")
	if err != nil {
		t.Fatalf("View failed: %v", err)
	}
	if gater.lastInput != "<p>a</p><p>b</p>" {
		t.Errorf("gater received %q", gater.lastInput)
	}
	if detail.HTML != "<p>a</p><div>gated</div>" {
		t.Errorf("detail HTML not replaced with display HTML: %q", detail.HTML)
	}
	if len(tokens) != 1 || tokens[0] != "tok1" {
		t.Errorf("unexpected tokens: %v", tokens)
	}
	if repo.incrementHitCalled != 1 {
		t.Errorf("want one hit increment; got %d", repo.incrementHitCalled)
	}
}

func TestTopicService_DeleteRestore(t *testing.T) {
	repo := &mockTopicRepository{}
	svc := NewTopicService(repo, &mockGater{})
	ctx := context.Background()

	if err := svc.Delete(ctx, 5); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !repo.setDeletedCalled || !repo.lastDeletedFlag {
		t.Error("Delete must flag the topic as deleted")
	}
	if err := svc.Restore(ctx, 5); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if repo.lastDeletedFlag {
		t.Error("Restore must clear the deleted flag")
	}
}
