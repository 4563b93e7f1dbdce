//go:build unit

package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"testing"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/data"
	"go-blog-app/internal/gate"
	"go-blog-app/internal/logger"
)

// nopLogger discards everything; handler tests don't assert on log output.
type nopLogger struct{}

var _ logger.Logger = (*nopLogger)(nil)

func (nopLogger) Debug(msg string)                            {}
func (nopLogger) Info(msg string)                             {}
func (nopLogger) Warn(msg string)                             {}
func (nopLogger) Error(err error, msg string)                 {}
func (nopLogger) Fatal(err error, msg string)                 {}
func (l nopLogger) With(map[string]interface{}) logger.Logger { return l }

// mockRevealer is a mock implementation of the ContentRevealer interface.
type mockRevealer struct {
	lastIDs      []string
	lastVerified bool
	units        []gate.Unit
}

var _ ContentRevealer = (*mockRevealer)(nil)

func (m *mockRevealer) Resolve(ctx context.Context, ids []string, verified bool) ([]gate.Unit, error) {
	m.lastIDs = ids
	m.lastVerified = verified
	return m.units, nil
}

// mockVerifier is a mock implementation of the CaptchaVerifier interface.
type mockVerifier struct {
	verdict   bool
	err       error
	lastToken string
}

var _ CaptchaVerifier = (*mockVerifier)(nil)

func (m *mockVerifier) Verify(ctx context.Context, responseToken string) (bool, error) {
	m.lastToken = responseToken
	return m.verdict, m.err
}

// mockTopicService is a minimal TopicServicer for handler tests.
type mockTopicService struct {
	detail *data.TopicDetail
	tokens []string
	err    error
}

var _ TopicServicer = (*mockTopicService)(nil)

func (m *mockTopicService) Create(ctx context.Context, ct *data.CreateTopic) (int64, error) {
	return 1, m.err
}
func (m *mockTopicService) Update(ctx context.Context, ut *data.UpdateTopic) (bool, error) {
	return true, m.err
}
func (m *mockTopicService) View(ctx context.Context, subjectSlug, slug string) (*data.TopicDetail, []string, error) {
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.detail, m.tokens, nil
}
func (m *mockTopicService) Delete(ctx context.Context, id int64) error  { return m.err }
func (m *mockTopicService) Restore(ctx context.Context, id int64) error { return m.err }

func TestRevealHandlerSuccess(t *testing.T) {
	revealer := &mockRevealer{units: []gate.Unit{{Tag: "p", Content: "hidden text"}}}
	verifier := &mockVerifier{verdict: true}
	h := NewTopicHandler(&mockTopicService{}, revealer, verifier, nopLogger{})

	rr := httptest.NewRecorder()
	req := postForm("/protected-content", url.Values{
		"id":               {"tok1", "tok2"},
		"captcha_response": {"challenge-token"},
	})

	if err := h.revealHandler(rr, req); err != nil {
		t.Fatalf("revealHandler failed: %v", err)
	}
	if verifier.lastToken != "challenge-token" {
		t.Errorf("verifier received token %q", verifier.lastToken)
	}
	if len(revealer.lastIDs) != 2 || !revealer.lastVerified {
		t.Errorf("revealer called with ids=%v verified=%v", revealer.lastIDs, revealer.lastVerified)
	}

	var body struct {
		Units []gate.Unit `json:"units"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(body.Units) != 1 || body.Units[0].Content != "hidden text" {
		t.Errorf("unexpected units: %+v", body.Units)
	}
}

func TestRevealHandlerFailedVerification(t *testing.T) {
	revealer := &mockRevealer{}
	verifier := &mockVerifier{verdict: false}
	h := NewTopicHandler(&mockTopicService{}, revealer, verifier, nopLogger{})

	rr := httptest.NewRecorder()
	req := postForm("/protected-content", url.Values{
		"id":               {"tok1"},
		"captcha_response": {"bogus"},
	})

	err := h.revealHandler(rr, req)
	if !apperr.Is(err, apperr.KindVerification) {
		t.Fatalf("want verification error; got %v", err)
	}
	// The gating engine must never be consulted for an unverified request.
	if revealer.lastIDs != nil {
		t.Error("revealer called despite failed verification")
	}
}

func TestRevealHandlerNoTokens(t *testing.T) {
	h := NewTopicHandler(&mockTopicService{}, &mockRevealer{}, &mockVerifier{verdict: true}, nopLogger{})

	rr := httptest.NewRecorder()
	req := postForm("/protected-content", url.Values{"captcha_response": {"x"}})

	if err := h.revealHandler(rr, req); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("want not-found error for empty token list; got %v", err)
	}
}
