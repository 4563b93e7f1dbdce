package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/data"
	"go-blog-app/internal/gate"
	"go-blog-app/internal/logger"
)

// TopicServicer defines the topic operations the handlers need.
type TopicServicer interface {
	Create(ctx context.Context, ct *data.CreateTopic) (int64, error)
	Update(ctx context.Context, ut *data.UpdateTopic) (bool, error)
	View(ctx context.Context, subjectSlug, slug string) (*data.TopicDetail, []string, error)
	Delete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
}

// ContentRevealer resolves reveal tokens back into content units.
type ContentRevealer interface {
	Resolve(ctx context.Context, ids []string, verified bool) ([]gate.Unit, error)
}

// CaptchaVerifier is the human-verification oracle.
type CaptchaVerifier interface {
	Verify(ctx context.Context, responseToken string) (bool, error)
}

// TopicHandler holds the dependencies for the topic handlers.
type TopicHandler struct {
	topics   TopicServicer
	revealer ContentRevealer
	captcha  CaptchaVerifier
	log      logger.Logger
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(topics TopicServicer, revealer ContentRevealer, captcha CaptchaVerifier, log logger.Logger) *TopicHandler {
	return &TopicHandler{topics: topics, revealer: revealer, captcha: captcha, log: log}
}

// viewHandler serves a topic detail with its content gated. The response
// carries the reveal token ids so the client knows which placeholders can be
// redeemed after verification.
func (h *TopicHandler) viewHandler(w http.ResponseWriter, r *http.Request) error {
	subjectSlug := chi.URLParam(r, "subjectSlug")
	slug := chi.URLParam(r, "slug")

	detail, tokens, err := h.topics.View(r.Context(), subjectSlug, slug)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]interface{}{
		"topic":  detail,
		"tokens": tokens,
	})
}

// revealHandler exchanges reveal tokens for their original content after a
// successful human-verification check. Verification happens here, before the
// gating engine is consulted: an unverified request never touches the store.
func (h *TopicHandler) revealHandler(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return apperr.Verification("malformed reveal request")
	}
	ids := r.PostForm["id"]
	if len(ids) == 0 {
		return apperr.NotFound("no reveal tokens presented")
	}

	verified, err := h.captcha.Verify(r.Context(), r.PostFormValue("captcha_response"))
	if err != nil {
		return err
	}
	if !verified {
		h.log.Warn("Reveal request rejected: captcha verification failed")
		return apperr.Verification("human verification failed")
	}

	units, err := h.revealer.Resolve(r.Context(), ids, verified)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]interface{}{"units": units})
}

// createHandler persists a new topic from the admin form.
func (h *TopicHandler) createHandler(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return apperr.Conflict("malformed topic form")
	}
	subjectID, err := strconv.ParseInt(r.PostFormValue("subject_id"), 10, 64)
	if err != nil {
		return apperr.Conflict("invalid subject id")
	}
	ct := &data.CreateTopic{
		Title:     r.PostFormValue("title"),
		SubjectID: subjectID,
		Slug:      r.PostFormValue("slug"),
		Summary:   r.PostFormValue("summary"),
		Source:    r.PostFormValue("src"),
		Author:    r.PostFormValue("author"),
		Markdown:  r.PostFormValue("md"),
		Tags:      r.PostFormValue("tags"),
	}
	id, err := h.topics.Create(r.Context(), ct)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// updateHandler overwrites an existing topic from the admin form.
func (h *TopicHandler) updateHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return apperr.NotFound("no such topic")
	}
	if err := r.ParseForm(); err != nil {
		return apperr.Conflict("malformed topic form")
	}
	subjectID, err := strconv.ParseInt(r.PostFormValue("subject_id"), 10, 64)
	if err != nil {
		return apperr.Conflict("invalid subject id")
	}
	ut := &data.UpdateTopic{
		ID:        id,
		Title:     r.PostFormValue("title"),
		SubjectID: subjectID,
		Slug:      r.PostFormValue("slug"),
		Summary:   r.PostFormValue("summary"),
		Source:    r.PostFormValue("src"),
		Author:    r.PostFormValue("author"),
		Markdown:  r.PostFormValue("md"),
		Tags:      r.PostFormValue("tags"),
	}
	ok, err := h.topics.Update(r.Context(), ut)
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]bool{"updated": ok})
}

// deleteHandler soft-deletes a topic.
func (h *TopicHandler) deleteHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return apperr.NotFound("no such topic")
	}
	if err := h.topics.Delete(r.Context(), id); err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// restoreHandler restores a soft-deleted topic.
func (h *TopicHandler) restoreHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return apperr.NotFound("no such topic")
	}
	if err := h.topics.Restore(r.Context(), id); err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]bool{"restored": true})
}
