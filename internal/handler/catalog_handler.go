package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/data"
)

// SubjectRepository defines the subject operations the handlers need.
type SubjectRepository interface {
	All(ctx context.Context) ([]*data.Subject, error)
	Create(ctx context.Context, name, slug, summary string) (int64, error)
	Update(ctx context.Context, id int64, name, slug, summary string) error
	SetDeleted(ctx context.Context, id int64, deleted bool) error
}

// TagRepository defines the tag administration operations the handlers need.
type TagRepository interface {
	All(ctx context.Context) ([]*data.Tag, error)
	Rename(ctx context.Context, id int64, name string) error
	SetDeleted(ctx context.Context, id int64, deleted bool) error
}

// CatalogHandler serves subject and tag listings plus their admin operations.
type CatalogHandler struct {
	subjects SubjectRepository
	tags     TagRepository
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(subjects SubjectRepository, tags TagRepository) *CatalogHandler {
	return &CatalogHandler{subjects: subjects, tags: tags}
}

func (h *CatalogHandler) listSubjectsHandler(w http.ResponseWriter, r *http.Request) error {
	subjects, err := h.subjects.All(r.Context())
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]interface{}{"subjects": subjects})
}

func (h *CatalogHandler) createSubjectHandler(w http.ResponseWriter, r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return apperr.Conflict("malformed subject form")
	}
	id, err := h.subjects.Create(r.Context(),
		r.PostFormValue("name"), r.PostFormValue("slug"), r.PostFormValue("summary"))
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *CatalogHandler) updateSubjectHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return apperr.NotFound("no such subject")
	}
	if err := r.ParseForm(); err != nil {
		return apperr.Conflict("malformed subject form")
	}
	if err := h.subjects.Update(r.Context(), id,
		r.PostFormValue("name"), r.PostFormValue("slug"), r.PostFormValue("summary")); err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *CatalogHandler) listTagsHandler(w http.ResponseWriter, r *http.Request) error {
	tags, err := h.tags.All(r.Context())
	if err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]interface{}{"tags": tags})
}

func (h *CatalogHandler) renameTagHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return apperr.NotFound("no such tag")
	}
	if err := r.ParseForm(); err != nil {
		return apperr.Conflict("malformed tag form")
	}
	name := r.PostFormValue("name")
	if name == "" {
		return apperr.Conflict("tag name is required")
	}
	if err := h.tags.Rename(r.Context(), id, name); err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *CatalogHandler) deleteTagHandler(w http.ResponseWriter, r *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return apperr.NotFound("no such tag")
	}
	if err := h.tags.SetDeleted(r.Context(), id, true); err != nil {
		return err
	}
	return respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
