package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"go-blog-app/internal/middleware"
)

// NewRouter creates and configures the application router. The authorization
// middleware wraps every route so session resolution and policy enforcement
// happen uniformly; the error middleware turns handler errors into JSON
// responses.
func NewRouter(
	topicHandler *TopicHandler,
	authHandler *AuthHandler,
	catalogHandler *CatalogHandler,
	adminHandler *AdminHandler,
	authzMiddleware func(http.Handler) http.Handler,
	errorMiddleware func(middleware.AppHandler) http.Handler,
) *chi.Mux {
	r := chi.NewRouter()

	// A good base middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(authzMiddleware)

	wrap := func(h middleware.AppHandler) http.HandlerFunc {
		return errorMiddleware(h).ServeHTTP
	}

	// Public reading surface
	r.Get("/subjects", wrap(catalogHandler.listSubjectsHandler))
	r.Get("/tags", wrap(catalogHandler.listTagsHandler))
	r.Get("/topics/{subjectSlug}/{slug}", wrap(topicHandler.viewHandler))
	r.Post("/protected-content", wrap(topicHandler.revealHandler))

	// Authentication
	r.Post("/admin/login", wrap(authHandler.loginHandler))
	r.Post("/admin/logout", wrap(authHandler.logoutHandler))
	r.Post("/admin/password", wrap(authHandler.changePasswordHandler))

	// Admin authoring surface
	r.Post("/admin/topics", wrap(topicHandler.createHandler))
	r.Post("/admin/topics/{id}", wrap(topicHandler.updateHandler))
	r.Post("/admin/topics/{id}/delete", wrap(topicHandler.deleteHandler))
	r.Post("/admin/topics/{id}/restore", wrap(topicHandler.restoreHandler))
	r.Post("/admin/subjects", wrap(catalogHandler.createSubjectHandler))
	r.Post("/admin/subjects/{id}", wrap(catalogHandler.updateSubjectHandler))
	r.Post("/admin/tags/{id}", wrap(catalogHandler.renameTagHandler))
	r.Post("/admin/tags/{id}/delete", wrap(catalogHandler.deleteTagHandler))

	// Account provisioning, sys role only
	r.Post("/admin/admins", wrap(adminHandler.createAdminHandler))
	r.Post("/admin/admins/{id}/delete", wrap(adminHandler.deleteAdminHandler))

	return r
}
