package middleware

import (
	"net/http"

	"github.com/casbin/casbin/v2"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/session"
)

// SessionResolver resolves the admin session carried by a request.
type SessionResolver interface {
	FromRequest(r *http.Request) (*session.Record, error)
}

// Authorizer creates a middleware that resolves the request's session and
// enforces the Casbin policy for the request path and method. Every request
// resolves session state independently; nothing is cached between requests.
func Authorizer(e *casbin.Enforcer, sessions SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			subject := "anonymous"
			record, err := sessions.FromRequest(r)
			switch {
			case err == nil:
				subject = "admin"
				if record.IsSys {
					subject = "sys"
				}
				r = r.WithContext(WithSession(r.Context(), record))
			case apperr.Is(err, apperr.KindNotFound):
				// Missing or expired session: proceed as anonymous.
			default:
				writeError(w, http.StatusInternalServerError, "authorization error")
				return
			}

			allowed, err := e.Enforce(subject, r.URL.Path, r.Method)
			if err != nil {
				writeError(w, http.StatusInternalServerError, "authorization error")
				return
			}
			if !allowed {
				if subject == "anonymous" {
					writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED")
					return
				}
				writeError(w, http.StatusForbidden, "forbidden")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
