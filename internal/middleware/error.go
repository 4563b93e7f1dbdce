package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go-blog-app/internal/apperr"
	"go-blog-app/internal/logger"
)

// AppHandler is a handler function that reports failures as errors instead of
// writing status codes itself.
type AppHandler func(http.ResponseWriter, *http.Request) error

// Error converts handler errors into JSON error responses, mapping the
// application error kinds to HTTP statuses.
func Error(log logger.Logger) func(AppHandler) http.Handler {
	return func(next AppHandler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					err, ok := rec.(error)
					if !ok {
						err = fmt.Errorf("%v", rec)
					}
					log.Error(err, "Panic recovered")
					writeError(w, http.StatusInternalServerError, "internal error")
				}
			}()

			err := next(w, r)
			if err == nil {
				return
			}

			status := http.StatusInternalServerError
			message := "internal error"
			if kind, ok := apperr.KindOf(err); ok {
				switch kind {
				case apperr.KindConflict:
					status, message = http.StatusConflict, err.Error()
				case apperr.KindNotFound:
					status, message = http.StatusNotFound, err.Error()
				case apperr.KindAuth:
					status, message = http.StatusUnauthorized, err.Error()
				case apperr.KindVerification:
					status, message = http.StatusForbidden, err.Error()
				}
			}
			if status >= http.StatusInternalServerError {
				// Storage details stay in the logs, not in the response.
				log.Error(err, "Request failed")
			}
			writeError(w, status, message)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
