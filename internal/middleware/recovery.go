package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/clubfunds/clubfunds-backend/internal/handler"
	"github.com/clubfunds/clubfunds-backend/internal/logging"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log := logging.FromContext(r.Context())
				log.Error("panic recovered", "error", err, "stack", string(debug.Stack()))
				details := map[string]string{"request_id": RequestIDFromContext(r.Context())}
				handler.RespondAppError(w, handler.ErrInternalError, details)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
