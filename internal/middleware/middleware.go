package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/quizdeck/backend/internal/auth"
	"github.com/quizdeck/backend/internal/httpx"
	"github.com/quizdeck/backend/internal/logger"
)

// Auth rejects requests without a valid bearer token and attaches the
// caller's identity to the request context.
func Auth(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, found := strings.CutPrefix(header, "Bearer ")
			if !found || raw == "" {
				httpx.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			id, err := tokens.Parse(raw)
			if err != nil {
				httpx.WriteMessage(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
		})
	}
}

// RequireAdmin must run after Auth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := auth.CurrentUser(r.Context())
		if !ok {
			httpx.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !id.IsAdmin() {
			httpx.WriteMessage(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
