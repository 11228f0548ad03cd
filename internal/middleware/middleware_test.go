package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quizdeck/backend/internal/auth"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func echoUser(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte(auth.UserID(r.Context()).String()))
}

func TestAuth(t *testing.T) {
	tokens := auth.NewTokens("secret", time.Hour)
	user := models.User{ID: uuid.New(), Role: models.RoleStudent}
	tok, err := tokens.Issue(user)
	require.NoError(t, err)

	h := Auth(tokens)(http.HandlerFunc(echoUser))

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + tok, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, user.ID.String(), rec.Body.String())
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	h := RequireAdmin(http.HandlerFunc(echoUser))

	serve := func(id *auth.Identity) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if id != nil {
			req = req.WithContext(auth.WithIdentity(req.Context(), *id))
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusUnauthorized, serve(nil))
	assert.Equal(t, http.StatusForbidden, serve(&auth.Identity{UserID: uuid.New(), Role: models.RoleStudent}))
	assert.Equal(t, http.StatusOK, serve(&auth.Identity{UserID: uuid.New(), Role: models.RoleAdmin}))
}

func TestRequestLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := &logger.Logger{SugaredLogger: zap.New(core).Sugar()}

	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/review", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/api/v1/review", fields["path"])
	assert.EqualValues(t, http.StatusTeapot, fields["status"])
}
