// Package httpx holds the JSON response and request-parsing helpers shared by
// every handler.
package httpx

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/models"
)

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, models.ErrorResponse{Error: msg})
}

// WriteError maps a service error onto a status code and a client-safe message.
func WriteError(w http.ResponseWriter, err error) {
	WriteMessage(w, apperr.HTTPStatus(err), apperr.Message(err))
}

func DecodeJSON(r *http.Request, dst interface{}) bool {
	return json.NewDecoder(r.Body).Decode(dst) == nil
}

func IntQueryParam(query url.Values, key string, defaultVal int) int {
	s := query.Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	return v
}

// UUIDVar parses a path variable. ok is false when it is missing or malformed.
func UUIDVar(r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// UUIDQueryParam parses an optional query parameter. A present but malformed
// value reports ok=false.
func UUIDQueryParam(query url.Values, key string) (*uuid.UUID, bool) {
	s := query.Get(key)
	if s == "" {
		return nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, false
	}
	return &id, true
}
