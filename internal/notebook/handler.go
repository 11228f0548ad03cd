package notebook

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/quizdeck/backend/internal/auth"
	"github.com/quizdeck/backend/internal/httpx"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/models"
)

type Handler struct {
	service *Service
	log     *logger.Logger
}

func NewHandler(service *Service, log *logger.Logger) *Handler {
	return &Handler{service: service, log: log.With("handler", "notebook")}
}

func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/notebook", h.List).Methods("GET")
	protected.HandleFunc("/notebook/notes", h.AddNote).Methods("POST")
	protected.HandleFunc("/notebook/highlights", h.AddHighlight).Methods("POST")
	protected.HandleFunc("/notebook/{id}", h.Delete).Methods("DELETE")
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.List(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, view)
}

func (h *Handler) AddNote(w http.ResponseWriter, r *http.Request) {
	var req models.AddNoteRequest
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.service.AddNote(r.Context(), auth.UserID(r.Context()), req.SubjectID, req.Content)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, models.CreatedResponse{ID: id})
}

func (h *Handler) AddHighlight(w http.ResponseWriter, r *http.Request) {
	var req models.AddHighlightRequest
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.service.AddHighlight(r.Context(), auth.UserID(r.Context()), req.QuestionID, req.SubjectID, req.Text)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, models.CreatedResponse{ID: id})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDVar(r, "id")
	if !ok {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid entry ID")
		return
	}

	if err := h.service.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		httpx.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
