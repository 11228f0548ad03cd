package practice

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/quizdeck/backend/internal/apperr"
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
	return &Handler{service: service, log: log.With("handler", "practice")}
}

func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/subjects", h.SubjectStats).Methods("GET")
	protected.HandleFunc("/sessions", h.StartSession).Methods("POST")
	protected.HandleFunc("/sessions/recent", h.RecentSessions).Methods("GET")
	protected.HandleFunc("/sessions/{id}/finish", h.FinishSession).Methods("POST")
	protected.HandleFunc("/stats/performance", h.Performance).Methods("GET")
	protected.HandleFunc("/answers", h.RecordAnswer).Methods("POST")
	protected.HandleFunc("/answers/{id}/classify", h.ClassifyAnswer).Methods("POST")
}

func (h *Handler) StartSession(w http.ResponseWriter, r *http.Request) {
	var req models.StartSessionRequest
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.service.Start(r.Context(), auth.UserID(r.Context()), req.SubjectID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, models.CreatedResponse{ID: id})
}

func (h *Handler) FinishSession(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDVar(r, "id")
	if !ok {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid session ID")
		return
	}
	var req models.FinishSessionRequest
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Finish(r.Context(), auth.UserID(r.Context()), id, req.Score, req.TotalQuestions); err != nil {
		httpx.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RecordAnswer keeps the practice flow going when the answer cannot be
// stored: the failure is logged and answer_id comes back null.
func (h *Handler) RecordAnswer(w http.ResponseWriter, r *http.Request) {
	var req models.RecordAnswerRequest
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.service.Record(r.Context(), auth.UserID(r.Context()), req)
	if apperr.Is(err, apperr.KindPersistence) {
		h.log.Error("record answer failed",
			"session_id", req.SessionID,
			"question_id", req.QuestionID,
			"error", err,
		)
		httpx.WriteJSON(w, http.StatusOK, models.RecordAnswerResponse{})
		return
	}
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, models.RecordAnswerResponse{AnswerID: &id})
}

func (h *Handler) ClassifyAnswer(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDVar(r, "id")
	if !ok {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid answer ID")
		return
	}
	var req models.ClassifyRequest
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Classify(r.Context(), auth.UserID(r.Context()), id, req.ErrorType); err != nil {
		httpx.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Performance(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) RecentSessions(w http.ResponseWriter, r *http.Request) {
	limit := httpx.IntQueryParam(r.URL.Query(), "limit", defaultRecentLimit)

	sessions, err := h.service.RecentSessions(r.Context(), auth.UserID(r.Context()), limit)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessions)
}

func (h *Handler) SubjectStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.SubjectStats(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stats)
}
