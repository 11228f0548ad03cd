package questions

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/quizdeck/backend/internal/apperr"
	"github.com/quizdeck/backend/internal/generator"
	"github.com/quizdeck/backend/internal/httpx"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/models"
)

// Drafter produces batch payloads for an admin to review before ingestion.
type Drafter interface {
	DraftBatch(ctx context.Context, req generator.DraftRequest) (*models.BatchPayload, error)
}

type Handler struct {
	service  *Service
	taxonomy TaxonomyResolver
	drafter  Drafter
	log      *logger.Logger
}

func NewHandler(service *Service, taxonomy TaxonomyResolver, drafter Drafter, log *logger.Logger) *Handler {
	return &Handler{service: service, taxonomy: taxonomy, drafter: drafter, log: log.With("handler", "questions")}
}

// RegisterRoutes mounts the student practice route on protected and the
// ingestion routes on admin.
func (h *Handler) RegisterRoutes(protected, admin *mux.Router) {
	protected.HandleFunc("/subjects/{id}/questions", h.PracticeSet).Methods("GET")

	admin.HandleFunc("/stats", h.AdminStats).Methods("GET")
	admin.HandleFunc("/questions", h.ListQuestions).Methods("GET")
	admin.HandleFunc("/questions", h.CreateQuestion).Methods("POST")
	admin.HandleFunc("/questions/batch", h.CreateBatch).Methods("POST")
	admin.HandleFunc("/questions/batch/draft", h.DraftBatch).Methods("POST")
	admin.HandleFunc("/questions/{id}", h.GetQuestion).Methods("GET")
	admin.HandleFunc("/questions/{id}", h.UpdateQuestion).Methods("PUT")
	admin.HandleFunc("/questions/{id}", h.DeleteQuestion).Methods("DELETE")
	admin.HandleFunc("/subjects/{id}", h.DeleteSubject).Methods("DELETE")
	admin.HandleFunc("/taxonomy/resolve", h.ResolveTaxonomy).Methods("POST")
}

func (h *Handler) CreateQuestion(w http.ResponseWriter, r *http.Request) {
	var req models.QuestionPayload
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id, err := h.service.CreateQuestion(r.Context(), req)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, models.CreatedResponse{ID: id})
}

func (h *Handler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchPayload
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.CreateBatch(r.Context(), req.Shared, req.Questions)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) DraftBatch(w http.ResponseWriter, r *http.Request) {
	var req generator.DraftRequest
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payload, err := h.drafter.DraftBatch(r.Context(), req)
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			httpx.WriteError(w, err)
			return
		}
		h.log.Error("draft batch failed", "error", err)
		httpx.WriteMessage(w, http.StatusBadGateway, "Draft generation failed")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, payload)
}

func (h *Handler) GetQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDVar(r, "id")
	if !ok {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid question ID")
		return
	}

	q, err := h.service.GetQuestion(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, q)
}

func (h *Handler) UpdateQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDVar(r, "id")
	if !ok {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid question ID")
		return
	}
	var req models.QuestionPayload
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.UpdateQuestion(r.Context(), id, req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDVar(r, "id")
	if !ok {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid question ID")
		return
	}

	if err := h.service.DeleteQuestion(r.Context(), id); err != nil {
		httpx.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDVar(r, "id")
	if !ok {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid subject ID")
		return
	}

	if err := h.service.DeleteSubject(r.Context(), id); err != nil {
		httpx.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ResolveTaxonomy(w http.ResponseWriter, r *http.Request) {
	var req models.ResolveTaxonomyRequest
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tax, err := h.taxonomy.Resolve(r.Context(), req.Subject, req.Topic)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, tax)
}

func (h *Handler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page := httpx.IntQueryParam(query, "page", 1)
	pageSize := httpx.IntQueryParam(query, "page_size", defaultPageSize)

	result, err := h.service.ListQuestions(r.Context(), page, pageSize)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.AdminStats(r.Context())
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, stats)
}

func (h *Handler) PracticeSet(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.UUIDVar(r, "id")
	if !ok {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid subject ID")
		return
	}

	set, err := h.service.PracticeSet(r.Context(), id)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, set)
}
