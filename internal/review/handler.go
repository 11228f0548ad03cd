package review

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
	return &Handler{service: service, log: log.With("handler", "review")}
}

func (h *Handler) RegisterRoutes(protected *mux.Router) {
	protected.HandleFunc("/review", h.GetReview).Methods("GET")
	protected.HandleFunc("/review/{questionID}", h.RemoveFromReview).Methods("DELETE")
}

func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	subjectID, ok := httpx.UUIDQueryParam(query, "subject")
	if !ok {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid subject ID")
		return
	}
	filter := models.ReviewFilter{
		SubjectID: subjectID,
		ErrorType: models.ErrorTypeFilter(query.Get("errorType")),
	}

	report, err := h.service.BuildReview(r.Context(), auth.UserID(r.Context()), filter)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, report)
}

func (h *Handler) RemoveFromReview(w http.ResponseWriter, r *http.Request) {
	questionID, ok := httpx.UUIDVar(r, "questionID")
	if !ok {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid question ID")
		return
	}

	n, err := h.service.RemoveFromReview(r.Context(), auth.UserID(r.Context()), questionID)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, models.RemoveFromReviewResponse{Removed: n})
}
