package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/quizdeck/backend/internal/httpx"
	"github.com/quizdeck/backend/internal/logger"
	"github.com/quizdeck/backend/internal/models"
	"github.com/quizdeck/backend/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	users       store.UserStore
	tokens      *Tokens
	adminEmails map[string]bool
	log         *logger.Logger
}

// NewHandler builds the auth endpoints. Accounts registered with an email in
// adminEmails receive the admin role.
func NewHandler(users store.UserStore, tokens *Tokens, adminEmails []string, log *logger.Logger) *Handler {
	admins := make(map[string]bool, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.TrimSpace(strings.ToLower(e))] = true
	}
	return &Handler{users: users, tokens: tokens, adminEmails: admins, log: log.With("handler", "auth")}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Name = strings.TrimSpace(req.Name)

	if req.Email == "" || req.Name == "" || req.Password == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "Email, name, and password are required")
		return
	}

	if len(req.Password) < 8 {
		httpx.WriteMessage(w, http.StatusBadRequest, "Password must be at least 8 characters")
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	user := models.User{
		Email:    req.Email,
		Name:     req.Name,
		Role:     models.RoleStudent,
		Password: string(hashedPassword),
	}
	if h.adminEmails[req.Email] {
		user.Role = models.RoleAdmin
	}

	if err := h.users.CreateUser(r.Context(), &user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			httpx.WriteMessage(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		h.log.Error("create user failed", "error", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		httpx.WriteMessage(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	h.log.Info("user registered", "user_id", user.ID, "role", user.Role)
	httpx.WriteJSON(w, http.StatusCreated, models.AuthResponse{Token: token, User: user})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if !httpx.DecodeJSON(r, &req) {
		httpx.WriteMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	if req.Email == "" || req.Password == "" {
		httpx.WriteMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.GetUserByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrNotFound) {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		h.log.Error("lookup user failed", "error", err)
		httpx.WriteMessage(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.tokens.Issue(*user)
	if err != nil {
		httpx.WriteMessage(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, models.AuthResponse{Token: token, User: *user})
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	id, ok := CurrentUser(r.Context())
	if !ok {
		httpx.WriteMessage(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.users.GetUser(r.Context(), id.UserID)
	if err != nil {
		httpx.WriteMessage(w, http.StatusNotFound, "User not found")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, user)
}
