package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

type AuthHandler struct {
	logger *zap.Logger
}

func NewAuthHandler(logger *zap.Logger) *AuthHandler {
	return &AuthHandler{logger: logger}
}

type SignInRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignInResponseDTO struct {
	User  domain.User      `json:"user"`
	State StateResponseDTO `json:"state"`
}

// POST /api/v1/auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, h.logger, http.StatusInternalServerError, "no_session", "missing session")
		return
	}

	var req SignInRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	user, err := s.Controller.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, SignInResponseDTO{
		User:  *user,
		State: newStateResponse(s.Controller.Snapshot()),
	})
}

// POST /api/v1/auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, h.logger, http.StatusInternalServerError, "no_session", "missing session")
		return
	}

	if err := s.Controller.SignOut(r.Context()); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, newStateResponse(s.Controller.Snapshot()))
}
