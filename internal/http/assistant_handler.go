package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.uber.org/zap"
)

type AssistantHandler struct {
	enabled bool
	logger  *zap.Logger
}

// NewAssistantHandler serves the chat transcript. enabled reports whether a model is
// configured; without one every reply is the unavailable notice.
func NewAssistantHandler(enabled bool, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{
		enabled: enabled,
		logger:  logger,
	}
}

type SendMessageRequestDTO struct {
	Text string `json:"text"`
}

type TranscriptResponseDTO struct {
	Enabled  bool                 `json:"enabled"`
	Messages []domain.ChatMessage `json:"messages"`
}

type SendMessageResponseDTO struct {
	Reply    domain.ChatMessage   `json:"reply"`
	Messages []domain.ChatMessage `json:"messages"`
}

// GET /api/v1/assistant/messages
func (h *AssistantHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, h.logger, http.StatusInternalServerError, "no_session", "missing session")
		return
	}

	respondJSON(w, h.logger, http.StatusOK, TranscriptResponseDTO{
		Enabled:  h.enabled,
		Messages: s.Conversation.Messages(),
	})
}

// POST /api/v1/assistant/messages
func (h *AssistantHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, h.logger, http.StatusInternalServerError, "no_session", "missing session")
		return
	}

	var req SendMessageRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	reply, err := s.Conversation.Send(r.Context(), req.Text)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, SendMessageResponseDTO{
		Reply:    reply,
		Messages: s.Conversation.Messages(),
	})
}
