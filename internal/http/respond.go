package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/chat"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/pkg/logger"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, log *zap.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, log *zap.Logger, status int, code, message string) {
	respondJSON(w, log, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError converts errors from the controller and its collaborators into
// HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	var httpStatus int
	var code string

	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		httpStatus = http.StatusUnauthorized
		code = "unauthenticated"
	case errors.Is(err, service.ErrMissingCredentials):
		httpStatus = http.StatusBadRequest
		code = "missing_credentials"
	case errors.Is(err, service.ErrInvalidPaymentMethod):
		httpStatus = http.StatusBadRequest
		code = "invalid_payment_method"
	case errors.Is(err, service.ErrEmptyCart):
		httpStatus = http.StatusBadRequest
		code = "empty_cart"
	case errors.Is(err, service.ErrInvalidView):
		httpStatus = http.StatusBadRequest
		code = "invalid_view"
	case errors.Is(err, chat.ErrEmptyMessage):
		httpStatus = http.StatusBadRequest
		code = "empty_message"
	case errors.Is(err, catalog.ErrProductNotFound):
		httpStatus = http.StatusNotFound
		code = "product_not_found"
	case errors.Is(err, service.ErrOperationInProgress):
		httpStatus = http.StatusConflict
		code = "operation_in_progress"
	case errors.Is(err, service.ErrOrderNotSaved):
		respondJSON(w, log, http.StatusBadGateway, ErrorResponse{
			Error:   service.ErrOrderNotSaved.Error(),
			Code:    "order_not_saved",
			Details: "please try again",
		})
		return
	case errors.Is(err, service.ErrSignInFailed):
		httpStatus = http.StatusBadGateway
		code = "sign_in_failed"
	case errors.Is(err, service.ErrSignOutFailed):
		httpStatus = http.StatusBadGateway
		code = "sign_out_failed"
	default:
		logger.WithTrace(r.Context(), log).Error("unhandled error",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		respondError(w, log, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}

	respondError(w, log, httpStatus, code, err.Error())
}
