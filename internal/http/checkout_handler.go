package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/service"
	"go.uber.org/zap"
)

type CheckoutHandler struct {
	logger *zap.Logger
}

func NewCheckoutHandler(logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{logger: logger}
}

type CheckoutRequestDTO struct {
	Method string `json:"method"`
}

type OrderResponseDTO struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	Items     domain.Cart          `json:"items"`
	Total     float64              `json:"total"`
	Currency  string               `json:"currency"`
	Status    domain.OrderStatus   `json:"status"`
	Method    domain.PaymentMethod `json:"method"`
	CreatedAt string               `json:"created_at"`
}

type CheckoutResponseDTO struct {
	Order   OrderResponseDTO `json:"order"`
	Message string           `json:"message"`
	State   StateResponseDTO `json:"state"`
}

func convertOrder(o *domain.Order) OrderResponseDTO {
	items := o.Items
	if items == nil {
		items = domain.Cart{}
	}
	return OrderResponseDTO{
		ID:        o.ID,
		UserID:    o.UserID,
		Items:     items,
		Total:     o.Total,
		Currency:  o.Currency,
		Status:    o.Status,
		Method:    o.Method,
		CreatedAt: o.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, h.logger, http.StatusInternalServerError, "no_session", "missing session")
		return
	}

	var req CheckoutRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	method := domain.PaymentMethod(req.Method)
	order, err := s.Controller.Checkout(r.Context(), method)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, CheckoutResponseDTO{
		Order:   convertOrder(order),
		Message: service.CheckoutMessage(method),
		State:   newStateResponse(s.Controller.Snapshot()),
	})
}

// GET /api/v1/orders
func (h *CheckoutHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, h.logger, http.StatusInternalServerError, "no_session", "missing session")
		return
	}

	orders, err := s.Controller.Orders(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	dtos := make([]OrderResponseDTO, 0, len(orders))
	for _, o := range orders {
		dtos = append(dtos, convertOrder(o))
	}
	respondJSON(w, h.logger, http.StatusOK, dtos)
}
