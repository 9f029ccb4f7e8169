package http

import (
	"encoding/json"
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CartHandler struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

func NewCartHandler(c *catalog.Catalog, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		catalog: c,
		logger:  logger,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

type SetViewRequestDTO struct {
	View string `json:"view"`
}

// StateResponseDTO is a session snapshot with the values the page derives from it.
type StateResponseDTO struct {
	domain.SessionState
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
}

func newStateResponse(s domain.SessionState) StateResponseDTO {
	if s.Cart == nil {
		s.Cart = domain.Cart{}
	}
	return StateResponseDTO{
		SessionState: s,
		Total:        s.Cart.Total(),
		ItemCount:    s.Cart.Count(),
	}
}

// GET /api/v1/state
func (h *CartHandler) GetState(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, h.logger, http.StatusInternalServerError, "no_session", "missing session")
		return
	}
	respondJSON(w, h.logger, http.StatusOK, newStateResponse(s.Controller.Snapshot()))
}

// PUT /api/v1/view
func (h *CartHandler) SetView(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, h.logger, http.StatusInternalServerError, "no_session", "missing session")
		return
	}

	var req SetViewRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	view, err := domain.ParseView(req.View)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_view", err.Error())
		return
	}

	if err := s.Controller.Navigate(view); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, newStateResponse(s.Controller.Snapshot()))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, h.logger, http.StatusInternalServerError, "no_session", "missing session")
		return
	}

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	product, err := h.catalog.Get(req.ProductID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	s.Controller.AddToCart(product)
	respondJSON(w, h.logger, http.StatusCreated, newStateResponse(s.Controller.Snapshot()))
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := getSessionFromContext(r.Context())
	if s == nil {
		respondError(w, h.logger, http.StatusInternalServerError, "no_session", "missing session")
		return
	}

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	// removing an item that is not in the cart is a no-op
	s.Controller.RemoveFromCart(productID)
	respondJSON(w, h.logger, http.StatusOK, newStateResponse(s.Controller.Snapshot()))
}
