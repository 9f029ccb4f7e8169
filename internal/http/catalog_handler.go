package http

import (
	"net/http"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// FeaturedCount is how many products the home page shows.
const FeaturedCount = 4

type CatalogHandler struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

func NewCatalogHandler(c *catalog.Catalog, logger *zap.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: c,
		logger:  logger,
	}
}

// GET /api/v1/site
func (h *CatalogHandler) Site(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.catalog.Site())
}

// GET /api/v1/products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("category")
	if raw == "" || raw == "All" {
		respondJSON(w, h.logger, http.StatusOK, h.catalog.All())
		return
	}

	category, err := domain.ParseCategory(raw)
	if err != nil {
		respondError(w, h.logger, http.StatusBadRequest, "invalid_category", err.Error())
		return
	}
	respondJSON(w, h.logger, http.StatusOK, h.catalog.ByCategory(category))
}

// GET /api/v1/products/featured
func (h *CatalogHandler) Featured(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, h.logger, http.StatusOK, h.catalog.Featured(FeaturedCount))
}

// GET /api/v1/products/{product_id}
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.catalog.Get(chi.URLParam(r, "product_id"))
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	respondJSON(w, h.logger, http.StatusOK, product)
}
