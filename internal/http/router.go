package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxRequestBodySize = 1 << 20 // 1MB

type RouterConfig struct {
	Catalog          *catalog.Catalog
	Sessions         SessionStore
	AssistantEnabled bool
	RequestTimeout   time.Duration
	SessionTTL       time.Duration
	SecureCookie     bool
	Logger           *zap.Logger
}

// NewRouter wires every storefront route.
func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	catalogHandler := NewCatalogHandler(cfg.Catalog, log)
	cartHandler := NewCartHandler(cfg.Catalog, log)
	authHandler := NewAuthHandler(log)
	checkoutHandler := NewCheckoutHandler(log)
	assistantHandler := NewAssistantHandler(cfg.AssistantEnabled, log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.RequestSize(maxRequestBodySize))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, log, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/site", catalogHandler.Site)
		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Get("/featured", catalogHandler.Featured)
			r.Get("/{product_id}", catalogHandler.GetProduct)
		})

		r.Group(func(r chi.Router) {
			r.Use(SessionMiddleware(cfg.Sessions, cfg.SessionTTL, cfg.SecureCookie, log))

			r.Get("/state", cartHandler.GetState)
			r.Put("/view", cartHandler.SetView)
			r.Route("/cart", func(r chi.Router) {
				r.Post("/items", cartHandler.AddItem)
				r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			})
			r.Route("/auth", func(r chi.Router) {
				r.Post("/signin", authHandler.SignIn)
				r.Post("/signout", authHandler.SignOut)
			})
			r.Post("/checkout", checkoutHandler.Checkout)
			r.Get("/orders", checkoutHandler.ListOrders)
			r.Route("/assistant", func(r chi.Router) {
				r.Get("/messages", assistantHandler.ListMessages)
				r.Post("/messages", assistantHandler.SendMessage)
			})
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
