package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/senira34/lolipop-wear/internal/payment"
	"github.com/senira34/lolipop-wear/internal/pricing"
)

type RouterConfig struct {
	Catalog            CatalogService
	Orders             OrderService
	Gateway            payment.Gateway
	Rules              pricing.Rules
	Logger             *slog.Logger
	Production         bool
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	errs := ErrorMapper{Logger: cfg.Logger, Production: cfg.Production}
	products := NewProductHandler(cfg.Catalog, cfg.RequestTimeout, errs)
	orders := NewOrdersHandler(cfg.Orders, cfg.Catalog, cfg.Gateway, cfg.Rules, cfg.RequestTimeout, errs)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(MaxBodySize(cfg.MaxRequestBodySize))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", products.List)
			r.Post("/", products.Create)
			r.Get("/category/{category}", products.ListByCategory)
			r.Get("/filters/{category}", products.Filters)
			r.Get("/{id}", products.Get)
			r.Put("/{id}", products.Update)
			r.Delete("/{id}", products.Delete)
		})
		r.Route("/orders", func(r chi.Router) {
			r.Post("/create-payment-intent", orders.CreatePaymentIntent)
			r.Get("/", orders.ListOrders)
			r.Post("/", orders.CreateOrder)
			r.Get("/user/{userId}", orders.ListUserOrders)
			r.Get("/{id}", orders.GetOrder)
			r.Put("/{id}/status", orders.UpdateStatus)
			r.Put("/{id}/pay", orders.MarkPaid)
			r.Delete("/{id}", orders.DeleteOrder)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "not_found", "Route not found")
	})

	return r
}
