package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/senira34/lolipop-wear/internal/domain"
)

// CatalogService is the catalog surface the product routes need.
type CatalogService interface {
	List(ctx context.Context) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, category string) ([]*domain.Product, error)
	Filters(ctx context.Context, category string) (*domain.Facets, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

type ProductHandler struct {
	catalog CatalogService
	timeout time.Duration
	ErrorMapper
}

func NewProductHandler(catalog CatalogService, timeout time.Duration, errs ErrorMapper) *ProductHandler {
	return &ProductHandler{
		catalog:     catalog,
		timeout:     timeout,
		ErrorMapper: errs,
	}
}

// GET /api/products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.List(ctx)
	if err != nil {
		h.handleError(w, r, "Error fetching products", err)
		return
	}
	respondList(w, products)
}

// GET /api/products/category/{category}
func (h *ProductHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	products, err := h.catalog.ListByCategory(ctx, chi.URLParam(r, "category"))
	if err != nil {
		h.handleError(w, r, "Error fetching products", err)
		return
	}
	respondList(w, products)
}

// GET /api/products/filters/{category}
func (h *ProductHandler) Filters(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	facets, err := h.catalog.Filters(ctx, chi.URLParam(r, "category"))
	if err != nil {
		h.handleError(w, r, "Error fetching filter options", err)
		return
	}
	respondData(w, http.StatusOK, facets)
}

// GET /api/products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := productID(w, r)
	if !ok {
		return
	}

	product, err := h.catalog.Get(ctx, id)
	if err != nil {
		h.handleError(w, r, "Error fetching product", err)
		return
	}
	respondData(w, http.StatusOK, product)
}

// POST /api/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.catalog.Create(ctx, &product); err != nil {
		h.handleError(w, r, "Error creating product", err)
		return
	}
	respondData(w, http.StatusCreated, &product)
}

// PUT /api/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := productID(w, r)
	if !ok {
		return
	}

	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	product.ID = id

	if err := h.catalog.Update(ctx, &product); err != nil {
		h.handleError(w, r, "Error updating product", err)
		return
	}
	respondData(w, http.StatusOK, &product)
}

// DELETE /api/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := productID(w, r)
	if !ok {
		return
	}

	if err := h.catalog.Delete(ctx, id); err != nil {
		h.handleError(w, r, "Error deleting product", err)
		return
	}
	respondJSON(w, http.StatusOK, Envelope{Success: true, Message: "Product deleted successfully"})
}

func productID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a number")
		return 0, false
	}
	return id, true
}
