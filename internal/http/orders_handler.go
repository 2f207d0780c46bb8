package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/senira34/lolipop-wear/internal/cart"
	"github.com/senira34/lolipop-wear/internal/checkout"
	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/payment"
	"github.com/senira34/lolipop-wear/internal/pricing"
	"github.com/senira34/lolipop-wear/internal/repository"
)

// OrderService is the order store surface the order routes need.
type OrderService interface {
	Create(ctx context.Context, draft *domain.Order) (*domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error)
	MarkPaid(ctx context.Context, id string, result domain.PaymentResult) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

// ProductLookup resolves cart lines to their catalog entries.
type ProductLookup interface {
	Get(ctx context.Context, id int64) (*domain.Product, error)
}

type OrdersHandler struct {
	orders  OrderService
	catalog ProductLookup
	gateway payment.Gateway
	rules   pricing.Rules
	timeout time.Duration
	ErrorMapper
}

func NewOrdersHandler(orders OrderService, catalog ProductLookup, gateway payment.Gateway, rules pricing.Rules, timeout time.Duration, errs ErrorMapper) *OrdersHandler {
	return &OrdersHandler{
		orders:      orders,
		catalog:     catalog,
		gateway:     gateway,
		rules:       rules,
		timeout:     timeout,
		ErrorMapper: errs,
	}
}

// PaymentIntentRequestDTO carries the amount in minor units together with the
// cart it was computed from.
type PaymentIntentRequestDTO struct {
	Amount       int64                 `json:"amount"`
	Currency     string                `json:"currency,omitempty"`
	ShippingInfo checkout.ShippingInfo `json:"shippingInfo"`
	CartItems    []cart.Item           `json:"cartItems"`
}

type PaymentIntentResponseDTO struct {
	Success      bool   `json:"success"`
	ClientSecret string `json:"clientSecret"`
}

type UpdateStatusRequestDTO struct {
	Status domain.OrderStatus `json:"status"`
}

type PaymentResultDTO struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	UpdateTime   string `json:"update_time"`
	EmailAddress string `json:"email_address"`
}

// POST /api/orders/create-payment-intent
func (h *OrdersHandler) CreatePaymentIntent(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PaymentIntentRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if len(req.CartItems) == 0 {
		h.handleError(w, r, "Error creating payment intent", domain.NewValidationError("Cart is empty", "cartItems"))
		return
	}

	lines, err := h.catalogLines(ctx, req.CartItems)
	if err != nil {
		h.handleError(w, r, "Error creating payment intent", err)
		return
	}
	quote := h.rules.Quote(lines)
	if req.Amount != pricing.MinorUnits(quote.Total) {
		h.handleError(w, r, "Error creating payment intent", domain.NewValidationError("Amount does not match cart total", "amount"))
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = h.rules.Currency
	}

	intent, err := h.gateway.CreateIntent(ctx, req.Amount, currency, map[string]string{
		"customer_name":  req.ShippingInfo.FullName,
		"customer_email": req.ShippingInfo.Email,
		"customer_phone": req.ShippingInfo.Phone,
		"item_count":     strconv.Itoa(len(req.CartItems)),
	})
	if err != nil {
		h.handleError(w, r, "Error creating payment intent", err)
		return
	}

	respondJSON(w, http.StatusOK, PaymentIntentResponseDTO{Success: true, ClientSecret: intent.ClientSecret})
}

// catalogLines prices each cart line from the catalog. The price a client
// captured when adding the line is ignored.
func (h *OrdersHandler) catalogLines(ctx context.Context, items []cart.Item) ([]pricing.Line, error) {
	lines := make([]pricing.Line, 0, len(items))
	for i, it := range items {
		if it.Quantity < 1 {
			return nil, domain.NewValidationError("Invalid cart item", fmt.Sprintf("cartItems[%d].quantity", i))
		}
		p, err := h.catalog.Get(ctx, it.ProductID)
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, domain.NewValidationError("Cart contains an unknown product", fmt.Sprintf("cartItems[%d].productId", i))
		}
		if err != nil {
			return nil, fmt.Errorf("price cart item %d: %w", it.ProductID, err)
		}
		lines = append(lines, pricing.Line{UnitPrice: p.Price, Quantity: it.Quantity})
	}
	return lines, nil
}

// POST /api/orders
func (h *OrdersHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var draft domain.Order
	if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.Create(ctx, &draft)
	if err != nil {
		h.handleError(w, r, "Error creating order", err)
		return
	}
	respondData(w, http.StatusCreated, order)
}

// GET /api/orders
func (h *OrdersHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.List(ctx)
	if err != nil {
		h.handleError(w, r, "Error fetching orders", err)
		return
	}
	respondList(w, orders)
}

// GET /api/orders/user/{userId}
func (h *OrdersHandler) ListUserOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	orders, err := h.orders.ListByUser(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		h.handleError(w, r, "Error fetching orders", err)
		return
	}
	respondList(w, orders)
}

// GET /api/orders/{id}
func (h *OrdersHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	order, err := h.orders.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.handleError(w, r, "Error fetching order", err)
		return
	}
	respondData(w, http.StatusOK, order)
}

// PUT /api/orders/{id}/status
func (h *OrdersHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req UpdateStatusRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.SetStatus(ctx, chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.handleError(w, r, "Error updating order status", err)
		return
	}
	respondData(w, http.StatusOK, order)
}

// PUT /api/orders/{id}/pay
func (h *OrdersHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req PaymentResultDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	order, err := h.orders.MarkPaid(ctx, chi.URLParam(r, "id"), domain.PaymentResult{
		ID:           req.ID,
		Status:       req.Status,
		UpdateTime:   req.UpdateTime,
		EmailAddress: req.EmailAddress,
	})
	if err != nil {
		h.handleError(w, r, "Error updating order payment", err)
		return
	}
	respondData(w, http.StatusOK, order)
}

// DELETE /api/orders/{id}
func (h *OrdersHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	if err := h.orders.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		h.handleError(w, r, "Error deleting order", err)
		return
	}
	respondJSON(w, http.StatusOK, Envelope{Success: true, Message: "Order deleted successfully"})
}
