package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/senira34/lolipop-wear/internal/cart"
	"github.com/senira34/lolipop-wear/internal/checkout"
	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderResponse struct {
	Success bool          `json:"success"`
	Data    *domain.Order `json:"data"`
}

func testOrder(id string, owner domain.Owner) *domain.Order {
	return &domain.Order{
		ID:              id,
		User:            owner,
		OrderItems:      []domain.OrderItem{{Name: "Tee", Quantity: 1, Price: 1000}},
		ShippingAddress: &domain.ShippingAddress{Name: "Ann", Phone: "555-0100", Street: "1 Main St"},
		PaymentMethod:   domain.PaymentMethodCOD,
		TotalPrice:      1500,
		OrderStatus:     domain.OrderStatusPending,
		CreatedAt:       fixedNow,
	}
}

// pricedCatalog holds the tee at 1000 and the jacket at 7000.
func pricedCatalog() *MockCatalog {
	tee := testProduct(1, domain.CategoryMen, "T-Shirts")
	tee.Name, tee.Price = "Tee", 1000
	jacket := testProduct(2, domain.CategoryMen, "Jackets")
	jacket.Name, jacket.Price = "Jacket", 7000
	return NewMockCatalog(tee, jacket)
}

func intentRequest(amount int64, items ...cart.Item) PaymentIntentRequestDTO {
	return PaymentIntentRequestDTO{
		Amount: amount,
		ShippingInfo: checkout.ShippingInfo{
			FullName: "Ann Perera",
			Email:    "ann@example.com",
			Phone:    "555-0100",
			Address:  "1 Main St",
		},
		CartItems: items,
	}
}

func TestCreatePaymentIntent_Success(t *testing.T) {
	gw := &MockGateway{}
	router := newTestRouter(pricedCatalog(), NewMockOrders(), gw, false)

	item := cart.Item{ProductID: 1, Name: "Tee", Price: 1000, Quantity: 2}
	rec := doRequest(t, router, http.MethodPost, "/api/orders/create-payment-intent", intentRequest(250000, item))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp PaymentIntentResponseDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "pi_test_secret_xyz", resp.ClientSecret)
	assert.Equal(t, []int64{250000}, gw.amounts)
	assert.Equal(t, "ann@example.com", gw.metadata[0]["customer_email"])
}

func TestCreatePaymentIntent_AmountMismatch(t *testing.T) {
	gw := &MockGateway{}
	router := newTestRouter(pricedCatalog(), NewMockOrders(), gw, false)

	item := cart.Item{ProductID: 1, Name: "Tee", Price: 1000, Quantity: 2}
	rec := doRequest(t, router, http.MethodPost, "/api/orders/create-payment-intent", intentRequest(100, item))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"amount"}, resp.Fields)
	assert.Empty(t, gw.amounts)
}

func TestCreatePaymentIntent_EmptyCart(t *testing.T) {
	gw := &MockGateway{}
	router := newTestRouter(NewMockCatalog(), NewMockOrders(), gw, false)

	rec := doRequest(t, router, http.MethodPost, "/api/orders/create-payment-intent", intentRequest(50000))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, gw.amounts)
}

func TestCreatePaymentIntent_GatewayFailure(t *testing.T) {
	gw := &MockGateway{err: &payment.GatewayError{Op: "create intent", Message: "Invalid API Key provided"}}
	router := newTestRouter(pricedCatalog(), NewMockOrders(), gw, true)

	item := cart.Item{ProductID: 2, Name: "Jacket", Price: 7000, Quantity: 1}
	rec := doRequest(t, router, http.MethodPost, "/api/orders/create-payment-intent", intentRequest(700000, item))
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Invalid API Key provided", resp.Message)
}

func TestCreatePaymentIntent_PricesFromCatalog(t *testing.T) {
	gw := &MockGateway{}
	router := newTestRouter(pricedCatalog(), NewMockOrders(), gw, false)

	// the client claims the tee costs a cent and sums its own total from that
	item := cart.Item{ProductID: 1, Name: "Tee", Price: 0.01, Quantity: 2}
	rec := doRequest(t, router, http.MethodPost, "/api/orders/create-payment-intent", intentRequest(50002, item))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"amount"}, resp.Fields)
	assert.Empty(t, gw.amounts)

	// the catalog total goes through even though the line carries a stale price
	rec = doRequest(t, router, http.MethodPost, "/api/orders/create-payment-intent", intentRequest(250000, item))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int64{250000}, gw.amounts)
}

func TestCreatePaymentIntent_UnknownProduct(t *testing.T) {
	gw := &MockGateway{}
	router := newTestRouter(pricedCatalog(), NewMockOrders(), gw, false)

	items := []cart.Item{
		{ProductID: 1, Name: "Tee", Price: 1000, Quantity: 1},
		{ProductID: 99, Name: "Ghost", Price: 1000, Quantity: 1},
	}
	rec := doRequest(t, router, http.MethodPost, "/api/orders/create-payment-intent", intentRequest(250000, items...))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, []string{"cartItems[1].productId"}, resp.Fields)
	assert.Empty(t, gw.amounts)
}

func TestCreatePaymentIntent_CatalogUnavailable(t *testing.T) {
	gw := &MockGateway{}
	cat := pricedCatalog()
	cat.err = errors.New("mongo: no reachable servers")
	router := newTestRouter(cat, NewMockOrders(), gw, false)

	item := cart.Item{ProductID: 1, Name: "Tee", Price: 1000, Quantity: 2}
	rec := doRequest(t, router, http.MethodPost, "/api/orders/create-payment-intent", intentRequest(250000, item))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, gw.amounts)
}

func TestCreateOrder_Created(t *testing.T) {
	orders := NewMockOrders()
	router := newTestRouter(NewMockCatalog(), orders, nil, false)

	body := map[string]any{
		"user":            "guest",
		"orderItems":      []map[string]any{{"name": "Tee", "quantity": 1, "price": 1000}},
		"shippingAddress": map[string]any{"name": "Ann", "phone": "555-0100", "street": "1 Main St"},
		"paymentMethod":   "COD",
	}
	rec := doRequest(t, router, http.MethodPost, "/api/orders", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp orderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "order-new", resp.Data.ID)
	require.Len(t, orders.created, 1)
	assert.True(t, orders.created[0].User.IsGuest())
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	router := newTestRouter(NewMockCatalog(), NewMockOrders(), nil, false)

	rec := doRequest(t, router, http.MethodPost, "/api/orders", map[string]any{"orderItems": []any{}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Fields, "orderItems")
}

func TestCreateOrder_InvalidJSON(t *testing.T) {
	router := newTestRouter(NewMockCatalog(), NewMockOrders(), nil, false)

	rec := doRequest(t, router, http.MethodPost, "/api/orders", "not an order")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	router := newTestRouter(NewMockCatalog(), NewMockOrders(), nil, false)

	rec := doRequest(t, router, http.MethodGet, "/api/orders/missing", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListUserOrders(t *testing.T) {
	orders := NewMockOrders(
		testOrder("a", domain.Registered("u1")),
		testOrder("b", domain.Guest()),
		testOrder("c", domain.Registered("u1")),
	)
	router := newTestRouter(NewMockCatalog(), orders, nil, false)

	rec := doRequest(t, router, http.MethodGet, "/api/orders/user/u1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Count int             `json:"count"`
		Data  []*domain.Order `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 2, resp.Count)
}

func TestUpdateStatus_Delivered(t *testing.T) {
	orders := NewMockOrders(testOrder("a", domain.Guest()))
	router := newTestRouter(NewMockCatalog(), orders, nil, false)

	rec := doRequest(t, router, http.MethodPut, "/api/orders/a/status", UpdateStatusRequestDTO{Status: domain.OrderStatusDelivered})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp orderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, domain.OrderStatusDelivered, resp.Data.OrderStatus)
	assert.True(t, resp.Data.IsDelivered)
	require.NotNil(t, resp.Data.DeliveredAt)
}

func TestUpdateStatus_UnknownOrderAndStatus(t *testing.T) {
	orders := NewMockOrders(testOrder("a", domain.Guest()))
	router := newTestRouter(NewMockCatalog(), orders, nil, false)

	rec := doRequest(t, router, http.MethodPut, "/api/orders/zzz/status", UpdateStatusRequestDTO{Status: domain.OrderStatusShipped})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doRequest(t, router, http.MethodPut, "/api/orders/a/status", UpdateStatusRequestDTO{Status: "Lost"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMarkPaid_SnakeCaseBody(t *testing.T) {
	orders := NewMockOrders(testOrder("a", domain.Guest()))
	router := newTestRouter(NewMockCatalog(), orders, nil, false)

	body := map[string]string{
		"id":            "pi_1",
		"status":        "succeeded",
		"update_time":   "2026-03-01T12:00:00Z",
		"email_address": "ann@example.com",
	}
	rec := doRequest(t, router, http.MethodPut, "/api/orders/a/pay", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp orderResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Data.IsPaid)
	assert.Equal(t, "pi_1", resp.Data.PaymentResult.ID)
	assert.Equal(t, "ann@example.com", resp.Data.PaymentResult.EmailAddress)
}

func TestDeleteOrder(t *testing.T) {
	orders := NewMockOrders(testOrder("a", domain.Guest()))
	router := newTestRouter(NewMockCatalog(), orders, nil, false)

	rec := doRequest(t, router, http.MethodDelete, "/api/orders/a", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "Order deleted successfully", resp.Message)

	rec = doRequest(t, router, http.MethodDelete, "/api/orders/a", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
