package http

import (
	"context"
	"sort"
	"sync"

	"github.com/senira34/lolipop-wear/internal/catalog"
	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/payment"
	"github.com/senira34/lolipop-wear/internal/repository"
)

// MockCatalog implements CatalogService for testing
type MockCatalog struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	err      error
}

func NewMockCatalog(products ...*domain.Product) *MockCatalog {
	m := &MockCatalog{products: make(map[int64]*domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *MockCatalog) sorted(keep func(*domain.Product) bool) []*domain.Product {
	out := make([]*domain.Product, 0)
	for _, p := range m.products {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *MockCatalog) List(context.Context) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(*domain.Product) bool { return true }), nil
}

func (m *MockCatalog) ListByCategory(_ context.Context, category string) ([]*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(p *domain.Product) bool { return string(p.Category) == category }), nil
}

func (m *MockCatalog) Filters(ctx context.Context, category string) (*domain.Facets, error) {
	products, err := m.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}
	return catalog.DeriveFacets(products), nil
}

func (m *MockCatalog) Get(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return p, nil
}

func (m *MockCatalog) Create(_ context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; ok {
		return repository.ErrDuplicateProduct
	}
	m.products[product.ID] = product
	return nil
}

func (m *MockCatalog) Update(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *MockCatalog) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

// MockOrders implements OrderService for testing
type MockOrders struct {
	mu      sync.Mutex
	orders  map[string]*domain.Order
	created []*domain.Order
	err     error
}

func NewMockOrders(orders ...*domain.Order) *MockOrders {
	m := &MockOrders{orders: make(map[string]*domain.Order)}
	for _, o := range orders {
		m.orders[o.ID] = o
	}
	return m
}

func (m *MockOrders) Create(_ context.Context, draft *domain.Order) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if len(draft.OrderItems) == 0 {
		return nil, domain.NewValidationError("No order items", "orderItems")
	}
	o := *draft
	o.ID = "order-new"
	o.OrderStatus = domain.OrderStatusPending
	m.orders[o.ID] = &o
	m.created = append(m.created, &o)
	return &o, nil
}

func (m *MockOrders) Get(_ context.Context, id string) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (m *MockOrders) List(context.Context) ([]*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockOrders) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	all, err := m.List(context.Background())
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Order, 0)
	for _, o := range all {
		if id, ok := o.User.UserID(); ok && id == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *MockOrders) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError("invalid order status", "status")
	}
	o, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	o.ApplyStatus(status, fixedNow)
	return o, nil
}

func (m *MockOrders) MarkPaid(ctx context.Context, id string, result domain.PaymentResult) (*domain.Order, error) {
	o, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	o.ApplyPayment(result, fixedNow)
	return o, nil
}

func (m *MockOrders) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

// MockGateway implements payment.Gateway for testing
type MockGateway struct {
	mu       sync.Mutex
	err      error
	amounts  []int64
	metadata []map[string]string
}

func (m *MockGateway) CreateIntent(_ context.Context, amountMinor int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if amountMinor <= 0 {
		return nil, domain.NewValidationError("Invalid amount", "amount")
	}
	if m.err != nil {
		return nil, m.err
	}
	m.amounts = append(m.amounts, amountMinor)
	m.metadata = append(m.metadata, metadata)
	return &payment.Intent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret_xyz",
		Amount:       amountMinor,
		Currency:     currency,
		Status:       "requires_payment_method",
	}, nil
}
