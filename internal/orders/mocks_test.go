package orders

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/events"
	"github.com/senira34/lolipop-wear/internal/repository"
)

// MockOrderRepository implements repository.OrderRepository for testing
type MockOrderRepository struct {
	mu        sync.RWMutex
	orders    map[string]*domain.Order
	seq       int
	CreateErr error
}

func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{orders: make(map[string]*domain.Order)}
}

func (m *MockOrderRepository) Create(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateErr != nil {
		return m.CreateErr
	}
	m.seq++
	order.ID = fmt.Sprintf("order-%d", m.seq)
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *MockOrderRepository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepository) List(_ context.Context) ([]*domain.Order, error) {
	return m.filter(func(*domain.Order) bool { return true }), nil
}

func (m *MockOrderRepository) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	return m.filter(func(o *domain.Order) bool {
		id, ok := o.User.UserID()
		return ok && id == userID
	}), nil
}

func (m *MockOrderRepository) filter(keep func(*domain.Order) bool) []*domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Order, 0)
	for _, o := range m.orders {
		if keep(o) {
			cp := *o
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out
}

func (m *MockOrderRepository) Update(_ context.Context, id string, mutate func(*domain.Order)) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	mutate(o)
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepository) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	delete(m.orders, id)
	return nil
}

// MockPublisher records published events
type MockPublisher struct {
	mu     sync.Mutex
	events []events.OrderEvent
	err    error
}

func (m *MockPublisher) Publish(_ context.Context, e events.OrderEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, e)
	return nil
}

func (m *MockPublisher) Types() []events.EventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]events.EventType, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}
