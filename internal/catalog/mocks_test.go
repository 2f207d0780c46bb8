package catalog

import (
	"context"
	"sort"
	"sync"

	"github.com/senira34/lolipop-wear/internal/cache"
	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/repository"
)

// MockProductRepository implements repository.ProductRepository for testing
type MockProductRepository struct {
	mu        sync.RWMutex
	products  map[int64]*domain.Product
	listErr   error
	listCalls int
	// afterList runs once a category read has completed, outside the lock.
	afterList func()
}

func NewMockProductRepository(products ...*domain.Product) *MockProductRepository {
	m := &MockProductRepository{products: make(map[int64]*domain.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *MockProductRepository) List(_ context.Context) ([]*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, m.listErr
}

func (m *MockProductRepository) ListByCategory(_ context.Context, category domain.Category) ([]*domain.Product, error) {
	out, hook, err := m.listByCategory(category)
	if hook != nil {
		hook()
	}
	return out, err
}

func (m *MockProductRepository) listByCategory(category domain.Category) ([]*domain.Product, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if m.listErr != nil {
		return nil, m.afterList, m.listErr
	}
	out := make([]*domain.Product, 0)
	for _, p := range m.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, m.afterList, nil
}

func (m *MockProductRepository) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockProductRepository) Create(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; ok {
		return repository.ErrDuplicateProduct
	}
	m.products[product.ID] = product
	return nil
}

func (m *MockProductRepository) Update(_ context.Context, product *domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[product.ID]; !ok {
		return repository.ErrProductNotFound
	}
	m.products[product.ID] = product
	return nil
}

func (m *MockProductRepository) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *MockProductRepository) ListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}

// MockCache implements cache.CatalogCache for testing
type MockCache struct {
	mu          sync.RWMutex
	products    map[domain.Category][]*domain.Product
	facets      map[domain.Category]*domain.Facets
	invalidated []domain.Category
}

func NewMockCache() *MockCache {
	return &MockCache{
		products: make(map[domain.Category][]*domain.Product),
		facets:   make(map[domain.Category]*domain.Facets),
	}
}

func (m *MockCache) GetProducts(_ context.Context, c domain.Category) ([]*domain.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[c]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return p, nil
}

func (m *MockCache) SetProducts(_ context.Context, c domain.Category, products []*domain.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[c] = products
	return nil
}

func (m *MockCache) GetFacets(_ context.Context, c domain.Category) (*domain.Facets, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.facets[c]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return f, nil
}

func (m *MockCache) SetFacets(_ context.Context, c domain.Category, facets *domain.Facets) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.facets[c] = facets
	return nil
}

func (m *MockCache) Invalidate(_ context.Context, categories ...domain.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range categories {
		delete(m.products, c)
		delete(m.facets, c)
	}
	m.invalidated = append(m.invalidated, categories...)
	return nil
}

func (m *MockCache) HasProducts(c domain.Category) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.products[c]
	return ok
}

func (m *MockCache) HasFacets(c domain.Category) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.facets[c]
	return ok
}

func (m *MockCache) Invalidated() []domain.Category {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Category(nil), m.invalidated...)
}
