package cache

import (
	"context"
	"errors"

	"github.com/senira34/lolipop-wear/internal/domain"
)

type CatalogCache interface {
	GetProducts(ctx context.Context, category domain.Category) ([]*domain.Product, error)
	SetProducts(ctx context.Context, category domain.Category, products []*domain.Product) error
	GetFacets(ctx context.Context, category domain.Category) (*domain.Facets, error)
	SetFacets(ctx context.Context, category domain.Category, facets *domain.Facets) error
	Invalidate(ctx context.Context, categories ...domain.Category) error
}

var ErrCacheMiss = errors.New("cache miss")

// Nop never stores anything; every read is a miss.
type Nop struct{}

func (Nop) GetProducts(context.Context, domain.Category) ([]*domain.Product, error) {
	return nil, ErrCacheMiss
}

func (Nop) SetProducts(context.Context, domain.Category, []*domain.Product) error { return nil }

func (Nop) GetFacets(context.Context, domain.Category) (*domain.Facets, error) {
	return nil, ErrCacheMiss
}

func (Nop) SetFacets(context.Context, domain.Category, *domain.Facets) error { return nil }

func (Nop) Invalidate(context.Context, ...domain.Category) error { return nil }
