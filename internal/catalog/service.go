package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/senira34/lolipop-wear/internal/cache"
	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/repository"
	"golang.org/x/sync/singleflight"
)

type Service struct {
	repo   repository.ProductRepository
	cache  cache.CatalogCache
	logger *slog.Logger
	sfg    singleflight.Group // Prevents cache stampede

	// gen counts invalidations per category. A fill that read the
	// repository under an older generation is not written to the cache.
	genMu sync.Mutex
	gen   map[domain.Category]uint64
}

func NewService(repo repository.ProductRepository, c cache.CatalogCache, logger *slog.Logger) *Service {
	if c == nil {
		c = cache.Nop{}
	}
	return &Service{
		repo:   repo,
		cache:  c,
		logger: logger,
		gen:    make(map[domain.Category]uint64),
	}
}

func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.List(ctx)
}

// ListByCategory returns the products of a category. Unknown categories
// have no products.
func (s *Service) ListByCategory(ctx context.Context, category string) ([]*domain.Product, error) {
	c, ok := domain.ParseCategory(category)
	if !ok {
		return []*domain.Product{}, nil
	}

	v, err, _ := s.sfg.Do("products:"+category, func() (interface{}, error) {
		products, err := s.cache.GetProducts(ctx, c)
		if err == nil {
			return products, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "cache get error", "category", category, "error", err)
		}

		gen := s.generation(c)
		products, err = s.repo.ListByCategory(ctx, c)
		if err != nil {
			return nil, err
		}

		s.fill(ctx, c, gen, func(ctx context.Context) error {
			return s.cache.SetProducts(ctx, c, products)
		})
		return products, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]*domain.Product), nil
}

// Filters derives the filter facets of a category. A storage failure is
// returned as is and no partial facets are produced.
func (s *Service) Filters(ctx context.Context, category string) (*domain.Facets, error) {
	c, ok := domain.ParseCategory(category)
	if !ok {
		return domain.EmptyFacets(), nil
	}

	v, err, _ := s.sfg.Do("filters:"+category, func() (interface{}, error) {
		facets, err := s.cache.GetFacets(ctx, c)
		if err == nil {
			return facets, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.WarnContext(ctx, "cache get error", "category", category, "error", err)
		}

		gen := s.generation(c)
		products, err := s.repo.ListByCategory(ctx, c)
		if err != nil {
			return nil, err
		}
		facets = DeriveFacets(products)

		s.fill(ctx, c, gen, func(ctx context.Context) error {
			return s.cache.SetFacets(ctx, c, facets)
		})
		return facets, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Facets), nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return err
	}

	s.invalidate(product.Category)
	return nil
}

func (s *Service) Update(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return err
	}
	existing, err := s.repo.GetByID(ctx, product.ID)
	if err != nil {
		return err
	}
	if err := s.repo.Update(ctx, product); err != nil {
		return err
	}

	s.invalidate(existing.Category, product.Category)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(existing.Category)
	return nil
}

func (s *Service) generation(c domain.Category) uint64 {
	s.genMu.Lock()
	defer s.genMu.Unlock()
	return s.gen[c]
}

// fill writes a freshly read value to the cache unless the category was
// invalidated after the read began. The check and the write share genMu with
// invalidate, so an invalidation either sees the write and clears it or the
// write is skipped.
func (s *Service) fill(ctx context.Context, c domain.Category, gen uint64, set func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()

	s.genMu.Lock()
	defer s.genMu.Unlock()
	if s.gen[c] != gen {
		s.logger.DebugContext(ctx, "cache fill skipped, category invalidated", "category", c)
		return
	}
	if err := set(ctx); err != nil {
		s.logger.WarnContext(ctx, "cache set error", "category", c, "error", err)
	}
}

func (s *Service) invalidate(categories ...domain.Category) {
	s.genMu.Lock()
	for _, c := range categories {
		s.gen[c]++
	}
	s.genMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Invalidate(ctx, categories...); err != nil {
		s.logger.Warn("cache invalidate error", "categories", categories, "error", err)
	}
}
