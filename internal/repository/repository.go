package repository

import (
	"context"
	"errors"

	"github.com/senira34/lolipop-wear/internal/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrDuplicateProduct = errors.New("product with this id already exists")
	ErrOrderNotFound    = errors.New("order not found")
)

// ProductRepository defines catalog persistence.
// Consumers define this interface, not the MongoDB implementation
type ProductRepository interface {
	List(ctx context.Context) ([]*domain.Product, error)
	ListByCategory(ctx context.Context, category domain.Category) ([]*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
}

// OrderRepository is implemented by the MongoDB and Postgres order stores.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	List(ctx context.Context) ([]*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Order, error)
	// Update loads the order, applies mutate and persists the result.
	Update(ctx context.Context, id string, mutate func(*domain.Order)) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}
