package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/senira34/lolipop-wear/internal/domain"
)

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) GetProducts(ctx context.Context, category domain.Category) ([]*domain.Product, error) {
	var products []*domain.Product
	if err := r.get(ctx, productsKey(category), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r RedisCache) SetProducts(ctx context.Context, category domain.Category, products []*domain.Product) error {
	return r.set(ctx, productsKey(category), products)
}

func (r RedisCache) GetFacets(ctx context.Context, category domain.Category) (*domain.Facets, error) {
	var facets domain.Facets
	if err := r.get(ctx, facetsKey(category), &facets); err != nil {
		return nil, err
	}
	return &facets, nil
}

func (r RedisCache) SetFacets(ctx context.Context, category domain.Category, facets *domain.Facets) error {
	return r.set(ctx, facetsKey(category), facets)
}

func (r RedisCache) Invalidate(ctx context.Context, categories ...domain.Category) error {
	if len(categories) == 0 {
		return nil
	}
	keys := make([]string, 0, len(categories)*2)
	for _, c := range categories {
		keys = append(keys, productsKey(c), facetsKey(c))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisCache) get(ctx context.Context, key string, dst any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r RedisCache) set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func productsKey(category domain.Category) string {
	return fmt.Sprintf("catalog:products:%s", category)
}

func facetsKey(category domain.Category) string {
	return fmt.Sprintf("catalog:filters:%s", category)
}
