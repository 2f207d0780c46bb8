package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/pricing"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrItemNotFound    = errors.New("item not found in cart")
)

// Item is one cart line. Name, image and price are captured when the line is added.
type Item struct {
	ProductID int64   `json:"productId"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Size      string  `json:"size"`
	Color     string  `json:"color"`
	Quantity  int     `json:"quantity"`
}

// Key identifies a cart line; the same product in another size or color is a separate line.
type Key struct {
	ProductID int64
	Size      string
	Color     string
}

func (i Item) Key() Key {
	return Key{ProductID: i.ProductID, Size: i.Size, Color: i.Color}
}

// Store persists cart contents between sessions.
type Store interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
	Clear(ctx context.Context) error
}

// Cart holds the lines of one shopping session and writes through to its Store
// after every change.
type Cart struct {
	mu    sync.RWMutex
	items []Item
	store Store
}

// Open loads the persisted cart from store.
func Open(ctx context.Context, store Store) (*Cart, error) {
	items, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return &Cart{items: items, store: store}, nil
}

// Add merges the item into an existing line with the same key or appends it.
func (c *Cart) Add(ctx context.Context, item Item) error {
	if item.Quantity < 1 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := append([]Item(nil), c.items...)
	merged := false
	for i := range next {
		if next[i].Key() == item.Key() {
			next[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		next = append(next, item)
	}
	return c.commit(ctx, next)
}

func (c *Cart) Remove(ctx context.Context, key Key) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Key() == key {
			next := make([]Item, 0, len(c.items)-1)
			next = append(next, c.items[:i]...)
			next = append(next, c.items[i+1:]...)
			return c.commit(ctx, next)
		}
	}
	return ErrItemNotFound
}

// UpdateQuantity sets the quantity of a line; quantities below 1 are rejected
// and leave the cart unchanged.
func (c *Cart) UpdateQuantity(ctx context.Context, key Key, quantity int) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].Key() == key {
			next := append([]Item(nil), c.items...)
			next[i].Quantity = quantity
			return c.commit(ctx, next)
		}
	}
	return ErrItemNotFound
}

func (c *Cart) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	c.items = nil
	return nil
}

func (c *Cart) Items() []Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Item(nil), c.items...)
}

// Count is the number of units across all lines.
func (c *Cart) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items) == 0
}

func (c *Cart) Total() decimal.Decimal {
	return pricing.Subtotal(c.Lines())
}

func (c *Cart) Lines() []pricing.Line {
	c.mu.RLock()
	defer c.mu.RUnlock()
	lines := make([]pricing.Line, 0, len(c.items))
	for _, it := range c.items {
		lines = append(lines, pricing.Line{UnitPrice: it.Price, Quantity: it.Quantity})
	}
	return lines
}

// OrderItems snapshots the cart lines for an order record.
func (c *Cart) OrderItems() []domain.OrderItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.OrderItem, 0, len(c.items))
	for _, it := range c.items {
		id := it.ProductID
		out = append(out, domain.OrderItem{
			ProductID: &id,
			Name:      it.Name,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Size:      it.Size,
			Color:     it.Color,
			Image:     it.Image,
		})
	}
	return out
}

// commit persists next and only then makes it the in-memory cart, so a
// failed write leaves both sides as they were.
func (c *Cart) commit(ctx context.Context, next []Item) error {
	if err := c.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	c.items = next
	return nil
}
