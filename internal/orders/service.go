package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/senira34/lolipop-wear/internal/domain"
	"github.com/senira34/lolipop-wear/internal/events"
	"github.com/senira34/lolipop-wear/internal/pricing"
	"github.com/senira34/lolipop-wear/internal/repository"
)

type Service struct {
	repo      repository.OrderRepository
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(repo repository.OrderRepository, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create validates the draft, applies defaults and persists it.
func (s *Service) Create(ctx context.Context, draft *domain.Order) (*domain.Order, error) {
	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	order := *draft
	order.ID = ""
	if order.OrderStatus == "" {
		order.OrderStatus = domain.OrderStatusPending
	}
	if order.IsPaid {
		if order.PaidAt == nil {
			now := s.now()
			order.PaidAt = &now
		}
	} else {
		order.PaidAt = nil
	}
	order.IsDelivered = order.OrderStatus == domain.OrderStatusDelivered
	if !order.IsDelivered {
		order.DeliveredAt = nil
	}

	if err := s.repo.Create(ctx, &order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.publish(ctx, events.OrderCreated, &order)
	return &order, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.Order, error) {
	return s.repo.List(ctx)
}

// ListByUser returns the user's orders, most recent first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

// SetStatus overwrites the order status. Any status may follow any other.
func (s *Service) SetStatus(ctx context.Context, id string, status domain.OrderStatus) (*domain.Order, error) {
	if status != "" && !status.Valid() {
		return nil, domain.NewValidationError("invalid order status", "status")
	}

	order, err := s.repo.Update(ctx, id, func(o *domain.Order) {
		o.ApplyStatus(status, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderStatusChanged, order)
	return order, nil
}

func (s *Service) MarkPaid(ctx context.Context, id string, result domain.PaymentResult) (*domain.Order, error) {
	order, err := s.repo.Update(ctx, id, func(o *domain.Order) {
		o.ApplyPayment(result, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.OrderPaid, order)
	return order, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, events.OrderDeleted, &domain.Order{ID: id})
	return nil
}

func (s *Service) publish(ctx context.Context, t events.EventType, order *domain.Order) {
	if err := s.publisher.Publish(ctx, events.NewOrderEvent(t, order)); err != nil {
		s.logger.WarnContext(ctx, "order event not published", "type", t, "order_id", order.ID, "error", err)
	}
}

func validateDraft(o *domain.Order) error {
	var fields []string
	message := "invalid order"

	if len(o.OrderItems) == 0 {
		fields = append(fields, "orderItems")
	}
	if o.ShippingAddress.IsBlank() {
		fields = append(fields, "shippingAddress")
	} else {
		fields = append(fields, o.ShippingAddress.MissingFields()...)
	}
	if o.PaymentMethod == "" || !o.PaymentMethod.Valid() {
		fields = append(fields, "paymentMethod")
	}
	if o.OrderStatus != "" && !o.OrderStatus.Valid() {
		fields = append(fields, "orderStatus")
	}

	lines := make([]pricing.Line, 0, len(o.OrderItems))
	for i, item := range o.OrderItems {
		if item.Name == "" {
			fields = append(fields, fmt.Sprintf("orderItems[%d].name", i))
		}
		if item.Quantity < 1 {
			fields = append(fields, fmt.Sprintf("orderItems[%d].quantity", i))
		}
		if item.Price < 0 {
			fields = append(fields, fmt.Sprintf("orderItems[%d].price", i))
		}
		lines = append(lines, pricing.Line{UnitPrice: item.Price, Quantity: item.Quantity})
	}

	if o.ItemsPrice < 0 || o.ShippingPrice < 0 || o.TaxPrice < 0 || o.TotalPrice < 0 {
		fields = append(fields, "prices")
	}

	// Totals are only checked when the client states them.
	if len(fields) == 0 && o.TotalPrice > 0 {
		if !pricing.Equal(o.ItemsPrice, pricing.Float(pricing.Subtotal(lines))) {
			fields = append(fields, "itemsPrice")
			message = "order totals do not match items"
		}
		if !pricing.Equal(o.TotalPrice, o.ItemsPrice+o.ShippingPrice+o.TaxPrice) {
			fields = append(fields, "totalPrice")
			message = "order totals do not match items"
		}
	}

	if len(fields) > 0 {
		return domain.NewValidationError(message, fields...)
	}
	return nil
}
