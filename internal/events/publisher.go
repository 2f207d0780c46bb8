package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/senira34/lolipop-wear/internal/domain"
)

const DefaultTopic = "order-events"

type EventType string

const (
	OrderCreated       EventType = "order.created"
	OrderStatusChanged EventType = "order.status_changed"
	OrderPaid          EventType = "order.paid"
	OrderDeleted       EventType = "order.deleted"
)

// OrderEvent is the message published for every order write.
type OrderEvent struct {
	Type       EventType          `json:"type"`
	OrderID    string             `json:"order_id"`
	User       domain.Owner       `json:"user"`
	Status     domain.OrderStatus `json:"status,omitempty"`
	IsPaid     bool               `json:"is_paid"`
	TotalPrice float64            `json:"total_price"`
	OccurredAt time.Time          `json:"occurred_at"`
}

func NewOrderEvent(t EventType, order *domain.Order) OrderEvent {
	return OrderEvent{
		Type:       t,
		OrderID:    order.ID,
		User:       order.User,
		Status:     order.OrderStatus,
		IsPaid:     order.IsPaid,
		TotalPrice: order.TotalPrice,
		OccurredAt: time.Now().UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer messageWriter
}

func NewKafkaPublisher(topic string, brokers ...string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal order event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.OrderID), // order id for ordering
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish order event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop drops every event.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) error { return nil }
