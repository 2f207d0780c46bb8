package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Handler receives each decoded order event. A returned error is logged and
// the consumer moves on to the next message.
type Handler func(ctx context.Context, event OrderEvent) error

type Consumer struct {
	reader messageReader
	logger *slog.Logger
}

// NewConsumer reads the order event topic. With an empty groupID the reader
// starts at the newest offset of partition 0 and commits nothing.
func NewConsumer(topic, groupID string, logger *slog.Logger, brokers ...string) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	}
	if groupID == "" {
		cfg.StartOffset = kafka.LastOffset
	}
	return &Consumer{reader: kafka.NewReader(cfg), logger: logger}
}

// Run hands events to h until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context, h Handler) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		if err := c.processMessage(ctx, h); err != nil {
			return err
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, h Handler) error {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil
		}
		return fmt.Errorf("error reading message: %w", err)
	}

	var event OrderEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		c.logger.WarnContext(ctx, "skipping malformed order event", "offset", m.Offset, "error", err)
		return nil
	}

	if err := h(ctx, event); err != nil {
		c.logger.WarnContext(ctx, "order event handler failed", "order_id", event.OrderID, "type", event.Type, "error", err)
	}
	return nil
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
