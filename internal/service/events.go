package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/phimart/pkg/logging"
)

const (
	TopicOrderEvents   = "order_events"
	TopicCartEvents    = "cart_events"
	TopicProductEvents = "product_events"
)

// EventPublisher is satisfied by *mykafka.Producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }

type OrderEvent struct {
	Type       string    `json:"type"`
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	Status     string    `json:"status"`
	TotalPrice string    `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

type CartEvent struct {
	Type       string    `json:"type"`
	CartID     string    `json:"cart_id"`
	ProductID  string    `json:"product_id,omitempty"`
	Quantity   uint      `json:"quantity,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ProductEvent covers catalog changes: products, categories and reviews.
type ProductEvent struct {
	Type       string    `json:"type"`
	ProductID  string    `json:"product_id,omitempty"`
	CategoryID string    `json:"category_id,omitempty"`
	ReviewID   string    `json:"review_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// publish never fails the caller: events are sent after the data is
// committed and a broker outage only gets logged.
func publish(ctx context.Context, p EventPublisher, topic, key string, event any) {
	if p == nil {
		return
	}
	if err := p.PublishEvent(context.WithoutCancel(ctx), topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("publish_event_failed", "topic", topic, "key", key, "error", err)
	}
}
