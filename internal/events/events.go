package events

import (
	"context"
	"time"

	"order-service/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type names an order lifecycle event.
type Type string

const (
	TypeOrderCreated  Type = "order.created"
	TypeStatusChanged Type = "order.status_changed"
	TypeOrderShipped  Type = "order.shipped"
)

// OrderEvent is published after an order change has been saved. It carries
// no customer PII.
type OrderEvent struct {
	ID            uuid.UUID           `json:"id"`
	Type          Type                `json:"type"`
	OrderNumber   string              `json:"orderNumber"`
	Status        model.Status        `json:"status"`
	PaymentStatus model.PaymentStatus `json:"paymentStatus"`
	Total         decimal.Decimal     `json:"total"`
	Currency      string              `json:"currency"`
	Version       int                 `json:"version"`
	Actor         string              `json:"actor,omitempty"`
	OccurredAt    time.Time           `json:"occurredAt"`
}

// NewOrderEvent snapshots the non-PII state of order.
func NewOrderEvent(eventType Type, order *model.Order, actor string, at time.Time) OrderEvent {
	return OrderEvent{
		ID:            uuid.New(),
		Type:          eventType,
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Total:         order.Totals.Total,
		Currency:      order.Totals.Currency,
		Version:       order.Version,
		Actor:         actor,
		OccurredAt:    at,
	}
}

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	Publish(ctx context.Context, event OrderEvent) error
	Close() error
}
