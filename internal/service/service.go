package service

import (
	"context"

	"order-service/internal/model"
)

// OrderService defines operations for order management.
type OrderService interface {
	// CreateOrder builds, validates and persists a new pending order.
	CreateOrder(ctx context.Context, req *model.OrderRequest) (*model.OrderResponse, error)

	// GetOrder returns nil, nil when the order does not exist.
	GetOrder(ctx context.Context, orderNumber string) (*model.OrderResponse, error)

	// ListOrdersByEmail pages through a customer's orders, newest first.
	ListOrdersByEmail(ctx context.Context, email string, limit, offset int) ([]model.OrderResponse, error)

	// UpdateStatus loads the order, applies the transition and saves it.
	UpdateStatus(ctx context.Context, change *model.StatusChange) (*model.OrderResponse, error)

	// AddTracking ships the order under a carrier tracking number.
	AddTracking(ctx context.Context, update *model.TrackingUpdate) (*model.OrderResponse, error)

	// CancelOrder moves a pending or confirmed order to cancelled.
	CancelOrder(ctx context.Context, change *model.StatusChange) (*model.OrderResponse, error)
}

// AnalyticsService defines read-only reporting over orders. A nil window
// means the trailing default window ending now.
type AnalyticsService interface {
	Summary(ctx context.Context, window *model.Window) (*model.Summary, error)
	TopProducts(ctx context.Context, window *model.Window, limit int) ([]model.ProductStat, error)
	Dashboard(ctx context.Context, window *model.Window, limit int) (*model.Dashboard, error)
}

// Recorder receives business metrics. *metrics.Registry implements it.
type Recorder interface {
	OrderCreated()
	StatusTransition(status string)
	ConcurrencyConflict()
	EventFailed()
}
