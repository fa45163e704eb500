package repository

import (
	"context"

	"order-service/internal/model"
)

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// Create validates the order, assigns its ID, order number and version,
	// and inserts it. A colliding order number is regenerated a bounded number
	// of times before ErrDuplicateOrderNumber is returned.
	Create(ctx context.Context, order *model.Order) error

	// GetByOrderNumber returns nil, nil when no order matches.
	GetByOrderNumber(ctx context.Context, orderNumber string) (*model.Order, error)

	// ListByCustomerEmail returns the customer's orders, newest first.
	ListByCustomerEmail(ctx context.Context, email string, limit, offset int) ([]model.Order, error)

	// Update replaces the stored order if its version still matches
	// order.Version, then increments order.Version. A stale version yields
	// ErrConcurrencyConflict; a missing order yields ErrOrderNotFound.
	Update(ctx context.Context, order *model.Order) error
}

// AnalyticsRepository aggregates orders for reporting. It never writes.
type AnalyticsRepository interface {
	// Summary counts every order created inside the window, cancelled ones included.
	Summary(ctx context.Context, window model.Window) (*model.Summary, error)

	// TopProducts ranks products by quantity sold across non-cancelled orders.
	TopProducts(ctx context.Context, window model.Window, limit int) ([]model.ProductStat, error)
}
