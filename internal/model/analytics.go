package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultAnalyticsWindow is the trailing period used when no window is given.
const DefaultAnalyticsWindow = 30 * 24 * time.Hour

// DefaultTopProductsLimit is used when no limit is given.
const DefaultTopProductsLimit = 10

// Window is a closed interval [Start, End] over order creation time.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// TrailingWindow returns [now-length, now].
func TrailingWindow(now time.Time, length time.Duration) Window {
	return Window{Start: now.Add(-length), End: now}
}

// Validate rejects windows whose start is after their end.
func (w Window) Validate() error {
	if w.Start.After(w.End) {
		return ErrInvalidWindow
	}
	return nil
}

// Summary aggregates every order created inside a window, regardless of status.
type Summary struct {
	Window            Window          `json:"window"`
	TotalOrders       int64           `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue"`
	PendingCount      int64           `json:"pendingCount"`
	DeliveredCount    int64           `json:"deliveredCount"`
	CancelledCount    int64           `json:"cancelledCount"`
}

// ProductStat aggregates one product across non-cancelled orders in a window.
type ProductStat struct {
	ProductRef    string          `json:"productRef"`
	TotalQuantity int64           `json:"totalQuantity"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	OrderCount    int64           `json:"orderCount"`
	NameSnapshot  LocalizedText   `json:"nameSnapshot"`
	SKU           string          `json:"sku,omitempty"`
}

// Dashboard bundles the summary and top products for one window.
type Dashboard struct {
	Summary     *Summary      `json:"summary"`
	TopProducts []ProductStat `json:"topProducts"`
}
