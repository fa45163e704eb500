package model

import (
	"strings"
	"time"
)

// NewOrder builds a pending order from a checkout payload. Defaults are filled
// in, the email is normalised and totals are derived; the result still has to
// pass Validate before it is persisted. Order number, ID and version are
// assigned by the repository.
func NewOrder(req *OrderRequest, now time.Time) (*Order, error) {
	if req == nil {
		return nil, NewValidationError("order", "request body is required")
	}

	customer := req.Customer
	customer.Email = strings.ToLower(strings.TrimSpace(customer.Email))
	customer.FirstName = strings.TrimSpace(customer.FirstName)
	customer.LastName = strings.TrimSpace(customer.LastName)
	customer.Phone = strings.TrimSpace(customer.Phone)
	if strings.TrimSpace(customer.Address.Country) == "" {
		customer.Address.Country = DefaultCountry
	}

	items := make([]OrderItem, len(req.Items))
	for i, in := range req.Items {
		currency := in.Currency
		if currency == "" {
			currency = DefaultCurrency
		}

		total := LineTotal(in.Quantity, in.UnitPrice)
		if in.TotalPrice.Valid {
			// Client-supplied line totals are checked, never trusted.
			total = in.TotalPrice.Decimal
		}

		items[i] = OrderItem{
			ProductRef:      in.ProductRef,
			ProductSnapshot: in.ProductSnapshot,
			Quantity:        in.Quantity,
			UnitPrice:       in.UnitPrice,
			TotalPrice:      total,
			Currency:        currency,
		}
	}

	totals, err := ComputeTotals(items, req.Tax, req.Shipping, req.Discount)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].TotalPrice = LineTotal(items[i].Quantity, items[i].UnitPrice)
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = PaymentCashOnDelivery
	}
	shippingMethod := req.ShippingMethod
	if shippingMethod == "" {
		shippingMethod = ShippingStandard
	}
	language := req.Language
	if language == "" {
		language = LanguageEN
	}

	return &Order{
		Customer:       customer,
		Items:          items,
		Totals:         totals,
		Status:         StatusPending,
		PaymentStatus:  PaymentPending,
		PaymentMethod:  paymentMethod,
		ShippingMethod: shippingMethod,
		Notes:          Notes{Customer: req.Notes},
		Language:       language,
		StatusHistory:  []StatusEntry{},
		ConsentGiven:   req.ConsentGiven,
		ConsentDate:    now,
		IPAddress:      strings.TrimSpace(req.IPAddress),
		UserAgent:      req.UserAgent,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}
