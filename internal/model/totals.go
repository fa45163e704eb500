package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the precision every amount is compared and stored at.
const MoneyPlaces = 2

// LineTotal is quantity × unit price rounded to MoneyPlaces.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(MoneyPlaces)
}

// ComputeTotals derives order totals from the items and the tax, shipping and
// discount components. Every item's TotalPrice must already equal its
// quantity × unit price at two decimal places; a mismatch, a negative component
// or a negative resulting total fails with a *ValidationError.
func ComputeTotals(items []OrderItem, tax, shipping, discount decimal.Decimal) (Totals, error) {
	verr := &ValidationError{}

	if len(items) == 0 {
		verr.Add("items", "order must contain at least one item")
	}

	currency := ""
	subtotal := decimal.Zero
	for i, item := range items {
		field := fmt.Sprintf("items[%d]", i)

		if item.Quantity < 1 {
			verr.Add(field+".quantity", "must be at least 1")
		}
		if item.UnitPrice.IsNegative() {
			verr.Add(field+".unitPrice", "cannot be negative")
		}
		if item.TotalPrice.IsNegative() {
			verr.Add(field+".totalPrice", "cannot be negative")
		}
		expected := LineTotal(item.Quantity, item.UnitPrice)
		if !item.TotalPrice.Round(MoneyPlaces).Equal(expected) {
			verr.Add(field+".totalPrice", fmt.Sprintf("must equal quantity × unitPrice (%s)", expected.StringFixed(MoneyPlaces)))
		}

		if currency == "" {
			currency = item.Currency
		} else if item.Currency != currency {
			verr.Add(field+".currency", "all items must share one currency")
		}

		subtotal = subtotal.Add(expected)
	}

	if tax.IsNegative() {
		verr.Add("totals.tax", "cannot be negative")
	}
	if shipping.IsNegative() {
		verr.Add("totals.shipping", "cannot be negative")
	}
	if discount.IsNegative() {
		verr.Add("totals.discount", "cannot be negative")
	}

	if currency == "" {
		currency = DefaultCurrency
	}

	tax = tax.Round(MoneyPlaces)
	shipping = shipping.Round(MoneyPlaces)
	discount = discount.Round(MoneyPlaces)
	subtotal = subtotal.Round(MoneyPlaces)
	total := subtotal.Add(tax).Add(shipping).Sub(discount).Round(MoneyPlaces)
	if total.IsNegative() {
		verr.Add("totals.total", "discount exceeds subtotal plus tax and shipping")
	}

	if err := verr.ErrOrNil(); err != nil {
		return Totals{}, err
	}

	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Shipping: shipping,
		Discount: discount,
		Total:    total,
		Currency: currency,
	}, nil
}

// Recompute refreshes o.Totals from the current items, keeping the existing
// tax, shipping and discount components.
func (o *Order) Recompute() error {
	totals, err := ComputeTotals(o.Items, o.Totals.Tax, o.Totals.Shipping, o.Totals.Discount)
	if err != nil {
		return err
	}
	o.Totals = totals
	return nil
}
