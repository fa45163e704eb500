package model

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so callers can map errors onto their form fields.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// Validate checks an order before it is persisted. It returns a
// *ValidationError listing every failing field, or nil.
func Validate(o *Order) error {
	verr := &ValidationError{}

	if err := validate.Struct(o); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate order: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.Add(fieldPath(fe.Namespace()), describe(fe))
		}
	}

	if !o.ConsentGiven {
		verr.Add("consentGiven", "customer consent is required")
	}

	if len(o.Items) > 0 {
		derived, err := ComputeTotals(o.Items, o.Totals.Tax, o.Totals.Shipping, o.Totals.Discount)
		if err != nil {
			var totalsErr *ValidationError
			if !errors.As(err, &totalsErr) {
				return err
			}
			verr.Fields = append(verr.Fields, totalsErr.Fields...)
		} else {
			checkStoredTotals(verr, o.Totals, derived)
		}
	}

	if !o.Status.Valid() {
		verr.Add("status", fmt.Sprintf("unknown status %q", o.Status))
	}

	return verr.ErrOrNil()
}

// checkStoredTotals rejects totals that differ from the ones derived from the
// items. Totals are never taken as independent input.
func checkStoredTotals(verr *ValidationError, stored, derived Totals) {
	if !stored.Subtotal.Round(MoneyPlaces).Equal(derived.Subtotal) {
		verr.Add("totals.subtotal", fmt.Sprintf("must equal the sum of item totals (%s)", derived.Subtotal.StringFixed(MoneyPlaces)))
	}
	if !stored.Total.Round(MoneyPlaces).Equal(derived.Total) {
		verr.Add("totals.total", fmt.Sprintf("must equal subtotal + tax + shipping - discount (%s)", derived.Total.StringFixed(MoneyPlaces)))
	}
	if stored.Currency != derived.Currency {
		verr.Add("totals.currency", "must match the item currency "+derived.Currency)
	}
}

// fieldPath strips the root type name from a validator namespace
// ("Order.customer.email" -> "customer.email").
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "ip":
		return "must be a valid IP address"
	case "gte":
		return "must be at least " + fe.Param()
	case "min":
		return "must contain at least " + fe.Param() + " entry"
	case "oneof":
		return "must be one of: " + fe.Param()
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}
