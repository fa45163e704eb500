package model

import (
	"fmt"
	"strings"
	"time"
)

// ApplyStatus moves the order to next and appends exactly one audit entry.
//
// Only two rules constrain the move: cancelled is reachable from pending or
// confirmed alone, and delivering a cash-on-delivery order settles payment.
// Any other transition between known statuses is accepted.
func (o *Order) ApplyStatus(next Status, note, actor string, at time.Time) error {
	if !next.Valid() {
		return NewValidationError("status", fmt.Sprintf("unknown status %q", next))
	}

	if next == StatusCancelled && !o.CanCancel() {
		return ErrCannotCancel
	}

	if strings.TrimSpace(note) == "" {
		note = fmt.Sprintf("Status changed to %s", next)
	}

	o.Status = next

	if next == StatusDelivered {
		delivered := at
		o.ActualDelivery = &delivered
		if o.PaymentMethod == PaymentCashOnDelivery {
			o.PaymentStatus = PaymentPaid
		}
	}

	o.appendHistory(next, note, actor, at)
	return nil
}

// ApplyTracking ships the order under trackingNumber. The estimated delivery
// is only replaced when one is supplied.
func (o *Order) ApplyTracking(trackingNumber string, estimatedDelivery *time.Time, actor string, at time.Time) error {
	trackingNumber = strings.TrimSpace(trackingNumber)
	if trackingNumber == "" {
		return NewValidationError("trackingNumber", "is required")
	}

	o.TrackingNumber = trackingNumber
	o.Status = StatusShipped
	if estimatedDelivery != nil {
		eta := *estimatedDelivery
		o.EstimatedDelivery = &eta
	}

	o.appendHistory(StatusShipped, "Order shipped with tracking number: "+trackingNumber, actor, at)
	return nil
}

func (o *Order) appendHistory(status Status, note, actor string, at time.Time) {
	o.StatusHistory = append(o.StatusHistory, StatusEntry{
		Status:    status,
		Timestamp: at,
		Note:      note,
		UpdatedBy: actor,
	})
}
