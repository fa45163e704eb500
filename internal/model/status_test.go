package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrder_ApplyStatus_CancelRule(t *testing.T) {
	tests := []struct {
		name        string
		current     Status
		expectError bool
	}{
		{name: "Pending can cancel", current: StatusPending},
		{name: "Confirmed can cancel", current: StatusConfirmed},
		{name: "Processing cannot cancel", current: StatusProcessing, expectError: true},
		{name: "Shipped cannot cancel", current: StatusShipped, expectError: true},
		{name: "Delivered cannot cancel", current: StatusDelivered, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{Status: tt.current}

			err := order.ApplyStatus(StatusCancelled, "", "admin-1", time.Now())

			if tt.expectError {
				assert.ErrorIs(t, err, ErrCannotCancel)
				assert.Equal(t, tt.current, order.Status)
				assert.Empty(t, order.StatusHistory)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusCancelled, order.Status)
		})
	}
}

func TestOrder_ApplyStatus_PendingConfirmedCancelled(t *testing.T) {
	order := &Order{Status: StatusPending}
	now := time.Now()

	require.NoError(t, order.ApplyStatus(StatusConfirmed, "", "admin-1", now))
	require.NoError(t, order.ApplyStatus(StatusCancelled, "customer asked", "admin-2", now.Add(time.Minute)))

	require.Len(t, order.StatusHistory, 2)
	assert.Equal(t, StatusConfirmed, order.StatusHistory[0].Status)
	assert.Equal(t, "Status changed to confirmed", order.StatusHistory[0].Note)
	assert.Equal(t, "admin-1", order.StatusHistory[0].UpdatedBy)
	assert.Equal(t, StatusCancelled, order.StatusHistory[1].Status)
	assert.Equal(t, "customer asked", order.StatusHistory[1].Note)
	assert.Equal(t, "admin-2", order.StatusHistory[1].UpdatedBy)
}

func TestOrder_ApplyStatus_DeliveredPayment(t *testing.T) {
	tests := []struct {
		name            string
		method          PaymentMethod
		expectedPayment PaymentStatus
	}{
		{name: "Cash on delivery becomes paid", method: PaymentCashOnDelivery, expectedPayment: PaymentPaid},
		{name: "Credit card unchanged", method: PaymentCreditCard, expectedPayment: PaymentPending},
		{name: "Bank transfer unchanged", method: PaymentBankTransfer, expectedPayment: PaymentPending},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := &Order{Status: StatusShipped, PaymentMethod: tt.method, PaymentStatus: PaymentPending}
			at := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

			require.NoError(t, order.ApplyStatus(StatusDelivered, "", "courier", at))

			assert.Equal(t, tt.expectedPayment, order.PaymentStatus)
			require.NotNil(t, order.ActualDelivery)
			assert.Equal(t, at, *order.ActualDelivery)
		})
	}
}

func TestOrder_ApplyStatus_UnknownStatus(t *testing.T) {
	order := &Order{Status: StatusPending}

	err := order.ApplyStatus("teleported", "", "admin", time.Now())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Fields[0].Field)
	assert.Equal(t, StatusPending, order.Status)
	assert.Empty(t, order.StatusHistory)
}

func TestOrder_ApplyStatus_OtherTransitionsUnconstrained(t *testing.T) {
	order := &Order{Status: StatusDelivered}

	require.NoError(t, order.ApplyStatus(StatusPending, "", "admin", time.Now()))

	assert.Equal(t, StatusPending, order.Status)
	assert.Len(t, order.StatusHistory, 1)
}

func TestOrder_ApplyTracking(t *testing.T) {
	eta := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	order := &Order{Status: StatusProcessing}

	require.NoError(t, order.ApplyTracking(" TRK-123 ", &eta, "warehouse", time.Now()))

	assert.Equal(t, StatusShipped, order.Status)
	assert.Equal(t, "TRK-123", order.TrackingNumber)
	require.NotNil(t, order.EstimatedDelivery)
	assert.Equal(t, eta, *order.EstimatedDelivery)
	require.Len(t, order.StatusHistory, 1)
	assert.Equal(t, "Order shipped with tracking number: TRK-123", order.StatusHistory[0].Note)
	assert.Equal(t, "warehouse", order.StatusHistory[0].UpdatedBy)
}

func TestOrder_ApplyTracking_KeepsExistingEstimate(t *testing.T) {
	eta := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	order := &Order{Status: StatusProcessing, EstimatedDelivery: &eta}

	require.NoError(t, order.ApplyTracking("TRK-9", nil, "warehouse", time.Now()))

	assert.Equal(t, eta, *order.EstimatedDelivery)
}

func TestOrder_ApplyTracking_RequiresNumber(t *testing.T) {
	order := &Order{Status: StatusProcessing}

	err := order.ApplyTracking("  ", nil, "warehouse", time.Now())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StatusProcessing, order.Status)
}
