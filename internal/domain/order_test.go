package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOrderState_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to OrderState
		want     bool
	}{
		{OrderStateDraft, OrderStateConfirmed, true},
		{OrderStateConfirmed, OrderStateOngoing, true},
		{OrderStateOngoing, OrderStateDone, true},
		{OrderStateDraft, OrderStateCancelled, true},
		{OrderStateConfirmed, OrderStateCancelled, true},
		{OrderStateOngoing, OrderStateCancelled, true},
		{OrderStateCancelled, OrderStateDraft, true},

		{OrderStateDraft, OrderStateOngoing, false},
		{OrderStateDraft, OrderStateDone, false},
		{OrderStateDone, OrderStateCancelled, false},
		{OrderStateDone, OrderStateDraft, false},
		{OrderStateCancelled, OrderStateConfirmed, false},
		{OrderStateConfirmed, OrderStateConfirmed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestRentOrder_DateEnd(t *testing.T) {
	begin := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		duration int32
		unit     DurationUnit
		want     time.Time
	}{
		{"one day ends same day", 1, UnitDay, begin},
		{"ten days", 10, UnitDay, time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC)},
		// Calendar arithmetic, not 30-day months: Jan 31 + 1 month - 1 day
		// normalizes through Feb 30 to Mar 2 in a non-leap year.
		{"one month from Jan 31", 1, UnitMonth, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)},
		{"one year", 1, UnitYear, time.Date(2027, 1, 30, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &RentOrder{DateBegin: begin, Duration: tt.duration, DurationUnit: tt.unit}
			assert.Equal(t, tt.want, o.DateEnd())
		})
	}
}

func TestProduct_UsableAs(t *testing.T) {
	rentable := &Product{StockType: StockTypeProduct, CanBeRent: true}
	svc := &Product{StockType: StockTypeService, SaleOK: true}

	assert.True(t, rentable.UsableAs(ProductTypeRent))
	assert.False(t, rentable.UsableAs(ProductTypeService))
	assert.True(t, svc.UsableAs(ProductTypeService))
	assert.False(t, svc.UsableAs(ProductTypeRent))
}

func TestProduct_Stockable(t *testing.T) {
	assert.True(t, (&Product{StockType: StockTypeProduct}).Stockable())
	assert.True(t, (&Product{StockType: StockTypeConsumable}).Stockable())
	assert.False(t, (&Product{StockType: StockTypeService}).Stockable())
}

func TestInvoiceState_Confirmed(t *testing.T) {
	assert.False(t, InvoiceStateDraft.Confirmed())
	assert.True(t, InvoiceStateOpen.Confirmed())
	assert.True(t, InvoiceStatePaid.Confirmed())
	assert.False(t, InvoiceStateCancelled.Confirmed())
}
