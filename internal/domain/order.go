package domain

import (
	"fmt"
	"time"
)

type OrderState string

const (
	OrderStateDraft     OrderState = "DRAFT"
	OrderStateConfirmed OrderState = "CONFIRMED"
	OrderStateOngoing   OrderState = "ONGOING"
	OrderStateDone      OrderState = "DONE"
	OrderStateCancelled OrderState = "CANCELLED"
)

// CanTransitionTo reports whether the order state machine allows moving to
// the target state. Cancelled is absorbing and reachable from every state
// except done.
func (s OrderState) CanTransitionTo(target OrderState) bool {
	switch target {
	case OrderStateConfirmed:
		return s == OrderStateDraft
	case OrderStateOngoing:
		return s == OrderStateConfirmed
	case OrderStateDone:
		return s == OrderStateOngoing
	case OrderStateCancelled:
		return s == OrderStateDraft || s == OrderStateConfirmed || s == OrderStateOngoing
	case OrderStateDraft:
		return s == OrderStateCancelled
	}
	return false
}

type DurationUnit string

const (
	UnitDay   DurationUnit = "day"
	UnitMonth DurationUnit = "month"
	UnitYear  DurationUnit = "year"
)

func (u DurationUnit) Valid() bool {
	switch u {
	case UnitDay, UnitMonth, UnitYear:
		return true
	}
	return false
}

type ProductType string

const (
	ProductTypeRent    ProductType = "rent"
	ProductTypeService ProductType = "service"
)

// RentOrder is a rental engagement: a customer rents a set of products for a
// duration, and the order is billed through one or more invoices depending
// on its invoice period.
type RentOrder struct {
	ID            int32        `json:"id"`
	Ref           string       `json:"ref"`
	CustomerID    int32        `json:"customer_id"`
	State         OrderState   `json:"state"`
	DateCreated   time.Time    `json:"date_created"`
	DateBegin     time.Time    `json:"date_begin"`
	Duration      int32        `json:"duration"`
	DurationUnit  DurationUnit `json:"duration_unit"`
	Discount      float64      `json:"discount"`
	InvoicePeriod string       `json:"invoice_period"`
	// FiscalPosition remaps line taxes per customer/region before tax
	// computation. Empty means no remapping.
	FiscalPosition string          `json:"fiscal_position,omitempty"`
	Description    string          `json:"description,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Lines          []RentOrderLine `json:"lines,omitempty"`
	CreatedOn      time.Time       `json:"created_on"`
	UpdatedOn      time.Time       `json:"updated_on"`
}

// DateEnd is the last day of the rental: begin date plus the order duration,
// minus one day, so a 1-day rental ends the same day it begins. Date
// boundaries use calendar arithmetic, not the fixed pricing factors.
func (o *RentOrder) DateEnd() time.Time {
	switch o.DurationUnit {
	case UnitMonth:
		return o.DateBegin.AddDate(0, int(o.Duration), -1)
	case UnitYear:
		return o.DateBegin.AddDate(int(o.Duration), 0, -1)
	default:
		return o.DateBegin.AddDate(0, 0, int(o.Duration)-1)
	}
}

// RentOrderLine is one product line of an order. Price fields are a snapshot
// captured from the product when the line is added; pricing never reads live
// catalog prices afterwards.
type RentOrderLine struct {
	ID          int32       `json:"id"`
	OrderID     int32       `json:"order_id"`
	ProductID   int32       `json:"product_id"`
	Description string      `json:"description"`
	ProductType ProductType `json:"product_type"`
	Quantity    int32       `json:"quantity"`
	// UnitPrice is the snapshot price. For rent lines it is denominated in
	// PriceUnit (the product's own rent-price unit), not the order's unit.
	UnitPrice float64      `json:"unit_price"`
	PriceUnit DurationUnit `json:"price_unit"`
	Discount  float64      `json:"discount"`
	Taxes     []Tax        `json:"taxes,omitempty"`
	Notes     string       `json:"notes,omitempty"`
}

// Tax is a named percentage tax applied to a line. Included taxes are
// already part of the unit price.
type Tax struct {
	Name     string  `json:"name"`
	Rate     float64 `json:"rate"`
	Included bool    `json:"included"`
}

// InvalidProductTypeError reports a line whose rent/service tag contradicts
// the referenced product's capability flags.
type InvalidProductTypeError struct {
	ProductID   int32
	ProductName string
	Tagged      ProductType
}

func (e *InvalidProductTypeError) Error() string {
	return fmt.Sprintf("product %q (id %d) cannot be used as a %s line", e.ProductName, e.ProductID, e.Tagged)
}

// QuantityWarning is a non-fatal advisory raised when the requested rent
// quantity exceeds available stock. It never blocks confirmation.
type QuantityWarning struct {
	ProductID int32   `json:"product_id"`
	Requested int32   `json:"requested"`
	Available float64 `json:"available"`
}

func (w *QuantityWarning) Message() string {
	return fmt.Sprintf("you asked %d of product %d, but only %.0f are available", w.Requested, w.ProductID, w.Available)
}
