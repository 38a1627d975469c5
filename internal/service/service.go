package service

import (
	"context"
	"time"

	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/pricing"
)

// CreateOrderInput carries everything needed to open a draft order. Duration
// unit and invoice period fall back to the configured defaults when empty;
// the fallback is resolved once, at creation, never re-resolved later.
type CreateOrderInput struct {
	CustomerID     int32
	DateBegin      time.Time
	Duration       int32
	DurationUnit   domain.DurationUnit
	Discount       float64
	InvoicePeriod  string
	FiscalPosition string
	Description    string
	Notes          string
}

// AddLineInput adds one product line to a draft order. Price, taxes and the
// rent-price unit are snapshotted from the catalog; the product type is
// derived from the product unless tagged explicitly.
type AddLineInput struct {
	ProductID   int32
	ProductType domain.ProductType
	Quantity    int32
	Discount    float64
	Notes       string
}

// UpdateLineInput edits a draft line. Nil fields are left unchanged.
type UpdateLineInput struct {
	Quantity  *int32
	UnitPrice *float64
	Discount  *float64
	Notes     *string
}

// OrderTotals bundles the aggregate pricing view of one order.
type OrderTotals struct {
	pricing.Totals
	pricing.AssetValue
	InvoicedRate float64 `json:"invoiced_rate"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, input *CreateOrderInput) (*domain.RentOrder, error)
	GetOrder(ctx context.Context, id int32) (*domain.RentOrder, error)
	AddLine(ctx context.Context, orderID int32, input *AddLineInput) (*domain.RentOrderLine, *domain.QuantityWarning, error)
	UpdateLine(ctx context.Context, orderID, lineID int32, input *UpdateLineInput) (*domain.RentOrderLine, error)
	RemoveLine(ctx context.Context, orderID, lineID int32) error

	Confirm(ctx context.Context, id int32) error
	Activate(ctx context.Context, id int32) ([]domain.Invoice, error)
	Cancel(ctx context.Context, id int32) error
	Complete(ctx context.Context, id int32) error
	ResetToDraft(ctx context.Context, id int32) error

	GenerateInvoices(ctx context.Context, id int32) ([]domain.Invoice, error)
	ListInvoices(ctx context.Context, id int32) ([]domain.Invoice, error)
	Totals(ctx context.Context, id int32) (*OrderTotals, error)
}
