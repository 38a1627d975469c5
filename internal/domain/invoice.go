package domain

import (
	"time"

	"github.com/google/uuid"
)

type InvoiceState string

const (
	InvoiceStateDraft     InvoiceState = "DRAFT"
	InvoiceStateOpen      InvoiceState = "OPEN"
	InvoiceStatePaid      InvoiceState = "PAID"
	InvoiceStateCancelled InvoiceState = "CANCELLED"
)

// Confirmed reports whether the invoice left draft and counts towards the
// order's invoiced rate. Confirmed invoices also block order cancellation.
func (s InvoiceState) Confirmed() bool {
	return s == InvoiceStateOpen || s == InvoiceStatePaid
}

// Invoice is one generated customer invoice for a rent order. Sequence and
// Count give the human-readable position, e.g. "Invoice 2/12".
type Invoice struct {
	ID          uuid.UUID    `json:"id"`
	OrderRef    string       `json:"order_ref"`
	Name        string       `json:"name"`
	State       InvoiceState `json:"state"`
	Date        time.Time    `json:"date"`
	PeriodBegin time.Time    `json:"period_begin"`
	PeriodEnd   time.Time    `json:"period_end"`
	Sequence    int          `json:"sequence"`
	Count       int          `json:"count"`
	CustomerID  int32        `json:"customer_id"`
	Comment     string       `json:"comment,omitempty"`
	// AmountUntaxed and AmountTotal are rounded once, at materialization.
	AmountUntaxed float64       `json:"amount_untaxed"`
	AmountTax     float64       `json:"amount_tax"`
	AmountTotal   float64       `json:"amount_total"`
	Lines         []InvoiceLine `json:"lines,omitempty"`
	CreatedOn     time.Time     `json:"created_on"`
}

type InvoiceLine struct {
	ID          uuid.UUID `json:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id"`
	ProductID   int32     `json:"product_id"`
	Description string    `json:"description"`
	Account     string    `json:"account"`
	// UnitPrice is net of the line discount; Discount is carried for
	// display only.
	UnitPrice float64 `json:"unit_price"`
	Quantity  int32   `json:"quantity"`
	Discount  float64 `json:"discount"`
	Taxes     []Tax   `json:"taxes,omitempty"`
	Notes     string  `json:"notes,omitempty"`
}
