package invoicing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/pricing"
	"rentorder-backend/internal/tax"
)

const dateFormat = "2006-01-02"

// MissingIncomeAccountError blocks invoice-line creation when neither the
// product nor its category has an income account configured.
type MissingIncomeAccountError struct {
	ProductID   int32
	ProductName string
}

func (e *MissingIncomeAccountError) Error() string {
	return fmt.Sprintf("no income account defined for product %q (id %d)", e.ProductName, e.ProductID)
}

// Materialize turns one descriptor into an invoice record with one line per
// order line. Service lines are billed once, with the first invoice only;
// rent lines appear on every invoice with their whole-duration price divided
// by the descriptor's price factor.
func Materialize(order *domain.RentOrder, desc Descriptor, products map[int32]*domain.Product, fp *tax.FiscalPosition, engine tax.Engine) (*domain.Invoice, error) {
	invoice := &domain.Invoice{
		ID:          uuid.New(),
		OrderRef:    order.Ref,
		Name:        fmt.Sprintf("Invoice %d/%d", desc.Sequence, desc.Count),
		State:       domain.InvoiceStateDraft,
		Date:        desc.Date,
		PeriodBegin: desc.PeriodBegin,
		PeriodEnd:   desc.PeriodEnd,
		Sequence:    desc.Sequence,
		Count:       desc.Count,
		CustomerID:  order.CustomerID,
		Comment:     invoiceComment(order, desc),
	}

	var untaxed, taxAmount float64
	for i := range order.Lines {
		line := &order.Lines[i]

		if line.ProductType == domain.ProductTypeService && desc.Sequence != 1 {
			continue
		}

		product, ok := products[line.ProductID]
		if !ok {
			return nil, fmt.Errorf("product %d referenced by line %d not found", line.ProductID, line.ID)
		}
		account := product.IncomeAccount
		if account == "" {
			account = product.CategoryIncomeAccount
		}
		if account == "" {
			return nil, &MissingIncomeAccountError{ProductID: product.ID, ProductName: product.Name}
		}

		lp, err := pricing.PriceLine(line, order.Duration, order.DurationUnit)
		if err != nil {
			return nil, err
		}

		unitPrice := lp.DurationUnitPrice
		if line.ProductType == domain.ProductTypeRent {
			unitPrice = lp.DurationUnitPrice / desc.PriceFactor
		}

		taxes := fp.MapTaxes(line.Taxes)
		comp := engine.ComputeAll(taxes, unitPrice, float64(line.Quantity))
		untaxed += comp.Total
		for _, applied := range comp.Taxes {
			taxAmount += applied.Amount
		}

		invoice.Lines = append(invoice.Lines, domain.InvoiceLine{
			ID:          uuid.New(),
			InvoiceID:   invoice.ID,
			ProductID:   line.ProductID,
			Description: line.Description,
			Account:     account,
			UnitPrice:   round2(unitPrice),
			Quantity:    line.Quantity,
			Discount:    line.Discount,
			Taxes:       taxes,
			Notes:       line.Notes,
		})
	}

	// Amounts are rounded here and nowhere earlier.
	invoice.AmountUntaxed = round2(untaxed)
	invoice.AmountTax = round2(taxAmount)
	invoice.AmountTotal = round2(untaxed + taxAmount)
	return invoice, nil
}

func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

func invoiceComment(order *domain.RentOrder, desc Descriptor) string {
	return fmt.Sprintf(
		"Rental from %s to %s, invoice %d/%d.\nInvoice for the period from %s to %s.",
		order.DateBegin.Format(dateFormat),
		order.DateEnd().Format(dateFormat),
		desc.Sequence,
		desc.Count,
		desc.PeriodBegin.Format(dateFormat),
		desc.PeriodEnd.Format(dateFormat),
	)
}
