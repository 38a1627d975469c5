package invoicing

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/tax"
)

func materializeOrder() *domain.RentOrder {
	return &domain.RentOrder{
		Ref:           "RO000042",
		CustomerID:    9,
		State:         domain.OrderStateOngoing,
		DateBegin:     time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Duration:      1,
		DurationUnit:  domain.UnitYear,
		InvoicePeriod: "monthly",
		Lines: []domain.RentOrderLine{
			{
				ID:          1,
				ProductID:   10,
				Description: "Excavator",
				ProductType: domain.ProductTypeRent,
				Quantity:    1,
				UnitPrice:   1200, // per year
				PriceUnit:   domain.UnitYear,
				Taxes:       []domain.Tax{{Name: "VAT 20%", Rate: 20}},
			},
			{
				ID:          2,
				ProductID:   11,
				Description: "Delivery",
				ProductType: domain.ProductTypeService,
				Quantity:    1,
				UnitPrice:   90,
			},
		},
	}
}

func materializeProducts() map[int32]*domain.Product {
	return map[int32]*domain.Product{
		10: {ID: 10, Name: "Excavator", IncomeAccount: "706000"},
		11: {ID: 11, Name: "Delivery", CategoryIncomeAccount: "708500"},
	}
}

func TestMaterialize_FirstInvoice(t *testing.T) {
	order := materializeOrder()
	descs, err := Schedule(order)
	require.NoError(t, err)

	inv, err := Materialize(order, descs[0], materializeProducts(), nil, tax.NewCalculator())
	require.NoError(t, err)

	assert.Equal(t, "Invoice 1/12", inv.Name)
	assert.Equal(t, domain.InvoiceStateDraft, inv.State)
	assert.Equal(t, "RO000042", inv.OrderRef)
	assert.Equal(t, int32(9), inv.CustomerID)
	require.Len(t, inv.Lines, 2)

	// The whole-year rent price is divided across the 12 invoices.
	assert.InDelta(t, 100.0, inv.Lines[0].UnitPrice, 1e-9)
	assert.Equal(t, "706000", inv.Lines[0].Account)
	// The service product falls back to its category account.
	assert.InDelta(t, 90.0, inv.Lines[1].UnitPrice, 1e-9)
	assert.Equal(t, "708500", inv.Lines[1].Account)

	assert.InDelta(t, 190.0, inv.AmountUntaxed, 1e-9)
	assert.InDelta(t, 20.0, inv.AmountTax, 1e-9)
	assert.InDelta(t, 210.0, inv.AmountTotal, 1e-9)

	assert.Equal(t,
		"Rental from 2026-05-01 to 2027-04-30, invoice 1/12.\nInvoice for the period from 2026-05-01 to 2026-05-31.",
		inv.Comment)
}

func TestMaterialize_ServiceLinesOnlyOnFirstInvoice(t *testing.T) {
	order := materializeOrder()
	descs, err := Schedule(order)
	require.NoError(t, err)

	inv, err := Materialize(order, descs[1], materializeProducts(), nil, tax.NewCalculator())
	require.NoError(t, err)

	assert.Equal(t, "Invoice 2/12", inv.Name)
	require.Len(t, inv.Lines, 1)
	assert.Equal(t, "Excavator", inv.Lines[0].Description)
	assert.InDelta(t, 100.0, inv.AmountUntaxed, 1e-9)
}

func TestMaterialize_MissingIncomeAccount(t *testing.T) {
	order := materializeOrder()
	descs, err := Schedule(order)
	require.NoError(t, err)

	products := materializeProducts()
	products[10].IncomeAccount = ""
	products[10].CategoryIncomeAccount = ""

	_, err = Materialize(order, descs[0], products, nil, tax.NewCalculator())
	var accountErr *MissingIncomeAccountError
	require.True(t, errors.As(err, &accountErr))
	assert.Equal(t, int32(10), accountErr.ProductID)
}

func TestMaterialize_UnknownProduct(t *testing.T) {
	order := materializeOrder()
	descs, err := Schedule(order)
	require.NoError(t, err)

	_, err = Materialize(order, descs[0], map[int32]*domain.Product{}, nil, tax.NewCalculator())
	assert.Error(t, err)
}

func TestMaterialize_LineDiscountNetsUnitPrice(t *testing.T) {
	order := materializeOrder()
	order.DurationUnit = domain.UnitMonth
	order.Duration = 2
	order.InvoicePeriod = "once"
	order.Lines = order.Lines[:1]
	order.Lines[0].PriceUnit = domain.UnitMonth
	order.Lines[0].UnitPrice = 100
	order.Lines[0].Discount = 10
	order.Lines[0].Taxes = nil

	descs, err := Schedule(order)
	require.NoError(t, err)

	inv, err := Materialize(order, descs[0], materializeProducts(), nil, tax.NewCalculator())
	require.NoError(t, err)

	require.Len(t, inv.Lines, 1)
	// 100 x 2 months less 10%, billed in one invoice.
	assert.InDelta(t, 180.0, inv.Lines[0].UnitPrice, 1e-9)
	assert.InDelta(t, 10.0, inv.Lines[0].Discount, 1e-9)
	assert.InDelta(t, 180.0, inv.AmountUntaxed, 1e-9)
}

func TestMaterialize_FiscalPosition(t *testing.T) {
	order := materializeOrder()
	descs, err := Schedule(order)
	require.NoError(t, err)

	fp := &tax.FiscalPosition{
		Name: "export",
		Mappings: map[string][]domain.Tax{
			"VAT 20%": {{Name: "VAT 0%", Rate: 0}},
		},
	}

	inv, err := Materialize(order, descs[0], materializeProducts(), fp, tax.NewCalculator())
	require.NoError(t, err)

	assert.InDelta(t, 0.0, inv.AmountTax, 1e-9)
	assert.Equal(t, "VAT 0%", inv.Lines[0].Taxes[0].Name)
}
