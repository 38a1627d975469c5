package pricing

import (
	"rentorder-backend/internal/domain"
	"rentorder-backend/internal/tax"
)

// Totals are the order-level monetary aggregates. The global order discount
// applies to the aggregate and composes with the line discounts already
// baked into each DurationUnitPrice; it is never re-applied per line.
type Totals struct {
	Total                      float64 `json:"total"`
	TotalWithTaxes             float64 `json:"total_with_taxes"`
	TotalTaxes                 float64 `json:"total_taxes"`
	TotalWithDiscount          float64 `json:"total_with_discount"`
	TotalTaxesWithDiscount     float64 `json:"total_taxes_with_discount"`
	TotalWithTaxesWithDiscount float64 `json:"total_with_taxes_with_discount"`
}

// ComputeTotals sums line subtotals into order totals. Lines are summed in
// order, ascending index, and nothing is rounded here; rounding happens once
// at invoice materialization. The fiscal position remaps each line's taxes
// once, before tax computation.
func ComputeTotals(order *domain.RentOrder, fp *tax.FiscalPosition, engine tax.Engine) (Totals, error) {
	var t Totals

	for i := range order.Lines {
		line := &order.Lines[i]

		lp, err := PriceLine(line, order.Duration, order.DurationUnit)
		if err != nil {
			return Totals{}, err
		}

		taxes := fp.MapTaxes(line.Taxes)
		comp := engine.ComputeAll(taxes, lp.DurationUnitPrice, float64(line.Quantity))

		t.Total += comp.Total
		t.TotalWithTaxes += comp.TotalIncluded
		for _, applied := range comp.Taxes {
			t.TotalTaxes += applied.Amount
			t.TotalTaxesWithDiscount += applied.Amount * (1 - order.Discount/100)
		}
	}

	t.TotalWithDiscount = t.Total * (1 - order.Discount/100)
	t.TotalWithTaxesWithDiscount = t.TotalWithDiscount + t.TotalTaxesWithDiscount
	return t, nil
}

// AssetValue is the taxed buy and sell value of all products on an order,
// used to evaluate the rented goods for insurance purposes.
type AssetValue struct {
	BuyPrice  float64 `json:"products_buy_price"`
	SellPrice float64 `json:"products_sell_price"`
}

// ComputeAssetValue totals the catalog standard and list prices of every
// line's product, taxes included.
func ComputeAssetValue(order *domain.RentOrder, products map[int32]*domain.Product, fp *tax.FiscalPosition, engine tax.Engine) AssetValue {
	var v AssetValue
	for i := range order.Lines {
		line := &order.Lines[i]
		product, ok := products[line.ProductID]
		if !ok {
			continue
		}
		taxes := fp.MapTaxes(line.Taxes)
		v.BuyPrice += engine.ComputeAll(taxes, product.StandardPrice, float64(line.Quantity)).TotalIncluded
		v.SellPrice += engine.ComputeAll(taxes, product.ListPrice, float64(line.Quantity)).TotalIncluded
	}
	return v
}
