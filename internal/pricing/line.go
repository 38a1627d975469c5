package pricing

import (
	"fmt"

	"rentorder-backend/internal/domain"
)

// LinePrice is the pricing result for one order line.
type LinePrice struct {
	// RealUnitPrice is the unit price expressed in the order's duration
	// unit: a product rented at 1/day is worth 30/month on a month order.
	// Service lines keep their sale price unchanged.
	RealUnitPrice float64 `json:"real_unit_price"`
	// DurationUnitPrice is the price of one product for the entire order
	// duration, after the line discount.
	DurationUnitPrice float64 `json:"duration_unit_price"`
	// LinePrice is the line subtotal: DurationUnitPrice times quantity.
	LinePrice float64 `json:"line_price"`
}

// PriceLine computes the price of one line over the order duration. Only the
// line-level discount is applied here; the order's global discount composes
// at aggregation.
func PriceLine(line *domain.RentOrderLine, duration int32, unit domain.DurationUnit) (LinePrice, error) {
	if line.Quantity < 1 {
		return LinePrice{}, fmt.Errorf("line %d: quantity must be at least 1, got %d", line.ID, line.Quantity)
	}

	var real, forDuration float64
	if line.ProductType == domain.ProductTypeRent {
		converted, err := Convert(line.UnitPrice, line.PriceUnit, unit)
		if err != nil {
			return LinePrice{}, err
		}
		real = converted
		forDuration = converted * float64(duration)
	} else {
		// Service products are priced per unit, not per duration.
		real = line.UnitPrice
		forDuration = real
	}

	forDuration *= 1 - line.Discount/100
	return LinePrice{
		RealUnitPrice:     real,
		DurationUnitPrice: forDuration,
		LinePrice:         forDuration * float64(line.Quantity),
	}, nil
}
