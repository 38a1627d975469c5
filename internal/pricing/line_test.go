package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rentorder-backend/internal/domain"
)

func TestPriceLine_RentLine(t *testing.T) {
	// A product rented at 100/day on a 2-month order: 3000/month real
	// price, 6000 for the duration.
	line := &domain.RentOrderLine{
		ProductType: domain.ProductTypeRent,
		Quantity:    1,
		UnitPrice:   100,
		PriceUnit:   domain.UnitDay,
	}

	lp, err := PriceLine(line, 2, domain.UnitMonth)
	assert.NoError(t, err)
	assert.InDelta(t, 3000.0, lp.RealUnitPrice, 1e-9)
	assert.InDelta(t, 6000.0, lp.DurationUnitPrice, 1e-9)
	assert.InDelta(t, 6000.0, lp.LinePrice, 1e-9)
}

func TestPriceLine_Quantity(t *testing.T) {
	line := &domain.RentOrderLine{
		ProductType: domain.ProductTypeRent,
		Quantity:    3,
		UnitPrice:   10,
		PriceUnit:   domain.UnitDay,
	}

	lp, err := PriceLine(line, 5, domain.UnitDay)
	assert.NoError(t, err)
	assert.InDelta(t, 10.0, lp.RealUnitPrice, 1e-9)
	assert.InDelta(t, 50.0, lp.DurationUnitPrice, 1e-9)
	assert.InDelta(t, 150.0, lp.LinePrice, 1e-9)
}

func TestPriceLine_LineDiscount(t *testing.T) {
	line := &domain.RentOrderLine{
		ProductType: domain.ProductTypeRent,
		Quantity:    1,
		UnitPrice:   100,
		PriceUnit:   domain.UnitDay,
		Discount:    25,
	}

	lp, err := PriceLine(line, 4, domain.UnitDay)
	assert.NoError(t, err)
	// The discount applies to the duration price, not the real unit price.
	assert.InDelta(t, 100.0, lp.RealUnitPrice, 1e-9)
	assert.InDelta(t, 300.0, lp.DurationUnitPrice, 1e-9)
}

func TestPriceLine_FullDiscount(t *testing.T) {
	line := &domain.RentOrderLine{
		ProductType: domain.ProductTypeRent,
		Quantity:    2,
		UnitPrice:   100,
		PriceUnit:   domain.UnitDay,
		Discount:    100,
	}

	lp, err := PriceLine(line, 10, domain.UnitDay)
	assert.NoError(t, err)
	assert.Equal(t, 0.0, lp.DurationUnitPrice)
	assert.Equal(t, 0.0, lp.LinePrice)
}

func TestPriceLine_ServiceLine(t *testing.T) {
	// Service products are billed per unit regardless of the rental
	// duration.
	line := &domain.RentOrderLine{
		ProductType: domain.ProductTypeService,
		Quantity:    2,
		UnitPrice:   80,
	}

	lp, err := PriceLine(line, 12, domain.UnitMonth)
	assert.NoError(t, err)
	assert.InDelta(t, 80.0, lp.RealUnitPrice, 1e-9)
	assert.InDelta(t, 80.0, lp.DurationUnitPrice, 1e-9)
	assert.InDelta(t, 160.0, lp.LinePrice, 1e-9)
}

func TestPriceLine_InvalidQuantity(t *testing.T) {
	line := &domain.RentOrderLine{
		ProductType: domain.ProductTypeRent,
		Quantity:    0,
		UnitPrice:   100,
		PriceUnit:   domain.UnitDay,
	}

	_, err := PriceLine(line, 1, domain.UnitDay)
	assert.Error(t, err)
}

func TestPriceLine_UnknownPriceUnit(t *testing.T) {
	line := &domain.RentOrderLine{
		ProductType: domain.ProductTypeRent,
		Quantity:    1,
		UnitPrice:   100,
		PriceUnit:   "week",
	}

	_, err := PriceLine(line, 1, domain.UnitDay)
	assert.Error(t, err)
}
