package tax

import (
	"rentorder-backend/internal/domain"
)

// Applied is the computed amount of one tax on a price.
type Applied struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// Computation is the result of applying a tax set to a priced quantity.
// Total is the untaxed base; TotalIncluded adds every tax amount.
type Computation struct {
	Total         float64   `json:"total"`
	TotalIncluded float64   `json:"total_included"`
	Taxes         []Applied `json:"taxes"`
}

// Engine computes taxes over a unit price and quantity. The pricing core
// treats it as an external collaborator.
type Engine interface {
	ComputeAll(taxes []domain.Tax, unitPrice float64, quantity float64) Computation
}

// Calculator is the default percentage-tax engine. Taxes marked included are
// extracted from the price; the rest are added on top.
type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

func (c *Calculator) ComputeAll(taxes []domain.Tax, unitPrice float64, quantity float64) Computation {
	base := unitPrice * quantity

	var includedRate float64
	for _, t := range taxes {
		if t.Included {
			includedRate += t.Rate
		}
	}

	untaxed := base
	if includedRate > 0 {
		untaxed = base * 100 / (100 + includedRate)
	}

	comp := Computation{Total: untaxed, TotalIncluded: untaxed}
	for _, t := range taxes {
		amount := untaxed * t.Rate / 100
		comp.Taxes = append(comp.Taxes, Applied{Name: t.Name, Amount: amount})
		comp.TotalIncluded += amount
	}
	return comp
}

// FiscalPosition remaps taxes per customer or region before computation. A
// tax with no mapping entry passes through unchanged.
type FiscalPosition struct {
	Name     string                  `json:"name"`
	Mappings map[string][]domain.Tax `json:"mappings"`
}

// MapTaxes applies the remapping to a tax set. A nil position is the
// identity.
func (fp *FiscalPosition) MapTaxes(taxes []domain.Tax) []domain.Tax {
	if fp == nil || len(fp.Mappings) == 0 {
		return taxes
	}
	mapped := make([]domain.Tax, 0, len(taxes))
	for _, t := range taxes {
		if repl, ok := fp.Mappings[t.Name]; ok {
			mapped = append(mapped, repl...)
		} else {
			mapped = append(mapped, t)
		}
	}
	return mapped
}
