package domain

// StockType mirrors the catalog's product classification. Only stockable and
// consumable products move through shipping; service products are sold
// alongside rentals.
type StockType string

const (
	StockTypeProduct    StockType = "product"
	StockTypeConsumable StockType = "consu"
	StockTypeService    StockType = "service"
)

// Product is the read-only slice of the catalog the pricing and invoicing
// core consumes.
type Product struct {
	ID        int32     `json:"id"`
	Name      string    `json:"name"`
	StockType StockType `json:"stock_type"`
	CanBeRent bool      `json:"can_be_rent"`
	SaleOK    bool      `json:"sale_ok"`
	// RentPrice is expressed per RentPriceUnit, which may differ from the
	// unit of any order the product ends up on.
	RentPrice     float64      `json:"rent_price"`
	RentPriceUnit DurationUnit `json:"rent_price_unit"`
	StandardPrice float64      `json:"standard_price"`
	ListPrice     float64      `json:"list_price"`
	// IncomeAccount is the account invoice lines post to. When empty, the
	// product category's account is used instead.
	IncomeAccount         string  `json:"income_account,omitempty"`
	CategoryIncomeAccount string  `json:"category_income_account,omitempty"`
	QtyAvailable          float64 `json:"qty_available"`
	Taxes                 []Tax   `json:"taxes,omitempty"`
}

// Stockable reports whether the product physically moves through shipping.
func (p *Product) Stockable() bool {
	return p.StockType == StockTypeProduct || p.StockType == StockTypeConsumable
}

// UsableAs checks the line tag against the product capability flags: rent
// lines need a rentable product, service lines a sellable service product.
func (p *Product) UsableAs(t ProductType) bool {
	switch t {
	case ProductTypeRent:
		return p.CanBeRent
	case ProductTypeService:
		return p.StockType == StockTypeService && p.SaleOK
	}
	return false
}
