package models

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// PriceScale is the number of fractional digits stored for a price.
const PriceScale = 2

// Product represents a product in the catalog.
type Product struct {
	ID          int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string          `json:"name" gorm:"type:varchar(255);not null;index"`
	Description *string         `json:"description" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null;check:chk_products_price_non_negative,price >= 0"`
	Category    string          `json:"category" gorm:"type:varchar(100);not null;index"`
}

func (p *Product) TableName() string {
	return "products"
}

// MarshalJSON renders the price with exactly two fractional digits.
func (p Product) MarshalJSON() ([]byte, error) {
	type alias Product
	return json.Marshal(struct {
		alias
		Price string `json:"price"`
	}{
		alias: alias(p),
		Price: p.Price.StringFixed(PriceScale),
	})
}

// ProductInput is the client-supplied field set for creating or replacing a product.
// Price is a pointer so a missing price can be told apart from zero.
type ProductInput struct {
	Name        string           `json:"name" validate:"required,min=1,max=255"`
	Description *string          `json:"description" validate:"omitempty,max=5000"`
	Price       *decimal.Decimal `json:"price" validate:"required,decimal_min=0,decimal_scale=2,decimal_whole=8"`
	Category    string           `json:"category" validate:"required,min=1,max=100"`
}

// Apply overwrites every mutable field of p with the input. Callers validate first.
func (in ProductInput) Apply(p *Product) {
	p.Name = in.Name
	p.Description = in.Description
	if in.Price != nil {
		p.Price = in.Price.Round(PriceScale)
	}
	p.Category = in.Category
}
