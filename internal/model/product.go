package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. SKULower is the uniqueness key; SKU keeps the
// casing the product was last written with.
type Product struct {
	BaseModel
	SKU         string              `gorm:"type:varchar(255);not null" json:"sku"`
	SKULower    string              `gorm:"column:sku_lower;type:varchar(255);not null;uniqueIndex:uq_products_sku_lower" json:"-"`
	Name        string              `gorm:"type:varchar(512)" json:"name"`
	Description string              `gorm:"type:varchar(1024)" json:"description"`
	Price       decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"price"`
	Active      bool                `gorm:"not null" json:"active"`
}

// Column limits of the products table.
const (
	MaxSKULen         = 255
	MaxNameLen        = 512
	MaxDescriptionLen = 1024
)

// MaxPrice is the largest value numeric(10,2) can hold.
var MaxPrice = decimal.RequireFromString("99999999.99")

// ProductDraft is a normalized, validated product ready to be written.
type ProductDraft struct {
	SKU         string
	SKULower    string
	Name        string
	Description string
	Price       decimal.NullDecimal
	Active      bool
}

// NormalizeSKU trims the display SKU and returns it with its lowercase key.
func NormalizeSKU(sku string) (string, string) {
	sku = strings.TrimSpace(sku)
	return sku, strings.ToLower(sku)
}

// Product converts the draft into a new Product row.
func (d ProductDraft) Product() *Product {
	return &Product{
		SKU:         d.SKU,
		SKULower:    d.SKULower,
		Name:        d.Name,
		Description: d.Description,
		Price:       d.Price,
		Active:      d.Active,
	}
}
