package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is applied when a product is created without one.
const DefaultCurrency = "INR"

// Product represents a product in the catalog.
type Product struct {
	ID                 string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CategoryID         string          `json:"category" gorm:"type:varchar(36);not null;index"`
	Category           *Category       `json:"-" gorm:"foreignKey:CategoryID"`
	ProductName        string          `json:"product_name" gorm:"type:varchar(255);not null;index"`
	ProductDescription string          `json:"product_description" gorm:"type:text"`
	ProductPrice       decimal.Decimal `json:"product_price" gorm:"type:decimal(12,2);not null;default:0"`
	Currency           string          `json:"currency" gorm:"type:varchar(3);not null;default:'INR'"`
	StockQuantity      int             `json:"stock_quantity" gorm:"not null;default:0"`
	SKU                string          `json:"sku" gorm:"type:varchar(100)"`
	ImageURL           string          `json:"image_url" gorm:"type:varchar(500)"`
	IsDeleted          bool            `json:"is_deleted" gorm:"not null;default:false;index"`
	CreatedAt          time.Time       `json:"-"`
	UpdatedAt          time.Time       `json:"-"`
}

// CategoryName returns the name of the loaded category, or "" when it was not preloaded.
func (p *Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.CategoryName
}
