package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalogue entry referenced by invoice line items
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	ProductName string          `json:"productName" gorm:"column:product_name;type:varchar(255);not null"`
	Description *string         `json:"description" gorm:"type:varchar(255)"`
	HSNCode     *string         `json:"hsnCode" gorm:"column:hsn_code;type:varchar(8)"`
	UOM         string          `json:"uom" gorm:"column:uom;type:varchar(10);not null"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	CompanyID   string          `json:"companyId" gorm:"column:company_id;type:varchar(4);index;not null"`
	IsActive    bool            `json:"isActive" gorm:"column:is_active;not null"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (Product) TableName() string { return "products" }
