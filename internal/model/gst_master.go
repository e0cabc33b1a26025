package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// GSTMaster is a tax slab; SGST and CGST normally split the rate in half
// and IGST carries the full rate.
type GSTMaster struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	GSTRate   decimal.Decimal `json:"gstRate" gorm:"column:gst_rate;type:decimal(5,2);not null;uniqueIndex"`
	SGSTRate  decimal.Decimal `json:"sgstRate" gorm:"column:sgst_rate;type:decimal(5,2);not null"`
	CGSTRate  decimal.Decimal `json:"cgstRate" gorm:"column:cgst_rate;type:decimal(5,2);not null"`
	IGSTRate  decimal.Decimal `json:"igstRate" gorm:"column:igst_rate;type:decimal(5,2);not null"`
	IsActive  bool            `json:"isActive" gorm:"column:is_active;not null"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (GSTMaster) TableName() string { return "gst_masters" }
