package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is never physically deleted: deactivation clears IsActive and
// both numbers stay taken. The bill partition index is not unique because
// rows of different partitions may legitimately share a bill number.
type Invoice struct {
	ID                   uint            `json:"id" gorm:"primaryKey"`
	InvoiceNumber        string          `json:"invoiceNumber" gorm:"column:invoice_number;type:varchar(6);uniqueIndex;not null"`
	BillNumber           string          `json:"billNumber" gorm:"column:bill_number;type:varchar(10)"`
	CustomerID           uint            `json:"customerId" gorm:"column:customer_id;not null;index"`
	Customer             *Customer       `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	CompanyProfileID     string          `json:"companyProfileId" gorm:"column:company_profile_id;type:varchar(4);not null;index:idx_invoices_bill_partition,priority:1"`
	CompanyProfile       *CompanyProfile `json:"companyProfile,omitempty" gorm:"foreignKey:CompanyProfileID"`
	UserID               uint            `json:"userId" gorm:"column:user_id;not null;index"`
	BillDate             time.Time       `json:"billDate" gorm:"column:bill_date;not null"`
	BillYear             string          `json:"billYear" gorm:"column:bill_year;type:varchar(4);not null;index:idx_invoices_bill_partition,priority:2"`
	DeliveryAt           *string         `json:"deliveryAt" gorm:"column:delivery_at;type:varchar(255)"`
	Transport            *string         `json:"transport" gorm:"type:varchar(255)"`
	LRNumber             *string         `json:"lrNumber" gorm:"column:lr_number;type:varchar(255)"`
	TotalAssessableValue decimal.Decimal `json:"totalAssessableValue" gorm:"column:total_assessable_value;type:decimal(12,2);not null;default:0"`
	SGSTAmount           decimal.Decimal `json:"sgstAmount" gorm:"column:sgst_amount;type:decimal(12,2);not null;default:0"`
	CGSTAmount           decimal.Decimal `json:"cgstAmount" gorm:"column:cgst_amount;type:decimal(12,2);not null;default:0"`
	IGSTAmount           decimal.Decimal `json:"igstAmount" gorm:"column:igst_amount;type:decimal(12,2);not null;default:0"`
	GST                  int8            `json:"gst" gorm:"column:gst;not null;default:0;index:idx_invoices_bill_partition,priority:3"`
	BillValue            decimal.Decimal `json:"billValue" gorm:"column:bill_value;type:decimal(12,2);not null;default:0"`
	IsActive             bool            `json:"isActive" gorm:"column:is_active;not null"`
	Items                []InvoiceItem   `json:"invoiceItems" gorm:"foreignKey:InvoiceID"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

func (Invoice) TableName() string { return "invoices" }

// InvoiceItem is one line of an invoice. Amount is rate times quantity,
// stored when the line is written.
type InvoiceItem struct {
	ID        uint            `json:"id" gorm:"primaryKey"`
	InvoiceID uint            `json:"invoiceId" gorm:"column:invoice_id;not null;index"`
	ProductID uint            `json:"productId" gorm:"column:product_id;not null"`
	Product   *Product        `json:"product,omitempty" gorm:"foreignKey:ProductID"`
	HSNCode   *string         `json:"hsnCode" gorm:"column:hsn_code;type:varchar(8)"`
	UOM       string          `json:"uom" gorm:"column:uom;type:varchar(10);not null"`
	Quantity  int             `json:"quantity" gorm:"not null;default:1"`
	Rate      decimal.Decimal `json:"rate" gorm:"type:decimal(12,2);not null"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func (InvoiceItem) TableName() string { return "invoice_items" }

// Totals recomputes the derived money fields from the tax amounts.
// BillValue is the assessable value plus every tax component and GST is 1
// exactly when the tax components sum to more than zero.
func (inv *Invoice) Totals() {
	tax := inv.SGSTAmount.Add(inv.CGSTAmount).Add(inv.IGSTAmount)
	inv.BillValue = inv.TotalAssessableValue.Add(tax)
	if tax.IsPositive() {
		inv.GST = 1
	} else {
		inv.GST = 0
	}
}
