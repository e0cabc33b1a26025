package invoice

import "github.com/shopspring/decimal"

// ItemInput is one requested line item
type ItemInput struct {
	ProductID uint             `json:"productId"`
	UOM       string           `json:"uom"`
	Rate      *decimal.Decimal `json:"rate"`
	Quantity  *int             `json:"quantity"` // missing or 0 means 1
	HSNCode   *string          `json:"hsnCode"`
}

// CreateInput is the body of an invoice creation request. Tax amounts
// default to zero and the assessable value to the sum of the line amounts.
type CreateInput struct {
	CustomerID           uint             `json:"customerId" validate:"required" label:"Customer ID"`
	CompanyProfileID     string           `json:"companyProfileId" validate:"required" label:"Company Profile ID"`
	BillDate             string           `json:"billDate" validate:"required" label:"Bill date"`
	DeliveryAt           *string          `json:"deliveryAt"`
	Transport            *string          `json:"transport"`
	LRNumber             *string          `json:"lrNumber"`
	TotalAssessableValue *decimal.Decimal `json:"totalAssessableValue" validate:"omitempty,gte=0" label:"Total assessable value"`
	SGSTAmount           *decimal.Decimal `json:"sgstAmount" validate:"omitempty,gte=0" label:"SGST amount"`
	CGSTAmount           *decimal.Decimal `json:"cgstAmount" validate:"omitempty,gte=0" label:"CGST amount"`
	IGSTAmount           *decimal.Decimal `json:"igstAmount" validate:"omitempty,gte=0" label:"IGST amount"`
	Items                []ItemInput      `json:"items" validate:"required,min=1" label:"invoice item"`
}

// UpdateInput carries the fields to change; nil means unchanged. A non-nil
// Items replaces every line of the invoice.
type UpdateInput struct {
	InvoiceNumber        *string          `json:"invoiceNumber"`
	CustomerID           *uint            `json:"customerId"`
	CompanyProfileID     *string          `json:"companyProfileId"`
	BillDate             *string          `json:"billDate"`
	DeliveryAt           *string          `json:"deliveryAt"`
	Transport            *string          `json:"transport"`
	LRNumber             *string          `json:"lrNumber"`
	TotalAssessableValue *decimal.Decimal `json:"totalAssessableValue" validate:"omitempty,gte=0" label:"Total assessable value"`
	SGSTAmount           *decimal.Decimal `json:"sgstAmount" validate:"omitempty,gte=0" label:"SGST amount"`
	CGSTAmount           *decimal.Decimal `json:"cgstAmount" validate:"omitempty,gte=0" label:"CGST amount"`
	IGSTAmount           *decimal.Decimal `json:"igstAmount" validate:"omitempty,gte=0" label:"IGST amount"`
	Items                []ItemInput      `json:"items"`
}

// Filter selects invoices for List. Zero fields do not filter.
type Filter struct {
	CompanyID string
	UserID    uint
	Active    *bool
	Page      int
	Limit     int
}
