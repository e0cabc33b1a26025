package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is billed by a company. Customers are maintained elsewhere;
// invoices only reference them.
type Customer struct {
	ID              uint            `json:"id" gorm:"primaryKey"`
	CustomerName    string          `json:"customerName" gorm:"column:customer_name;type:varchar(255);not null"`
	GSTNumber       *string         `json:"gstNumber" gorm:"column:gst_number;type:varchar(15)"`
	StateCode       *string         `json:"stateCode" gorm:"column:state_code;type:varchar(2)"`
	ContactNumber   string          `json:"contactNumber" gorm:"column:contact_number;type:varchar(20);not null"`
	EmailAddress    *string         `json:"emailAddress" gorm:"column:email_address;type:varchar(255)"`
	BillingAddress  *string         `json:"billingAddress" gorm:"column:billing_address;type:varchar(255)"`
	ShippingAddress *string         `json:"shippingAddress" gorm:"column:shipping_address;type:varchar(255)"`
	OpeningBalance  decimal.Decimal `json:"openingBalance" gorm:"column:opening_balance;type:decimal(12,2);not null;default:0"`
	OpeningDate     *time.Time      `json:"openingDate" gorm:"column:opening_date"`
	CompanyID       string          `json:"companyId" gorm:"column:company_id;type:varchar(4);index;not null"`
	IsActive        bool            `json:"isActive" gorm:"column:is_active;not null"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

func (Customer) TableName() string { return "customers" }
