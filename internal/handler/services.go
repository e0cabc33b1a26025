package handler

import (
	"time"

	"invoice-service/internal/company"
	"invoice-service/internal/invoice"

	"gorm.io/gorm"
)

var (
	invoices  *invoice.Service
	companies *company.Service
	timeNow   = time.Now
)

// InitServices builds the services the handlers call. now may be nil.
func InitServices(db *gorm.DB, now func() time.Time) {
	if now != nil {
		timeNow = now
	}
	invoices = invoice.NewService(db, now)
	companies = company.NewService(db)
}
