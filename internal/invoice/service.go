// Package invoice assembles invoices: it validates the request, allocates
// the invoice and bill numbers, and writes the invoice with its lines in a
// single transaction.
package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoice-service/internal/apperror"
	"invoice-service/internal/fiscal"
	"invoice-service/internal/model"
	"invoice-service/internal/sequence"
	"invoice-service/internal/validation"
	"invoice-service/pkg/logger"
	"invoice-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Service creates, updates and reads invoices
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService returns a service on db. now defaults to time.Now and bounds
// how late a bill date may be.
func NewService(db *gorm.DB, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{db: db, now: now}
}

// Create validates in, allocates the invoice number and then the bill
// number, and stores the invoice with its lines. Any failure rolls back
// everything, so a failed create never leaves rows behind.
func (s *Service) Create(ctx context.Context, userID uint, in CreateInput) (*model.Invoice, error) {
	log := logger.FromCtx(ctx)

	inv, err := s.create(ctx, userID, in)
	prometheus.RecordInvoiceOperation("create", err)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			log.Error("Failed to create invoice",
				zap.String("company_profile_id", in.CompanyProfileID),
				zap.Uint("customer_id", in.CustomerID),
				zap.Error(err))
		} else {
			log.Warn("Invoice rejected",
				zap.String("company_profile_id", in.CompanyProfileID),
				zap.String("reason", err.Error()))
		}
		return nil, err
	}

	log.Info("Invoice created successfully",
		zap.Uint("id", inv.ID),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("bill_number", inv.BillNumber),
		zap.String("bill_year", inv.BillYear),
		zap.Int8("gst", inv.GST),
		zap.String("bill_value", inv.BillValue.StringFixed(2)))
	return s.Get(ctx, inv.ID)
}

func (s *Service) create(ctx context.Context, userID uint, in CreateInput) (*model.Invoice, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	billDate, err := fiscal.ParseBillDate(in.BillDate, s.now())
	if err != nil {
		return nil, err
	}
	items, err := buildItems(in.Items)
	if err != nil {
		return nil, err
	}

	inv := model.Invoice{
		CustomerID:       in.CustomerID,
		CompanyProfileID: in.CompanyProfileID,
		UserID:           userID,
		BillDate:         billDate,
		BillYear:         fiscal.YearOf(billDate),
		DeliveryAt:       in.DeliveryAt,
		Transport:        in.Transport,
		LRNumber:         in.LRNumber,
		SGSTAmount:       round(in.SGSTAmount),
		CGSTAmount:       round(in.CGSTAmount),
		IGSTAmount:       round(in.IGSTAmount),
		IsActive:         true,
	}
	if in.TotalAssessableValue != nil {
		inv.TotalAssessableValue = round(in.TotalAssessableValue)
	} else {
		inv.TotalAssessableValue = sumAmounts(items)
	}
	inv.Totals()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCustomer(tx, in.CustomerID); err != nil {
			return err
		}
		if ok, err := companyExists(tx, in.CompanyProfileID); err != nil {
			return err
		} else if !ok {
			return apperror.Validation("Invalid Company Profile ID.")
		}
		if err := checkProducts(tx, items); err != nil {
			return err
		}

		// invoice number lock first, then the bill partition
		invoiceNumber, err := sequence.NextInvoiceNumber(ctx, tx)
		if err != nil {
			return err
		}
		billNumber, err := sequence.NextBillNumber(ctx, tx, inv.CompanyProfileID, inv.BillYear, inv.GST == 1)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = invoiceNumber
		inv.BillNumber = billNumber

		defer prometheus.TrackDBOperation("insert")(time.Now())

		if err := tx.Omit(clause.Associations).Create(&inv).Error; err != nil {
			return fmt.Errorf("insert invoice: %w", err)
		}
		for i := range items {
			items[i].InvoiceID = inv.ID
		}
		if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
			return fmt.Errorf("insert invoice items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// Update applies in to invoice id. The bill number is never reallocated.
// A new bill date moves the invoice to that date's financial year and new
// tax amounts or items recompute the totals and GST flag.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*model.Invoice, error) {
	log := logger.FromCtx(ctx)

	err := s.update(ctx, id, in)
	prometheus.RecordInvoiceOperation("update", err)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindInternal {
			log.Error("Failed to update invoice", zap.Uint("id", id), zap.Error(err))
		} else {
			log.Warn("Invoice update rejected", zap.Uint("id", id), zap.String("reason", err.Error()))
		}
		return nil, err
	}

	log.Info("Invoice updated successfully", zap.Uint("id", id))
	return s.Get(ctx, id)
}

func (s *Service) update(ctx context.Context, id uint, in UpdateInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}

	var billDate *time.Time
	if in.BillDate != nil {
		d, err := fiscal.ParseBillDate(*in.BillDate, s.now())
		if err != nil {
			return err
		}
		billDate = &d
	}

	var items []model.InvoiceItem
	if in.Items != nil {
		var err error
		if items, err = buildItems(in.Items); err != nil {
			return err
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv model.Invoice
		if err := forUpdate(tx).First(&inv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Invoice not found.")
			}
			return fmt.Errorf("load invoice %d: %w", id, err)
		}

		if in.InvoiceNumber != nil && *in.InvoiceNumber != inv.InvoiceNumber {
			return apperror.Validation("Invoice number cannot be changed.")
		}
		if in.CompanyProfileID != nil && *in.CompanyProfileID != inv.CompanyProfileID {
			return apperror.Validation("Company Profile ID cannot be changed.")
		}
		if in.CustomerID != nil && *in.CustomerID != inv.CustomerID {
			if err := checkCustomer(tx, *in.CustomerID); err != nil {
				return err
			}
			inv.CustomerID = *in.CustomerID
		}

		if billDate != nil {
			inv.BillDate = *billDate
			inv.BillYear = fiscal.YearOf(*billDate)
		}
		if in.DeliveryAt != nil {
			inv.DeliveryAt = in.DeliveryAt
		}
		if in.Transport != nil {
			inv.Transport = in.Transport
		}
		if in.LRNumber != nil {
			inv.LRNumber = in.LRNumber
		}

		if in.TotalAssessableValue != nil {
			inv.TotalAssessableValue = round(in.TotalAssessableValue)
		}
		if in.SGSTAmount != nil {
			inv.SGSTAmount = round(in.SGSTAmount)
		}
		if in.CGSTAmount != nil {
			inv.CGSTAmount = round(in.CGSTAmount)
		}
		if in.IGSTAmount != nil {
			inv.IGSTAmount = round(in.IGSTAmount)
		}

		if items != nil {
			if err := checkProducts(tx, items); err != nil {
				return err
			}
			if err := tx.Where("invoice_id = ?", inv.ID).Delete(&model.InvoiceItem{}).Error; err != nil {
				return fmt.Errorf("delete invoice items: %w", err)
			}
			for i := range items {
				items[i].InvoiceID = inv.ID
			}
			if err := tx.Omit(clause.Associations).Create(&items).Error; err != nil {
				return fmt.Errorf("insert invoice items: %w", err)
			}
			inv.TotalAssessableValue = sumAmounts(items)
		}
		inv.Totals()

		defer prometheus.TrackDBOperation("update")(time.Now())

		if err := tx.Omit(clause.Associations).Save(&inv).Error; err != nil {
			return fmt.Errorf("save invoice: %w", err)
		}
		return nil
	})
}

// Deactivate clears the active flag. Both numbers stay taken.
func (s *Service) Deactivate(ctx context.Context, id uint) error {
	log := logger.FromCtx(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv model.Invoice
		if err := forUpdate(tx).Select("id").First(&inv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("Invoice not found.")
			}
			return fmt.Errorf("load invoice %d: %w", id, err)
		}
		return tx.Model(&model.Invoice{}).Where("id = ?", id).Update("is_active", false).Error
	})
	prometheus.RecordInvoiceOperation("deactivate", err)
	if err != nil {
		log.Warn("Failed to deactivate invoice", zap.Uint("id", id), zap.Error(err))
		return err
	}

	log.Info("Invoice deactivated", zap.Uint("id", id))
	return nil
}

// Get returns the invoice with its customer, company, lines and products
func (s *Service) Get(ctx context.Context, id uint) (*model.Invoice, error) {
	defer prometheus.TrackDBOperation("query")(time.Now())

	var inv model.Invoice
	err := withDetails(s.db.WithContext(ctx)).First(&inv, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound("Invoice not found.")
		}
		return nil, fmt.Errorf("get invoice %d: %w", id, err)
	}
	return &inv, nil
}

// List returns a page of invoices, newest first, and the total match count.
// Filtering by an unknown company is a not found error.
func (s *Service) List(ctx context.Context, f Filter) ([]model.Invoice, int64, error) {
	db := s.db.WithContext(ctx)

	if f.CompanyID != "" {
		if ok, err := companyExists(db, f.CompanyID); err != nil {
			return nil, 0, err
		} else if !ok {
			return nil, 0, apperror.NotFound("Company not found.")
		}
	}

	query := db.Model(&model.Invoice{})
	if f.CompanyID != "" {
		query = query.Where("company_profile_id = ?", f.CompanyID)
	}
	if f.UserID != 0 {
		query = query.Where("user_id = ?", f.UserID)
	}
	if f.Active != nil {
		query = query.Where("is_active = ?", *f.Active)
	}
	query = query.Session(&gorm.Session{})

	defer prometheus.TrackDBOperation("query")(time.Now())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count invoices: %w", err)
	}

	page, limit := f.Page, f.Limit
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	var invoices []model.Invoice
	err := withDetails(query).
		Order("id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, total, nil
}

// ForYear returns every invoice of a company in a financial year ordered by
// bill number, inactive ones included, for the sales register.
func (s *Service) ForYear(ctx context.Context, companyID, year string) (*model.CompanyProfile, []model.Invoice, error) {
	db := s.db.WithContext(ctx)

	var company model.CompanyProfile
	if err := db.First(&company, "id = ?", companyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperror.NotFound("Company not found.")
		}
		return nil, nil, fmt.Errorf("get company %s: %w", companyID, err)
	}

	var invoices []model.Invoice
	err := db.Preload("Customer").
		Where("company_profile_id = ? AND bill_year = ?", companyID, year).
		Order("gst DESC").Order("invoice_number").
		Find(&invoices).Error
	if err != nil {
		return nil, nil, fmt.Errorf("list invoices for %s/%s: %w", companyID, year, err)
	}
	return &company, invoices, nil
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.Preload("Customer").
		Preload("CompanyProfile").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product")
}

// forUpdate adds FOR UPDATE on stores that have row locks
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

func checkCustomer(tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(&model.Customer{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("check customer: %w", err)
	}
	if count == 0 {
		return apperror.Validation("Invalid Customer ID.")
	}
	return nil
}

func companyExists(tx *gorm.DB, id string) (bool, error) {
	var count int64
	if err := tx.Model(&model.CompanyProfile{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, fmt.Errorf("check company: %w", err)
	}
	return count > 0, nil
}
