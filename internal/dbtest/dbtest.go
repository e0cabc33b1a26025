// Package dbtest opens throwaway databases for package tests.
package dbtest

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"invoice-service/internal/model"
	"invoice-service/pkg/database"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// PostgresDSNEnv names the variable that enables postgres-backed tests
const PostgresDSNEnv = "INVOICE_TEST_POSTGRES_DSN"

// Open returns a migrated in-memory sqlite database private to t.
// It has a single connection, so code under test must run every statement
// of a transaction through the transaction handle.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), database.GormConfig(gormlogger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// OpenPostgres returns a migrated, emptied postgres database, or skips the
// test when INVOICE_TEST_POSTGRES_DSN is unset.
func OpenPostgres(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}), database.GormConfig(gormlogger.Silent))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(32)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	require.NoError(t, db.Exec(
		"TRUNCATE invoice_items, invoices, products, customers, company_profiles, gst_masters RESTART IDENTITY CASCADE",
	).Error)
	return db
}

// GSTMaster inserts an active slab with the usual half/half/full split
func GSTMaster(t testing.TB, db *gorm.DB, rate int64) *model.GSTMaster {
	t.Helper()

	r := decimal.NewFromInt(rate)
	m := &model.GSTMaster{
		GSTRate:  r,
		SGSTRate: r.Div(decimal.NewFromInt(2)),
		CGSTRate: r.Div(decimal.NewFromInt(2)),
		IGSTRate: r,
		IsActive: true,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}

// Company inserts an active company with the given ID
func Company(t testing.TB, db *gorm.DB, id string, gstMasterID uint) *model.CompanyProfile {
	t.Helper()

	c := &model.CompanyProfile{
		ID:                   id,
		CompanyName:          "Company " + id,
		CompanyAddress:       "12 Market Road",
		CompanyAccountNumber: "1234567890" + id,
		AccountHolderName:    "Suresh Kumar",
		IFSCCode:             "SBIN0001234",
		BranchName:           "Main",
		City:                 "Surat",
		State:                "Gujarat",
		Country:              "India",
		GSTMasterID:          gstMasterID,
		IsActive:             true,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Customer inserts an active customer of the company
func Customer(t testing.TB, db *gorm.DB, companyID string) *model.Customer {
	t.Helper()

	c := &model.Customer{
		CustomerName:  "Acme Traders",
		ContactNumber: "9876543210",
		CompanyID:     companyID,
		IsActive:      true,
	}
	require.NoError(t, db.Create(c).Error)
	return c
}

// Product inserts an active product of the company
func Product(t testing.TB, db *gorm.DB, companyID string) *model.Product {
	t.Helper()

	p := &model.Product{
		ProductName: "Steel pipe",
		UOM:         "pcs",
		Price:       decimal.NewFromInt(100),
		CompanyID:   companyID,
		IsActive:    true,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// Invoice inserts a bare invoice row carrying the given numbers
func Invoice(t testing.TB, db *gorm.DB, customer *model.Customer, invoiceNumber, billNumber, billYear string, gst int8) *model.Invoice {
	t.Helper()

	inv := &model.Invoice{
		InvoiceNumber:    invoiceNumber,
		BillNumber:       billNumber,
		CustomerID:       customer.ID,
		CompanyProfileID: customer.CompanyID,
		UserID:           1,
		BillDate:         time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		BillYear:         billYear,
		GST:              gst,
		IsActive:         true,
	}
	require.NoError(t, db.Omit("Items").Create(inv).Error)
	return inv
}
