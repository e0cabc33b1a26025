package sequence

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"invoice-service/internal/apperror"
	"invoice-service/internal/dbtest"
	"invoice-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// allocate runs fn in a committed transaction
func allocate(t *testing.T, db *gorm.DB, fn func(tx *gorm.DB) (string, error)) (string, error) {
	t.Helper()

	var out string
	err := db.Transaction(func(tx *gorm.DB) error {
		v, err := fn(tx)
		out = v
		return err
	})
	return out, err
}

func TestNextInvoiceNumberEmpty(t *testing.T) {
	db := dbtest.Open(t)

	got, err := allocate(t, db, func(tx *gorm.DB) (string, error) {
		return NextInvoiceNumber(context.Background(), tx)
	})
	require.NoError(t, err)
	assert.Equal(t, "000001", got)
}

func TestNextInvoiceNumberUsesNumericMaximum(t *testing.T) {
	db := dbtest.Open(t)
	gm := dbtest.GSTMaster(t, db, 18)
	dbtest.Company(t, db, "0001", gm.ID)
	cust := dbtest.Customer(t, db, "0001")

	dbtest.Invoice(t, db, cust, "000009", "1", "2425", 0)
	dbtest.Invoice(t, db, cust, "000010", "2", "2425", 0)

	got, err := allocate(t, db, func(tx *gorm.DB) (string, error) {
		return NextInvoiceNumber(context.Background(), tx)
	})
	require.NoError(t, err)
	assert.Equal(t, "000011", got)
}

func TestNextInvoiceNumberCountsInactive(t *testing.T) {
	db := dbtest.Open(t)
	gm := dbtest.GSTMaster(t, db, 18)
	dbtest.Company(t, db, "0001", gm.ID)
	cust := dbtest.Customer(t, db, "0001")

	inv := dbtest.Invoice(t, db, cust, "000005", "1", "2425", 0)
	require.NoError(t, db.Model(inv).Update("is_active", false).Error)

	got, err := allocate(t, db, func(tx *gorm.DB) (string, error) {
		return NextInvoiceNumber(context.Background(), tx)
	})
	require.NoError(t, err)
	assert.Equal(t, "000006", got)
}

func TestNextInvoiceNumberCeiling(t *testing.T) {
	db := dbtest.Open(t)
	gm := dbtest.GSTMaster(t, db, 18)
	dbtest.Company(t, db, "0001", gm.ID)
	cust := dbtest.Customer(t, db, "0001")
	dbtest.Invoice(t, db, cust, "999999", "1", "2425", 0)

	_, err := allocate(t, db, func(tx *gorm.DB) (string, error) {
		return NextInvoiceNumber(context.Background(), tx)
	})
	require.Error(t, err)
	assert.Equal(t, apperror.KindCapacity, apperror.KindOf(err))

	var count int64
	require.NoError(t, db.Model(&model.Invoice{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestNextBillNumberPartitions(t *testing.T) {
	db := dbtest.Open(t)
	gm := dbtest.GSTMaster(t, db, 18)
	dbtest.Company(t, db, "0001", gm.ID)
	dbtest.Company(t, db, "0002", gm.ID)
	cust := dbtest.Customer(t, db, "0001")
	other := dbtest.Customer(t, db, "0002")

	// eleven non-GST bills and eleven GST bills in FY 24-25
	for i := 1; i <= 11; i++ {
		nonGST, err := FormatBillNumber(int64(i), false)
		require.NoError(t, err)
		dbtest.Invoice(t, db, cust, fmt.Sprintf("%06d", i), nonGST, "2425", 0)
		dbtest.Invoice(t, db, cust, fmt.Sprintf("%06d", 100+i), fmt.Sprint(i), "2425", 1)
	}
	dbtest.Invoice(t, db, other, "000500", "7", "2425", 1)

	tests := []struct {
		name    string
		company string
		year    string
		gst     bool
		want    string
	}{
		{"non-GST continues", "0001", "2425", false, "1.2"},
		{"GST continues", "0001", "2425", true, "12"},
		{"new financial year", "0001", "2526", false, "1"},
		{"other company", "0002", "2425", true, "8"},
		{"other company non-GST", "0002", "2425", false, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := allocate(t, db, func(tx *gorm.DB) (string, error) {
				return NextBillNumber(context.Background(), tx, tt.company, tt.year, tt.gst)
			})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextBillNumberMalformedFallsBackToFloor(t *testing.T) {
	db := dbtest.Open(t)
	gm := dbtest.GSTMaster(t, db, 18)
	dbtest.Company(t, db, "0001", gm.ID)
	cust := dbtest.Customer(t, db, "0001")
	dbtest.Invoice(t, db, cust, "000001", "abc", "2425", 1)

	got, err := allocate(t, db, func(tx *gorm.DB) (string, error) {
		return NextBillNumber(context.Background(), tx, "0001", "2425", true)
	})
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestNextCompanyID(t *testing.T) {
	db := dbtest.Open(t)
	gm := dbtest.GSTMaster(t, db, 18)

	got, err := allocate(t, db, func(tx *gorm.DB) (string, error) {
		return NextCompanyID(context.Background(), tx)
	})
	require.NoError(t, err)
	assert.Equal(t, "0001", got)

	dbtest.Company(t, db, "0001", gm.ID)
	got, err = allocate(t, db, func(tx *gorm.DB) (string, error) {
		return NextCompanyID(context.Background(), tx)
	})
	require.NoError(t, err)
	assert.Equal(t, "0002", got)

	dbtest.Company(t, db, "9999", gm.ID)
	_, err = allocate(t, db, func(tx *gorm.DB) (string, error) {
		return NextCompanyID(context.Background(), tx)
	})
	assert.True(t, apperror.Is(err, apperror.KindCapacity))
}

func TestRequiresTransaction(t *testing.T) {
	db := dbtest.Open(t)

	_, err := NextInvoiceNumber(context.Background(), db)
	assert.ErrorIs(t, err, ErrNoTransaction)
}

// A rolled back allocation is handed out again; committed values never are.
func TestRollbackReleasesValue(t *testing.T) {
	db := dbtest.Open(t)
	gm := dbtest.GSTMaster(t, db, 18)
	dbtest.Company(t, db, "0001", gm.ID)

	tx := db.Begin()
	first, err := NextBillNumber(context.Background(), tx, "0001", "2425", false)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback().Error)

	got, err := allocate(t, db, func(tx *gorm.DB) (string, error) {
		return NextBillNumber(context.Background(), tx, "0001", "2425", false)
	})
	require.NoError(t, err)
	assert.Equal(t, first, got)
}

// insertWithNumbers allocates both numbers and inserts the invoice in one
// transaction, the way invoice creation does.
func insertWithNumbers(ctx context.Context, db *gorm.DB, cust *model.Customer, year string, gst bool) (string, error) {
	var bill string
	err := db.Transaction(func(tx *gorm.DB) error {
		invNo, err := NextInvoiceNumber(ctx, tx)
		if err != nil {
			return err
		}
		bill, err = NextBillNumber(ctx, tx, cust.CompanyID, year, gst)
		if err != nil {
			return err
		}
		flag := int8(0)
		if gst {
			flag = 1
		}
		return tx.Omit("Items").Create(&model.Invoice{
			InvoiceNumber:    invNo,
			BillNumber:       bill,
			CustomerID:       cust.ID,
			CompanyProfileID: cust.CompanyID,
			UserID:           1,
			BillDate:         time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
			BillYear:         year,
			GST:              flag,
			IsActive:         true,
		}).Error
	})
	return bill, err
}

func assertContiguous(t *testing.T, bills []string, n int) {
	t.Helper()

	seen := make(map[int64]bool, n)
	for _, b := range bills {
		v, err := ParseBillNumber(b)
		require.NoError(t, err)
		assert.False(t, seen[v], "duplicate bill number %s", b)
		seen[v] = true
	}
	for i := int64(1); i <= int64(n); i++ {
		assert.True(t, seen[i], "missing bill number %d", i)
	}
}

func runConcurrent(t *testing.T, db *gorm.DB, cust *model.Customer, n int) []string {
	t.Helper()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		bills []string
		errs  []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bill, err := insertWithNumbers(context.Background(), db, cust, "2425", false)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			bills = append(bills, bill)
		}()
	}
	wg.Wait()
	require.Empty(t, errs)
	return bills
}

func TestConcurrentAllocationSQLite(t *testing.T) {
	db := dbtest.Open(t)
	gm := dbtest.GSTMaster(t, db, 18)
	dbtest.Company(t, db, "0001", gm.ID)
	cust := dbtest.Customer(t, db, "0001")

	const n = 20
	assertContiguous(t, runConcurrent(t, db, cust, n), n)
}

func TestConcurrentAllocationPostgres(t *testing.T) {
	db := dbtest.OpenPostgres(t)
	gm := dbtest.GSTMaster(t, db, 18)
	dbtest.Company(t, db, "0001", gm.ID)
	cust := dbtest.Customer(t, db, "0001")

	const n = 25
	bills := runConcurrent(t, db, cust, n)
	assertContiguous(t, bills, n)

	var numbers []string
	require.NoError(t, db.Model(&model.Invoice{}).Order("invoice_number").Pluck("invoice_number", &numbers).Error)
	require.Len(t, numbers, n)
	for i, num := range numbers {
		assert.Equal(t, fmt.Sprintf("%06d", i+1), num)
	}
}
