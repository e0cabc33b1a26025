// Package sequence hands out invoice numbers, bill numbers and company IDs.
//
// Every allocation runs inside the caller's transaction: it locks the
// partition, reads the current maximum, and returns the next value. The
// caller inserts the row that consumes the value in the same transaction,
// and the lock is released when that transaction commits or rolls back.
// Nothing is cached between calls.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"invoice-service/internal/apperror"
	"invoice-service/pkg/logger"
	"invoice-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence names, also used as metric labels
const (
	InvoiceNumber = "invoice_number"
	BillNumber    = "bill_number"
	CompanyID     = "company_id"
)

// ErrNoTransaction is returned when an allocator is called outside a transaction
var ErrNoTransaction = errors.New("sequence allocation requires an open transaction")

type partition struct {
	sequence string
	table    string
	column   string
	// lockKey identifies the partition for the postgres advisory lock
	lockKey string
	where   []clause.Expression
}

// NextInvoiceNumber returns the next global invoice number ("000001" first).
// Past 999999 it fails with a capacity error.
func NextInvoiceNumber(ctx context.Context, tx *gorm.DB) (string, error) {
	p := partition{
		sequence: InvoiceNumber,
		table:    "invoices",
		column:   "invoice_number",
		lockKey:  InvoiceNumber,
	}

	n, err := next(ctx, tx, p)
	if err != nil {
		return "", err
	}
	formatted, err := FormatInvoiceNumber(n)
	return record(ctx, p, n, formatted, err)
}

// NextBillNumber returns the next bill number of the partition formed by
// company, financial year and GST flag. GST and non-GST bills of the same
// company and year are numbered independently.
func NextBillNumber(ctx context.Context, tx *gorm.DB, companyID, financialYear string, gst bool) (string, error) {
	gstFlag := 0
	if gst {
		gstFlag = 1
	}

	p := partition{
		sequence: BillNumber,
		table:    "invoices",
		column:   "bill_number",
		lockKey:  fmt.Sprintf("%s:%s:%s:%d", BillNumber, companyID, financialYear, gstFlag),
		where: []clause.Expression{
			clause.Eq{Column: clause.Column{Name: "company_profile_id"}, Value: companyID},
			clause.Eq{Column: clause.Column{Name: "bill_year"}, Value: financialYear},
			clause.Eq{Column: clause.Column{Name: "gst"}, Value: gstFlag},
		},
	}

	n, err := next(ctx, tx, p)
	if err != nil {
		return "", err
	}
	formatted, err := FormatBillNumber(n, gst)
	return record(ctx, p, n, formatted, err)
}

// NextCompanyID returns the next company ID ("0001" first). Past 9999 it
// fails with a capacity error.
func NextCompanyID(ctx context.Context, tx *gorm.DB) (string, error) {
	p := partition{
		sequence: CompanyID,
		table:    "company_profiles",
		column:   "id",
		lockKey:  CompanyID,
	}

	n, err := next(ctx, tx, p)
	if err != nil {
		return "", err
	}
	formatted, err := FormatCompanyID(n)
	return record(ctx, p, n, formatted, err)
}

func record(ctx context.Context, p partition, n int64, formatted string, err error) (string, error) {
	log := logger.FromCtx(ctx)
	if err != nil {
		if apperror.Is(err, apperror.KindCapacity) {
			prometheus.RecordCapacityError(p.sequence)
			log.Warn("Sequence capacity reached",
				zap.String("sequence", p.sequence),
				zap.String("partition", p.lockKey),
				zap.Int64("value", n))
		}
		return "", err
	}

	prometheus.RecordAllocation(p.sequence)
	log.Debug("Sequence value allocated",
		zap.String("sequence", p.sequence),
		zap.String("partition", p.lockKey),
		zap.String("value", formatted))
	return formatted, nil
}

// next locks the partition and returns its maximum plus one, or the floor
// when the partition is empty or its maximum cannot be parsed.
func next(ctx context.Context, tx *gorm.DB, p partition) (int64, error) {
	if _, ok := tx.Statement.ConnPool.(gorm.TxCommitter); !ok {
		return 0, ErrNoTransaction
	}

	current, found, err := lockedMax(ctx, tx, p)
	if err != nil {
		return 0, fmt.Errorf("read %s maximum: %w", p.sequence, err)
	}
	if !found {
		return Floor, nil
	}

	n, err := ParseBillNumber(current)
	if err != nil {
		logger.FromCtx(ctx).Warn("Malformed stored sequence value, restarting at floor",
			zap.String("sequence", p.sequence),
			zap.String("partition", p.lockKey),
			zap.String("value", current),
			zap.Error(err))
		return Floor, nil
	}
	return n + 1, nil
}

func lockedMax(ctx context.Context, tx *gorm.DB, p partition) (string, bool, error) {
	defer prometheus.ObserveLockWait(p.sequence, time.Now())

	db := tx.WithContext(ctx)
	dialect := db.Dialector.Name()

	if dialect == "postgres" {
		// A postgres FOR UPDATE waiter re-reads only the row it blocked on,
		// so it would still see the old maximum. The advisory lock orders
		// allocators of one partition, including an empty one.
		if err := db.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", p.lockKey).Error; err != nil {
			return "", false, err
		}
	}

	q := db.Table(p.table)
	if len(p.where) > 0 {
		q = q.Clauses(clause.Where{Exprs: p.where})
	}
	q = q.Order(numericOrder(dialect, p.column)).Limit(1)
	if dialect != "sqlite" {
		// sqlite has no row locks; its single writer serializes instead
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var values []string
	if err := q.Pluck(p.column, &values).Error; err != nil {
		return "", false, err
	}
	if len(values) == 0 {
		return "", false, nil
	}
	return values[0], true, nil
}

// numericOrder orders a formatted column by its numeric value, largest first.
// Stored values are zero padded or dot separated, so string order is wrong.
func numericOrder(dialect, column string) string {
	switch dialect {
	case "postgres":
		return fmt.Sprintf("CAST(NULLIF(REGEXP_REPLACE(%s, '[^0-9]', '', 'g'), '') AS BIGINT) DESC NULLS LAST", column)
	case "mysql":
		return fmt.Sprintf("CAST(REPLACE(%s, '.', '') AS UNSIGNED) DESC", column)
	}
	return fmt.Sprintf("CAST(REPLACE(%s, '.', '') AS INTEGER) DESC", column)
}
