package sequence

import (
	"fmt"
	"strconv"
	"strings"

	"invoice-service/internal/apperror"
)

const (
	// Floor is the first value of every sequence
	Floor = 1

	InvoiceNumberCeiling = 999999
	invoiceNumberWidth   = 6

	CompanyIDCeiling = 9999
	companyIDWidth   = 4

	// bill_number is a varchar(10)
	billNumberMaxLen = 10
	billDigitSep     = "."
)

// FormatInvoiceNumber zero pads n to six digits
func FormatInvoiceNumber(n int64) (string, error) {
	if n > InvoiceNumberCeiling {
		return "", apperror.Capacity("Invoice number limit reached (%d).", InvoiceNumberCeiling)
	}
	if n < Floor {
		return "", fmt.Errorf("invoice number %d below floor", n)
	}
	return fmt.Sprintf("%0*d", invoiceNumberWidth, n), nil
}

// FormatCompanyID zero pads n to four digits
func FormatCompanyID(n int64) (string, error) {
	if n > CompanyIDCeiling {
		return "", apperror.Capacity("Company ID limit reached (%d).", CompanyIDCeiling)
	}
	if n < Floor {
		return "", fmt.Errorf("company id %d below floor", n)
	}
	return fmt.Sprintf("%0*d", companyIDWidth, n), nil
}

// FormatBillNumber renders GST bill numbers as plain decimal and non-GST
// bill numbers with every digit separated by a dot, so 12 becomes "12"
// or "1.2".
func FormatBillNumber(n int64, gst bool) (string, error) {
	if n < Floor {
		return "", fmt.Errorf("bill number %d below floor", n)
	}

	s := strconv.FormatInt(n, 10)
	if !gst {
		s = strings.Join(strings.Split(s, ""), billDigitSep)
	}

	if len(s) > billNumberMaxLen {
		return "", apperror.Capacity("Bill number limit reached for this company and financial year.")
	}
	return s, nil
}

// ParseSequenceValue parses a stored zero padded value such as "000042"
func ParseSequenceValue(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty sequence value")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("malformed sequence value %q", s)
		}
	}
	return strconv.ParseInt(s, 10, 64)
}

// ParseBillNumber parses either bill number rendering back to its value
func ParseBillNumber(s string) (int64, error) {
	return ParseSequenceValue(strings.ReplaceAll(s, billDigitSep, ""))
}
