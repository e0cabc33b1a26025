package validation

import (
	"regexp"
	"strings"
)

var (
	hsnPattern           = regexp.MustCompile(`^\d{4}(\d{2})?(\d{2})?$`)
	gstinPattern         = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	ifscPattern          = regexp.MustCompile(`^[A-Z]{4}0[A-Z0-9]{6}$`)
	accountNumberPattern = regexp.MustCompile(`^\d{9,18}$`)
	namePattern          = regexp.MustCompile(`^[A-Za-z .]+$`)
)

// UnitsOfMeasure is the fixed set of units a line item may use
var UnitsOfMeasure = []string{"pcs", "kg", "ltr", "mtr", "box"}

// NormalizeUOM lower-cases and trims a unit of measure
func NormalizeUOM(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// IsUOM reports whether s names a known unit, ignoring case
func IsUOM(s string) bool {
	s = NormalizeUOM(s)
	for _, u := range UnitsOfMeasure {
		if s == u {
			return true
		}
	}
	return false
}

// IsHSN accepts 4, 6 or 8 digit HSN codes
func IsHSN(s string) bool { return hsnPattern.MatchString(s) }

// IsGSTIN checks the 15 character GST identification number layout
func IsGSTIN(s string) bool { return gstinPattern.MatchString(s) }

func IsIFSC(s string) bool { return ifscPattern.MatchString(s) }

func IsAccountNumber(s string) bool { return accountNumberPattern.MatchString(s) }

// IsName accepts letters, spaces and dots
func IsName(s string) bool { return namePattern.MatchString(s) }
