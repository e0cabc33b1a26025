// Package fiscal maps calendar dates to Indian financial years, which run
// from 1 April to 31 March.
package fiscal

import (
	"fmt"
	"strings"
	"time"

	"invoice-service/internal/apperror"
)

const dateLayout = "2006-01-02"

// YearOf returns the financial year label of t as two digit start year
// followed by two digit end year: 2024-03-15 is "2324", 2024-04-01 is "2425".
func YearOf(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return fmt.Sprintf("%02d%02d", start%100, (start+1)%100)
}

// ParseBillDate accepts "2006-01-02" or RFC 3339 and rejects dates after now.
// A plain date is taken as midnight in now's location.
func ParseBillDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, apperror.Validation("Bill date is required.")
	}

	t, err := time.ParseInLocation(dateLayout, s, now.Location())
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, apperror.Validation("Invalid Bill date format.")
		}
	}

	if t.After(now) {
		return time.Time{}, apperror.Validation("Bill date cannot be in the future.")
	}
	return t, nil
}
