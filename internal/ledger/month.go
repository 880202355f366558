package ledger

import (
	"fmt"
	"time"

	"finance-tracker/internal/domain"
)

// ParseMonth validates a "YYYY-MM" selector and returns the first instant of
// that month in UTC.
func ParseMonth(month string) (time.Time, error) {
	if len(month) != 7 || month[4] != '-' {
		return time.Time{}, fmt.Errorf("month %q must be in YYYY-MM format", month)
	}
	t, err := time.ParseInLocation(domain.MonthLayout, month, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month %q: %w", month, err)
	}
	return t, nil
}

// MonthRange returns the half-open interval [start, end) covering month.
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := ParseMonth(month)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, start.AddDate(0, 1, 0), nil
}

// CurrentMonth is the UTC month of now, matching how dates are stored.
func CurrentMonth(now time.Time) string {
	return now.UTC().Format(domain.MonthLayout)
}
