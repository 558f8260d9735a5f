package models

import (
	"fmt"
	"time"
)

// DateKey formats a calendar day the way the slot ledger keys it:
// "day_month_year" with no zero padding, e.g. "15_6_2025".
func DateKey(t time.Time) string {
	return fmt.Sprintf("%d_%d_%d", t.Day(), int(t.Month()), t.Year())
}
