package aging

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Credit term encodings: negative means prepaid, zero means due on receipt
// (COD), positive means net-N-days. Absent terms default to net 30.
const (
	DefaultCreditDays = 30
	CreditPrepaid     = -1
	CreditCOD         = 0
)

var firstNumber = regexp.MustCompile(`(\d+)`)

// ParseCreditTerms derives credit days from a free-text payment terms field.
// Recognised forms: "COD", "Cash on Delivery", "Prepaid", "Paid in Advance",
// a bare number ("45"), or any string containing a number ("Net 30",
// "60 days"). Anything else falls back to the default.
func ParseCreditTerms(terms string) int {
	trimmed := strings.TrimSpace(terms)
	if trimmed == "" {
		return DefaultCreditDays
	}

	lower := strings.ToLower(trimmed)
	if strings.Contains(lower, "cod") || strings.Contains(lower, "cash on delivery") {
		return CreditCOD
	}
	if strings.Contains(lower, "prepaid") || strings.Contains(lower, "paid in advance") {
		return CreditPrepaid
	}

	if days, err := strconv.Atoi(trimmed); err == nil && days > 0 {
		return days
	}

	if match := firstNumber.FindString(trimmed); match != "" {
		if days, err := strconv.Atoi(match); err == nil && days > 0 {
			return days
		}
	}

	return DefaultCreditDays
}

// ResolveCreditDays picks the effective credit term: an explicit column value
// wins (including the prepaid encoding), otherwise the free-text terms are
// parsed.
func ResolveCreditDays(explicit *int, terms string) int {
	if explicit != nil {
		return *explicit
	}
	return ParseCreditTerms(terms)
}

// ResolveDueDate maps (reference date base, credit term) to a due date.
// A non-positive credit term means payment was due at the reference date
// itself. A zero base falls back to the as-of date, so the resolver always
// produces a date.
func ResolveDueDate(base time.Time, creditDays int, asOf time.Time) time.Time {
	if base.IsZero() {
		base = asOf
	}
	if creditDays <= 0 {
		return base
	}
	return base.AddDate(0, 0, creditDays)
}
