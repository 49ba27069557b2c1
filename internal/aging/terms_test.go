package aging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseCreditTerms(t *testing.T) {
	cases := []struct {
		terms string
		want  int
	}{
		{"COD", 0},
		{"cod", 0},
		{"Cash on Delivery", 0},
		{"Prepaid", CreditPrepaid},
		{"paid in advance", CreditPrepaid},
		{"30", 30},
		{"45", 45},
		{"Net 30", 30},
		{"Net 60 days", 60},
		{"due in 14 days", 14},
		{"", DefaultCreditDays},
		{"on receipt", DefaultCreditDays},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, ParseCreditTerms(tc.terms), "terms %q", tc.terms)
	}
}

func TestResolveCreditDaysExplicitWins(t *testing.T) {
	explicit := 7
	require.Equal(t, 7, ResolveCreditDays(&explicit, "Net 60"))

	negative := -5
	require.Equal(t, -5, ResolveCreditDays(&negative, "Net 60"))

	require.Equal(t, 60, ResolveCreditDays(nil, "Net 60"))
}

func TestResolveDueDate(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	asOf := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)

	require.Equal(t, base.AddDate(0, 0, 30), ResolveDueDate(base, 30, asOf))

	// Zero or negative credit days mean due immediately.
	require.Equal(t, base, ResolveDueDate(base, 0, asOf))
	require.Equal(t, base, ResolveDueDate(base, -5, asOf))

	// Unknown base falls back to the as-of date, so nothing becomes
	// spuriously overdue.
	require.Equal(t, asOf, ResolveDueDate(time.Time{}, 30, asOf))
}
