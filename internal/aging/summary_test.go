package aging

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func balanceFor(counterpartyID int64, remaining float64, overdueDays int) ReconciledBalance {
	return ReconciledBalance{
		Obligation: Obligation{
			CounterpartyID: counterpartyID,
			IssueDate:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		RemainingAmount: remaining,
		OverdueDays:     overdueDays,
	}
}

func TestBuildSummaryEmptyInput(t *testing.T) {
	summary := BuildSummary(nil)
	require.Zero(t, summary.TotalOutstanding)
	require.Zero(t, summary.TotalOverdue)
	require.Zero(t, summary.TotalCount)
	require.Zero(t, summary.OverdueCount)
	require.NotNil(t, summary.ByCounterparty)
	require.Empty(t, summary.ByCounterparty)
}

func TestBuildSummaryBucketsAndTotals(t *testing.T) {
	summary := BuildSummary([]ReconciledBalance{
		balanceFor(1, 100, 0),
		balanceFor(1, 200, 15),
		balanceFor(2, 300, 45),
		balanceFor(3, 400, 90),
	})

	require.Equal(t, float64(1000), summary.TotalOutstanding)
	require.Equal(t, float64(900), summary.TotalOverdue)
	require.Equal(t, float64(200), summary.Bucket0To30)
	require.Equal(t, float64(300), summary.Bucket31To60)
	require.Equal(t, float64(400), summary.BucketOver60)
	require.Equal(t, 4, summary.TotalCount)
	require.Equal(t, 3, summary.OverdueCount)
}

func TestBuildSummaryGroupsByCounterparty(t *testing.T) {
	summary := BuildSummary([]ReconciledBalance{
		balanceFor(1, 100, 0),
		balanceFor(1, 200, 15),
		balanceFor(2, 500, 45),
	})

	require.Len(t, summary.ByCounterparty, 2)

	// Ordered by outstanding amount, largest first.
	require.Equal(t, int64(2), summary.ByCounterparty[0].CounterpartyID)
	require.Equal(t, float64(500), summary.ByCounterparty[0].TotalOutstanding)
	require.Equal(t, 1, summary.ByCounterparty[0].ObligationCount)
	require.Equal(t, 1, summary.ByCounterparty[0].OverdueCount)

	require.Equal(t, int64(1), summary.ByCounterparty[1].CounterpartyID)
	require.Equal(t, float64(300), summary.ByCounterparty[1].TotalOutstanding)
	require.Equal(t, 2, summary.ByCounterparty[1].ObligationCount)
	require.Equal(t, 1, summary.ByCounterparty[1].OverdueCount)
}

func TestBuildSummaryTieBreaksOnCounterpartyID(t *testing.T) {
	summary := BuildSummary([]ReconciledBalance{
		balanceFor(7, 100, 0),
		balanceFor(3, 100, 0),
	})

	require.Equal(t, int64(3), summary.ByCounterparty[0].CounterpartyID)
	require.Equal(t, int64(7), summary.ByCounterparty[1].CounterpartyID)
}
