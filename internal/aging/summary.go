package aging

import "sort"

// CounterpartySummary is the per-counterparty breakdown inside a Summary.
type CounterpartySummary struct {
	CounterpartyID   int64   `json:"counterpartyId"`
	Name             string  `json:"name"`
	Phone            string  `json:"phone,omitempty"`
	TotalOutstanding float64 `json:"totalOutstanding"`
	ObligationCount  int     `json:"obligationCount"`
	OverdueCount     int     `json:"overdueCount"`
}

// Summary aggregates a reconciled set across totals, overdue buckets, and
// counterparties.
type Summary struct {
	TotalOutstanding float64               `json:"totalOutstanding"`
	TotalOverdue     float64               `json:"totalOverdue"`
	Bucket0To30      float64               `json:"bucket0to30"`
	Bucket31To60     float64               `json:"bucket31to60"`
	BucketOver60     float64               `json:"bucketOver60"`
	TotalCount       int                   `json:"totalCount"`
	OverdueCount     int                   `json:"overdueCount"`
	ByCounterparty   []CounterpartySummary `json:"byCounterparty"`
}

// BuildSummary folds reconciled balances into a Summary. An empty input
// yields the zero summary with an empty counterparty slice.
func BuildSummary(balances []ReconciledBalance) Summary {
	summary := Summary{ByCounterparty: []CounterpartySummary{}}
	if len(balances) == 0 {
		return summary
	}

	grouped := make(map[int64]*CounterpartySummary)
	for _, balance := range balances {
		summary.TotalOutstanding += balance.RemainingAmount
		summary.TotalCount++

		overdue := balance.OverdueDays > 0
		if overdue {
			summary.TotalOverdue += balance.RemainingAmount
			summary.OverdueCount++
		}
		switch Classify(balance.OverdueDays) {
		case Bucket1To30:
			summary.Bucket0To30 += balance.RemainingAmount
		case Bucket31To60:
			summary.Bucket31To60 += balance.RemainingAmount
		case BucketOver60:
			summary.BucketOver60 += balance.RemainingAmount
		}

		group, ok := grouped[balance.CounterpartyID]
		if !ok {
			group = &CounterpartySummary{
				CounterpartyID: balance.CounterpartyID,
				Name:           balance.CounterpartyName,
				Phone:          balance.CounterpartyPhone,
			}
			grouped[balance.CounterpartyID] = group
		}
		group.TotalOutstanding += balance.RemainingAmount
		group.ObligationCount++
		if overdue {
			group.OverdueCount++
		}
	}

	summary.ByCounterparty = make([]CounterpartySummary, 0, len(grouped))
	for _, group := range grouped {
		summary.ByCounterparty = append(summary.ByCounterparty, *group)
	}
	sort.Slice(summary.ByCounterparty, func(i, j int) bool {
		a, b := summary.ByCounterparty[i], summary.ByCounterparty[j]
		if a.TotalOutstanding != b.TotalOutstanding {
			return a.TotalOutstanding > b.TotalOutstanding
		}
		return a.CounterpartyID < b.CounterpartyID
	})
	return summary
}
