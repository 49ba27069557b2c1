package aging

import "time"

// LedgerPolicy controls which ledger entries count toward paid amounts.
// Refund entries carry negative amounts; operators can exclude them without
// a code change.
type LedgerPolicy struct {
	IncludeRefunds bool
}

// DefaultLedgerPolicy counts refunds, matching how payments are recorded.
var DefaultLedgerPolicy = LedgerPolicy{IncludeRefunds: true}

// PaymentAggregate is the per-obligation result of grouping ledger entries.
type PaymentAggregate struct {
	Paid            float64
	LastPaymentDate *time.Time
}

// LedgerKey addresses exactly one obligation in the ledger index.
type LedgerKey struct {
	Source      SourceType
	ReferenceID int64
}

// LedgerIndex maps obligations to their payment aggregates.
type LedgerIndex map[LedgerKey]PaymentAggregate

// AggregateLedger groups entries by (sourceType, referenceId), summing
// amounts and tracking the latest transaction date. Soft-deleted entries
// never count.
func AggregateLedger(entries []LedgerEntry, policy LedgerPolicy) LedgerIndex {
	index := make(LedgerIndex, len(entries))
	for _, entry := range entries {
		if entry.IsDeleted {
			continue
		}
		if entry.Amount < 0 && !policy.IncludeRefunds {
			continue
		}
		key := LedgerKey{Source: entry.SourceType, ReferenceID: entry.ReferenceID}
		agg := index[key]
		agg.Paid += entry.Amount
		if agg.LastPaymentDate == nil || entry.TransactionDate.After(*agg.LastPaymentDate) {
			date := entry.TransactionDate
			agg.LastPaymentDate = &date
		}
		index[key] = agg
	}
	return index
}

// Lookup returns the aggregate for an obligation, or a zero aggregate when
// no entries matched (left-outer-join semantics).
func (ix LedgerIndex) Lookup(source SourceType, referenceID int64) PaymentAggregate {
	return ix[LedgerKey{Source: source, ReferenceID: referenceID}]
}
