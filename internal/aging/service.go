package aging

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pitstop-erp/pitstop-erp/internal/shared"
)

// Repository fetches the source snapshots the engine computes over. The
// source fetch and the ledger fetch are independent and are issued
// concurrently.
type Repository interface {
	FetchPurchaseOrders(ctx context.Context, filter SourceFilter) ([]PurchaseOrderRecord, error)
	FetchInvoices(ctx context.Context, filter SourceFilter) ([]InvoiceRecord, error)
	FetchServiceOrders(ctx context.Context, filter SourceFilter) ([]ServiceOrderRecord, error)
	// FetchClaimedServiceOrderIDs returns service order ids referenced by any
	// non-cancelled invoice, unfiltered.
	FetchClaimedServiceOrderIDs(ctx context.Context) ([]int64, error)
	FetchLedgerEntries(ctx context.Context, side Side) ([]LedgerEntry, error)
}

// CounterpartyLookup resolves display details for suppliers (payables) or
// customers (receivables). A lookup miss degrades to empty display fields,
// it never aborts the computation.
type CounterpartyLookup interface {
	Lookup(ctx context.Context, side Side, ids []int64) (map[int64]Counterparty, error)
}

// Query carries list/summary filters. MinOverdueDays and PaymentStatus
// depend on computed fields and are applied after reconciliation; the rest
// is pushed down to the source fetch.
type Query struct {
	CounterpartyID int64
	FromDate       time.Time
	ToDate         time.Time
	MinOverdueDays *int
	PaymentStatus  PaymentStatus
}

// Service is the engine facade. It is stateless: every call recomputes from
// a snapshot fetched at call time, so concurrent requests never interfere.
type Service struct {
	repo      Repository
	directory CounterpartyLookup
	policy    LedgerPolicy
	logger    *slog.Logger
}

// NewService constructs the engine service.
func NewService(repo Repository, directory CounterpartyLookup, policy LedgerPolicy, logger *slog.Logger) *Service {
	return &Service{repo: repo, directory: directory, policy: policy, logger: logger}
}

// List returns the reconciled, filtered, sorted page for one side.
func (s *Service) List(ctx context.Context, side Side, query Query, page shared.PageRequest, asOf time.Time) (shared.PagedResponse[ReconciledBalance], error) {
	balances, err := s.snapshot(ctx, side, query, asOf)
	if err != nil {
		return shared.PagedResponse[ReconciledBalance]{}, err
	}
	return shared.NewPagedResponse(balances, page), nil
}

// Summarize aggregates the reconciled, filtered set for one side.
func (s *Service) Summarize(ctx context.Context, side Side, query Query, asOf time.Time) (Summary, error) {
	balances, err := s.snapshot(ctx, side, query, asOf)
	if err != nil {
		return Summary{}, err
	}
	return BuildSummary(balances), nil
}

// snapshot runs the full pipeline: validate, fetch concurrently, normalise,
// aggregate, reconcile, post-filter, sort, enrich.
func (s *Service) snapshot(ctx context.Context, side Side, query Query, asOf time.Time) ([]ReconciledBalance, error) {
	if !query.FromDate.IsZero() && !query.ToDate.IsZero() && query.FromDate.After(query.ToDate) {
		return nil, shared.ErrInvalidDateRange
	}

	filter := SourceFilter{
		CounterpartyID: query.CounterpartyID,
		FromDate:       query.FromDate,
		ToDate:         query.ToDate,
	}

	var (
		obligations []Obligation
		entries     []LedgerEntry
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		obligations, err = s.fetchObligations(groupCtx, side, filter)
		return err
	})
	group.Go(func() error {
		var err error
		entries, err = s.repo.FetchLedgerEntries(groupCtx, side)
		if err != nil {
			return fmt.Errorf("%w: ledger: %v", ErrDataSource, err)
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}

	balances := Reconcile(obligations, AggregateLedger(entries, s.policy), asOf)
	balances = applyPostFilters(balances, query)

	sort.Slice(balances, func(i, j int) bool {
		if balances[i].OverdueDays != balances[j].OverdueDays {
			return balances[i].OverdueDays > balances[j].OverdueDays
		}
		return balances[i].IssueDate.After(balances[j].IssueDate)
	})

	s.enrich(ctx, side, balances)
	return balances, nil
}

func (s *Service) fetchObligations(ctx context.Context, side Side, filter SourceFilter) ([]Obligation, error) {
	switch side {
	case Payables:
		orders, err := s.repo.FetchPurchaseOrders(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("%w: purchase orders: %v", ErrDataSource, err)
		}
		return SelectPayables(orders, filter), nil
	default:
		var (
			invoices []InvoiceRecord
			orders   []ServiceOrderRecord
			claimed  []int64
		)
		group, groupCtx := errgroup.WithContext(ctx)
		group.Go(func() error {
			var err error
			invoices, err = s.repo.FetchInvoices(groupCtx, filter)
			if err != nil {
				return fmt.Errorf("%w: invoices: %v", ErrDataSource, err)
			}
			return nil
		})
		group.Go(func() error {
			var err error
			orders, err = s.repo.FetchServiceOrders(groupCtx, filter)
			if err != nil {
				return fmt.Errorf("%w: service orders: %v", ErrDataSource, err)
			}
			return nil
		})
		group.Go(func() error {
			var err error
			claimed, err = s.repo.FetchClaimedServiceOrderIDs(groupCtx)
			if err != nil {
				return fmt.Errorf("%w: claimed service orders: %v", ErrDataSource, err)
			}
			return nil
		})
		if err := group.Wait(); err != nil {
			return nil, err
		}
		claimedSet := make(map[int64]struct{}, len(claimed))
		for _, id := range claimed {
			claimedSet[id] = struct{}{}
		}
		return SelectReceivables(invoices, orders, claimedSet, filter), nil
	}
}

func applyPostFilters(balances []ReconciledBalance, query Query) []ReconciledBalance {
	if query.MinOverdueDays == nil && query.PaymentStatus == "" {
		return balances
	}
	filtered := balances[:0]
	for _, balance := range balances {
		if query.MinOverdueDays != nil && balance.OverdueDays < *query.MinOverdueDays {
			continue
		}
		if query.PaymentStatus != "" && balance.PaymentStatus != query.PaymentStatus {
			continue
		}
		filtered = append(filtered, balance)
	}
	return filtered
}

// enrich fills counterparty display fields. Misses and lookup failures
// degrade to empty strings.
func (s *Service) enrich(ctx context.Context, side Side, balances []ReconciledBalance) {
	if s.directory == nil || len(balances) == 0 {
		return
	}
	seen := make(map[int64]struct{}, len(balances))
	ids := make([]int64, 0, len(balances))
	for _, balance := range balances {
		if _, ok := seen[balance.CounterpartyID]; ok {
			continue
		}
		seen[balance.CounterpartyID] = struct{}{}
		ids = append(ids, balance.CounterpartyID)
	}

	contacts, err := s.directory.Lookup(ctx, side, ids)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("counterparty enrichment degraded", slog.Any("error", err))
		}
		return
	}
	for i := range balances {
		if contact, ok := contacts[balances[i].CounterpartyID]; ok {
			balances[i].CounterpartyName = contact.Name
			balances[i].CounterpartyPhone = contact.Phone
			balances[i].CounterpartyEmail = contact.Email
		}
	}
}
