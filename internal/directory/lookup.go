package directory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pitstop-erp/pitstop-erp/internal/aging"
)

// AgingLookup adapts the directory to the aging engine's counterparty
// enrichment interface: suppliers for payables, customers for receivables.
type AgingLookup struct {
	repo  *Repository
	cache *ContactCache
}

// NewAgingLookup constructs the adapter.
func NewAgingLookup(repo *Repository, cache *ContactCache) *AgingLookup {
	return &AgingLookup{repo: repo, cache: cache}
}

// Lookup implements aging.CounterpartyLookup.
func (l *AgingLookup) Lookup(ctx context.Context, side aging.Side, ids []int64) (map[int64]aging.Counterparty, error) {
	table := "customers"
	if side == aging.Payables {
		table = "suppliers"
	}

	key, err := l.cache.BuildKey(ctx, "directory", table, idsKey(ids))
	if err != nil {
		return nil, err
	}
	contacts, err := l.cache.FetchContacts(ctx, key, func(ctx context.Context) (map[int64]Contact, error) {
		return l.repo.FetchContacts(ctx, table, ids)
	})
	if err != nil {
		return nil, fmt.Errorf("directory: contact lookup: %w", err)
	}

	out := make(map[int64]aging.Counterparty, len(contacts))
	for id, contact := range contacts {
		out[id] = aging.Counterparty{ID: id, Name: contact.Name, Phone: contact.Phone, Email: contact.Email}
	}
	return out, nil
}

// idsKey renders a sorted id list so the same batch always hits the same
// cache key.
func idsKey(ids []int64) string {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}
