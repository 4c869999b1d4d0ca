// Package enrichment supplies per-case figures maintained outside the
// parsing agent (MCA activity, returned items, overdrafts) that are
// overlaid on reconciliation rows.
package enrichment

import (
	"context"
	"sort"
	"sync"

	"github.com/dvloznov/statement-recon/internal/logger"
	"github.com/dvloznov/statement-recon/internal/observability/metrics"
)

// Record holds the enrichment figures for one case.
type Record struct {
	CaseID             string  `json:"case_id"`
	FundingTransfers   float64 `json:"funding_transfers"`
	MCADeposits        int64   `json:"mca_deposits"`
	MCADepositTotal    float64 `json:"mca_deposit_total"`
	MCAWithdrawals     int64   `json:"mca_withdrawals"`
	MCAWithdrawalTotal float64 `json:"mca_withdrawal_total"`
	OverdraftDays      int64   `json:"overdraft_days"`
	ReturnedItemsCount int64   `json:"returned_items_count"`
	ReturnedItemsDays  int64   `json:"returned_items_days"`
	UpdatedOn          string  `json:"updated_on,omitempty"` // YYYY-MM-DD
}

// Store looks up enrichment records by case id. Case ids with no record
// are absent from the returned map.
type Store interface {
	Lookup(ctx context.Context, caseIDs []string) (map[string]Record, error)
}

// LookupOrEmpty queries s and degrades to an empty result on failure.
// Enrichment never fails a reconciliation listing.
func LookupOrEmpty(ctx context.Context, s Store, caseIDs []string) map[string]Record {
	if s == nil || len(caseIDs) == 0 {
		return map[string]Record{}
	}
	records, err := s.Lookup(ctx, caseIDs)
	metrics.IncEnrichmentLookup(err)
	if err != nil {
		log := logger.FromContext(ctx)
		log.Warn().
			Err(err).
			Int("case_ids", len(caseIDs)).
			Msg("Enrichment lookup failed, continuing without enrichment")
		return map[string]Record{}
	}
	if records == nil {
		records = map[string]Record{}
	}
	return records
}

// UniqueCaseIDs returns the distinct non-empty ids in sorted order.
func UniqueCaseIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Noop is a Store with no records, used when enrichment is disabled.
type Noop struct{}

// Lookup implements Store.
func (Noop) Lookup(ctx context.Context, caseIDs []string) (map[string]Record, error) {
	return map[string]Record{}, nil
}

// MemoryStore is an in-memory Store for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record

	Err error
}

// NewMemoryStore creates a MemoryStore holding records.
func NewMemoryStore(records ...Record) *MemoryStore {
	s := &MemoryStore{records: make(map[string]Record, len(records))}
	for _, r := range records {
		s.records[r.CaseID] = r
	}
	return s
}

// Put adds or replaces a record.
func (s *MemoryStore) Put(r Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[r.CaseID] = r
}

// Lookup implements Store.
func (s *MemoryStore) Lookup(ctx context.Context, caseIDs []string) (map[string]Record, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]Record, len(caseIDs))
	for _, id := range caseIDs {
		if r, ok := s.records[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

var (
	_ Store = Noop{}
	_ Store = (*MemoryStore)(nil)
)
