package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"fatura/internal/aggregation"
	"fatura/internal/cache"
	"fatura/internal/core"
	"fatura/internal/storage"
)

// SummaryService builds the monthly matrix and caches it per year and
// ledger version.
type SummaryService struct {
	store storage.Store
	cache cache.Cache[*aggregation.Matrix]
	now   func() time.Time
}

// NewSummaryService builds the service. matrices may be nil to disable caching.
func NewSummaryService(store storage.Store, matrices cache.Cache[*aggregation.Matrix]) *SummaryService {
	return &SummaryService{store: store, cache: matrices, now: time.Now}
}

// Invalidate drops every cached matrix.
func (s *SummaryService) Invalidate() {
	if s.cache != nil {
		s.cache.Purge()
	}
}

// reference returns the "now" the engine sees for year: today for the
// current year, the last day of year otherwise. Zero means the current year.
func (s *SummaryService) reference(year int) time.Time {
	now := s.now()
	if year == 0 || year == now.Year() {
		return now
	}
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// Monthly returns the matrix whose baseline is year.
func (s *SummaryService) Monthly(ctx context.Context, year int) (*aggregation.Matrix, error) {
	ref := s.reference(year)

	version, err := s.store.LedgerVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger version: %w", err)
	}
	key := fmt.Sprintf("%d:%d", ref.Year(), version)
	if s.cache != nil {
		if m, ok := s.cache.Get(key); ok {
			slog.DebugContext(ctx, "Summary cache hit", "year", ref.Year(), "version", version)
			return m, nil
		}
	}

	var (
		transactions []core.Transaction
		accounts     []core.Account
		bills        []core.Bill
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		transactions, err = s.store.ListTransactions(gctx, storage.TransactionFilter{})
		return err
	})
	g.Go(func() error {
		var err error
		accounts, err = s.store.ListAccounts(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		bills, err = s.store.ListBills(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	m := aggregation.Build(aggregation.Input{
		Transactions: transactions,
		Accounts:     accounts,
		Bills:        bills,
		Now:          ref,
	})
	// A write racing the loads can only cache newer data under an older
	// version key; the write's change hook purges it.
	if s.cache != nil {
		s.cache.Set(key, m)
	}
	slog.DebugContext(ctx, "Summary built",
		"year", ref.Year(),
		"version", version,
		"columns", len(m.Columns),
		"transactions", len(transactions))
	return m, nil
}
