package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	apperrors "folio/internal/errors"
	"folio/internal/ledger"
	"folio/internal/logger"
	"folio/internal/pagination"
	"folio/internal/quote"
)

// portfolioService handles ledger mutations and valuation.
type portfolioService struct {
	portfolio *Portfolio
	quotes    quote.Provider
	perm      EditPermission
}

// NewPortfolioService creates a new PortfolioServicer.
func NewPortfolioService(portfolio *Portfolio, quotes quote.Provider, perm EditPermission) PortfolioServicer {
	return &portfolioService{portfolio: portfolio, quotes: quotes, perm: perm}
}

// CanEdit reports whether mutations are currently allowed.
func (s *portfolioService) CanEdit() bool {
	return s.perm.CanEdit()
}

// Dirty reports whether storage is behind memory after a failed write.
func (s *portfolioService) Dirty() bool {
	return s.portfolio.Dirty()
}

// Valuation values the current ledger with live quotes. Quote failures only
// degrade the result; they never fail it.
func (s *portfolioService) Valuation(ctx context.Context, q ValuationQuery) (*ValuationReport, error) {
	snap := s.portfolio.ledger.Snapshot()

	var tickers []string
	for _, p := range ledger.Aggregate(snap.Transactions) {
		tickers = append(tickers, p.Ticker)
	}
	prices, quoteErrs := fetchQuotes(ctx, s.quotes, tickers)

	v := ledger.Value(snap, prices)
	rows := ledger.FilterPositions(v.Positions, q.Ticker)
	v.Positions = ledger.SortPositions(rows, q.Sort, q.Desc)

	return &ValuationReport{
		Valuation:   v,
		QuoteErrors: quoteErrs,
		Provider:    s.quotes.Name(),
		AsOf:        s.portfolio.now(),
	}, nil
}

// Transactions returns a page of the log, newest date first.
func (s *portfolioService) Transactions(ticker string, page pagination.PageRequest) pagination.PageResponse[ledger.Transaction] {
	return pagination.Slice(s.portfolio.ledger.Snapshot().Log(ticker), page)
}

// AddTransaction appends a trade and persists it.
func (s *portfolioService) AddTransaction(ctx context.Context, in AddTransactionInput) (*AddResult, error) {
	if !s.perm.CanEdit() {
		return nil, apperrors.ErrEditForbidden
	}

	tx := ledger.Transaction{
		Ticker:   ledger.NormalizeTicker(in.Ticker),
		Qty:      in.Qty,
		Leverage: in.Leverage,
		Note:     in.Note,
		Date:     in.Date,
	}
	if !ledger.ValidTicker(tx.Ticker) {
		return nil, apperrors.FromLedger(tx.Validate())
	}

	fetched := false
	if in.Price != nil {
		tx.Price = *in.Price
	} else {
		prices, errs := s.quotes.Quotes(ctx, []string{tx.Ticker})
		price, ok := prices[tx.Ticker]
		if !ok {
			msg := fmt.Sprintf("No quote available for %s", tx.Ticker)
			if len(errs) > 0 {
				logger.Get().Warnw("price auto-fetch failed", "ticker", tx.Ticker, "error", errs[0].Err)
			}
			return nil, apperrors.WithMessage(apperrors.ErrQuoteUnavailable, msg)
		}
		tx.Price = price
		fetched = true
	}

	p := s.portfolio
	p.mu.Lock()
	defer p.mu.Unlock()

	stored, err := p.ledger.Append(tx)
	if err != nil {
		return nil, apperrors.FromLedger(err)
	}
	cash := p.ledger.Cash()
	status := p.persist(ctx, "add_transaction", func() error {
		return p.store.AppendTransaction(ctx, stored, cash)
	})

	logger.Get().Infow("transaction added",
		"id", stored.ID,
		"ticker", stored.Ticker,
		"qty", stored.Qty.String(),
		"price", stored.Price.String(),
		"persisted", status.Persisted,
	)
	return &AddResult{Transaction: stored, Cash: cash, PriceFetched: fetched, PersistStatus: status}, nil
}

// ResetDay removes every trade dated date (today when empty) and reverses
// its cash effect.
func (s *portfolioService) ResetDay(ctx context.Context, date string) (*ResetResult, error) {
	if !s.perm.CanEdit() {
		return nil, apperrors.ErrEditForbidden
	}

	p := s.portfolio
	date = strings.TrimSpace(date)
	if date == "" {
		date = p.ledger.Today()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	removal, err := p.ledger.RemoveByDate(date)
	if err != nil {
		return nil, apperrors.FromLedger(err)
	}
	status := p.persist(ctx, "reset_day", func() error {
		return p.store.RemoveTransactions(ctx, removal.IDs(), removal.CashAfter)
	})

	logger.Get().Infow("day reset", "date", date, "removed", len(removal.Removed), "persisted", status.Persisted)
	return &ResetResult{
		Removed:       removal.Removed,
		CashBefore:    removal.CashBefore,
		CashAfter:     removal.CashAfter,
		PersistStatus: status,
	}, nil
}

// ResetAll clears the ledger, the history and the benchmark base.
func (s *portfolioService) ResetAll(ctx context.Context) (*ResetResult, error) {
	if !s.perm.CanEdit() {
		return nil, apperrors.ErrEditForbidden
	}

	p := s.portfolio
	p.mu.Lock()
	defer p.mu.Unlock()

	removal := p.ledger.Clear()
	p.history.Reset()
	status := p.persist(ctx, "reset_all", func() error {
		if err := p.store.ClearLedger(ctx, removal.CashAfter); err != nil {
			return err
		}
		return p.store.ClearHistory(ctx)
	})

	logger.Get().Infow("portfolio reset", "removed", len(removal.Removed), "persisted", status.Persisted)
	return &ResetResult{
		Removed:        removal.Removed,
		CashBefore:     removal.CashBefore,
		CashAfter:      removal.CashAfter,
		HistoryCleared: true,
		PersistStatus:  status,
	}, nil
}

// Sync rewrites storage from memory.
func (s *portfolioService) Sync(ctx context.Context) error {
	if !s.perm.CanEdit() {
		return apperrors.ErrEditForbidden
	}
	return s.portfolio.Flush(ctx)
}

// fetchQuotes asks provider for tickers and logs any failures.
func fetchQuotes(ctx context.Context, provider quote.Provider, tickers []string) (map[string]decimal.Decimal, []quote.FetchError) {
	if len(tickers) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	prices, errs := provider.Quotes(ctx, tickers)
	for _, fe := range errs {
		logger.Get().Warnw("quote unavailable", "provider", provider.Name(), "ticker", fe.Symbol, "error", fe.Err)
	}
	return prices, errs
}
